package extract

import (
	"regexp"
	"strings"
)

const (
	commonModuleImport = "import { CommonModule } from '@angular/common';"
	formsModuleImport  = "import { FormsModule } from '@angular/forms';"
	canonicalTemplate  = "templateUrl: './app.component.html'"
)

var (
	inlineTemplateRe = regexp.MustCompile("template\\s*:\\s*(?:`([^`]*)`|'([^']*)'|\"([^\"]*)\")")
	inlinePropertyRe = regexp.MustCompile(",?\\s*template\\s*:\\s*(?:`[^`]*`|'[^']*'|\"[^\"]*\")")
	doubleCommaRe    = regexp.MustCompile(`,\s*,`)
	danglingCommaRe  = regexp.MustCompile(`,\s*\}`)
	templateAnyRe    = regexp.MustCompile(`templateUrl\s*:\s*['"]`)
	templateRefRe    = regexp.MustCompile(`templateUrl\s*:\s*['"][^'"]+['"]`)
	decoratorOpenRe  = regexp.MustCompile(`@Component\s*\(\s*\{`)
	importsListRe    = regexp.MustCompile(`imports\s*:\s*\[([^\]]*)\]`)
	ngModelRe        = regexp.MustCompile(`\bngModel\b`)
)

// hoistInlineTemplate moves an inline template literal out of the source
// segment and into the markup segment, but only when the markup segment is
// otherwise empty. The decorator is left referencing the external template
// file so the two segments stay independently renderable.
func hoistInlineTemplate(ts, html string) (string, string) {
	m := inlineTemplateRe.FindStringSubmatchIndex(ts)
	if m == nil || strings.TrimSpace(html) != "" {
		return ts, html
	}

	var inner string
	for g := 1; g <= 3; g++ {
		if m[2*g] >= 0 {
			inner = ts[m[2*g]:m[2*g+1]]
			break
		}
	}

	if loc := inlinePropertyRe.FindStringIndex(ts); loc != nil {
		ts = ts[:loc[0]] + ts[loc[1]:]
	}
	ts = doubleCommaRe.ReplaceAllString(ts, ",")
	ts = danglingCommaRe.ReplaceAllString(ts, "}")

	if !templateAnyRe.MatchString(ts) {
		if loc := decoratorOpenRe.FindStringIndex(ts); loc != nil {
			ts = ts[:loc[1]] + "\n  " + canonicalTemplate + "," + ts[loc[1]:]
		}
	}
	return ts, strings.TrimSpace(inner)
}

// ensureFormsCapability wires FormsModule into the component when two-way
// binding appears anywhere in the response. Both the import statement and the
// decorator imports list are patched, each at most once.
func ensureFormsCapability(ts, html, raw string) string {
	if !usesTwoWayBinding(ts, html, raw) {
		return ts
	}

	if !strings.Contains(ts, "@angular/forms") {
		if strings.Contains(ts, commonModuleImport) {
			ts = strings.Replace(ts, commonModuleImport, commonModuleImport+"\n"+formsModuleImport, 1)
		} else {
			ts = formsModuleImport + "\n" + ts
		}
	}

	if m := importsListRe.FindStringSubmatchIndex(ts); m != nil {
		inner := ts[m[2]:m[3]]
		if !strings.Contains(inner, "FormsModule") {
			entries := strings.TrimSpace(inner)
			if entries == "" {
				entries = "FormsModule"
			} else {
				entries += ", FormsModule"
			}
			ts = ts[:m[0]] + "imports: [" + entries + "]" + ts[m[1]:]
		}
		return ts
	}
	if loc := decoratorOpenRe.FindStringIndex(ts); loc != nil {
		ts = ts[:loc[1]] + "\n  imports: [CommonModule, FormsModule]," + ts[loc[1]:]
	}
	return ts
}

func usesTwoWayBinding(ts, html, raw string) bool {
	return ngModelRe.MatchString(ts) || ngModelRe.MatchString(html) || ngModelRe.MatchString(raw)
}

// normalizeTemplateURL rewrites every template reference to the canonical
// external file the renderer serves.
func normalizeTemplateURL(ts string) string {
	return templateRefRe.ReplaceAllString(ts, canonicalTemplate)
}
