// Package extract recovers component artifacts from raw model output.
// Model responses arrive as free text: prose, code fences, stray log lines,
// and a loosely formatted source/markup split. Extraction is best-effort and
// never fails; whatever structure is missing degrades to a coarser split.
package extract

import (
	"regexp"
	"strings"

	"forgeui/internal/component"
)

var (
	noiseLineRe   = regexp.MustCompile(`(?m)^\s*(Attempt\s+\d+\s+failed.*|Auto-correcting\.*|INFO:.*)\s*$`)
	noiseAsideRe  = regexp.MustCompile(`(?i)\(no\s+html[^)\n]*\)`)
	separatorRe   = regexp.MustCompile(`(?i)-{3,}\s*HTML\s*-{3,}`)
	markupStartRe = regexp.MustCompile(`(?i)<(div|section|button|nav|header|footer|a\b)`)
	sourceStartRe = regexp.MustCompile(`(?i)(import|@Component|export|import\s+\{)`)
	trailingRunRe = regexp.MustCompile("\\s*(-{3,}|`{3,})\\s*$")
)

// Extract converts one raw model response into a component artifact. The
// pipeline order is significant: fence/noise stripping, segmentation,
// prose trimming, then the normalization passes.
func Extract(raw string) component.Artifact {
	cleaned := stripNoise(stripFences(raw))

	ts, html := split(cleaned)
	ts = trimSourceProse(ts)
	html = trimMarkupProse(html)
	ts = stripTrailing(ts)
	html = stripTrailing(html)

	ts, html = hoistInlineTemplate(ts, html)
	ts = ensureFormsCapability(ts, html, raw)
	ts = normalizeTemplateURL(ts)

	return component.Artifact{
		TS:   strings.TrimSpace(ts),
		HTML: strings.TrimSpace(html),
		Raw:  raw,
	}
}

// stripFences drops every line that is a code-fence marker, with or without
// a language tag.
func stripFences(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// stripNoise blanks diagnostic lines the backend may have echoed into model
// output, plus parenthetical asides about missing markup.
func stripNoise(text string) string {
	text = noiseLineRe.ReplaceAllString(text, "")
	return noiseAsideRe.ReplaceAllString(text, "")
}

// split separates source from markup at the first dash separator. Without a
// separator it falls back to the first recognized markup tag; without that,
// everything is source.
func split(cleaned string) (ts, html string) {
	if parts := separatorRe.Split(cleaned, 2); len(parts) == 2 {
		return parts[0], parts[1]
	}
	if loc := markupStartRe.FindStringIndex(cleaned); loc != nil {
		return cleaned[:loc[0]], cleaned[loc[0]:]
	}
	return cleaned, ""
}

// trimSourceProse discards chat text before the first source-start token.
func trimSourceProse(ts string) string {
	if loc := sourceStartRe.FindStringIndex(ts); loc != nil {
		return ts[loc[0]:]
	}
	return ts
}

// trimMarkupProse discards chat text before the first markup-open character.
func trimMarkupProse(html string) string {
	if i := strings.Index(html, "<"); i >= 0 {
		return html[i:]
	}
	return html
}

// stripTrailing removes one trailing separator or fence remnant.
func stripTrailing(segment string) string {
	return trailingRunRe.ReplaceAllString(strings.TrimSpace(segment), "")
}
