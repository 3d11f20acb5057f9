// Package validate checks extracted component artifacts against the active
// design rule set. Findings are advisory: the caller decides whether to retry
// generation or hand the artifact back as-is.
package validate

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"forgeui/internal/component"
	"forgeui/internal/designsystem"
)

// Kind labels one category of design rule finding.
type Kind string

const (
	KindUnauthorizedColor  Kind = "UNAUTHORIZED_COLOR"
	KindMissingFont        Kind = "MISSING_FONT"
	KindUnauthorizedRadius Kind = "UNAUTHORIZED_RADIUS"
	KindSyntaxError        Kind = "SYNTAX_ERROR"
	KindMissingDecorator   Kind = "MISSING_DECORATOR"
	KindMissingClass       Kind = "MISSING_CLASS"
)

// Finding is one rule violation. Message carries the detail without the kind
// prefix; String renders the boundary form.
type Finding struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func (f Finding) String() string { return string(f.Kind) + ": " + f.Message }

// Result accumulates every finding from one validation pass.
type Result struct {
	Valid      bool      `json:"valid"`
	Findings   []Finding `json:"findings"`
	ErrorCount int       `json:"error_count"`
}

// Messages renders findings in their boundary form, one string per finding.
func (r Result) Messages() []string {
	out := make([]string, len(r.Findings))
	for i, f := range r.Findings {
		out[i] = f.String()
	}
	return out
}

var (
	hexColorRe    = regexp.MustCompile(`#[0-9a-fA-F]{3,6}`)
	radiusDeclRe  = regexp.MustCompile(`(?i)border-radius\s*:\s*([0-9]+px|50%|9999px)`)
	radiusArbRe   = regexp.MustCompile(`rounded-\[\s*([0-9]+px)\s*\]`)
	radiusClassRe = regexp.MustCompile(`rounded-([0-9]+px)`)
)

// roundedTokens maps utility class names to the pixel radius they imply.
// Detection is substring based, so "rounded-lg" also registers the bare
// "rounded" entry. That leniency is intentional; see checkRadii.
var roundedTokens = []struct {
	token string
	px    string
}{
	{"rounded-sm", "4px"},
	{"rounded", "8px"},
	{"rounded-md", "12px"},
	{"rounded-lg", "16px"},
	{"rounded-full", "9999px"},
	{"rounded-pill", "9999px"},
}

var bracketPairs = [...][2]string{{"{", "}"}, {"(", ")"}, {"[", "]"}}

// Check runs every rule against the artifact and accumulates findings in a
// fixed order: colors, font, radii, bracket balance, required markers. Checks
// never short-circuit, so one bad artifact reports everything wrong with it.
// Check is pure: equal inputs produce equal results.
func Check(a component.Artifact, rules designsystem.Rules) Result {
	full := a.Joined()

	var findings []Finding
	findings = append(findings, checkColors(full, rules.AllowedColors)...)
	findings = append(findings, checkFont(full, rules.RequiredFont)...)
	findings = append(findings, checkRadii(full, rules.AllowedRadii)...)
	findings = append(findings, checkBalance(a.TS)...)
	findings = append(findings, checkMarkers(a.TS)...)

	return Result{
		Valid:      len(findings) == 0,
		Findings:   findings,
		ErrorCount: len(findings),
	}
}

// checkColors flags every hex literal not present in the allowed set.
// Comparison is case-insensitive; each occurrence reports separately.
func checkColors(full string, allowedColors []string) []Finding {
	allowed := make([]string, len(allowedColors))
	for i, c := range allowedColors {
		allowed[i] = strings.ToLower(c)
	}

	var findings []Finding
	for _, lit := range hexColorRe.FindAllString(full, -1) {
		if slices.Contains(allowed, strings.ToLower(lit)) {
			continue
		}
		findings = append(findings, Finding{
			Kind:    KindUnauthorizedColor,
			Message: fmt.Sprintf("'%s' is not in the design system. Allowed: %s", lit, formatList(allowed)),
		})
	}
	return findings
}

// checkFont requires the font token to appear somewhere in the combined text.
// A plain substring match keeps font-family declarations, utility classes,
// and token references all acceptable.
func checkFont(full, requiredFont string) []Finding {
	if strings.Contains(full, requiredFont) {
		return nil
	}
	return []Finding{{
		Kind:    KindMissingFont,
		Message: fmt.Sprintf("Component must use '%s' font family", requiredFont),
	}}
}

// checkRadii collects radius usage from explicit declarations, utility class
// tokens, bracketed arbitrary values, and dash-pixel classes. When any radius
// is detected, one allowed value among them is enough to pass; only a
// detection set with no allowed member yields a finding.
func checkRadii(full string, allowedRadii []string) []Finding {
	var detected []string
	for _, m := range radiusDeclRe.FindAllStringSubmatch(full, -1) {
		detected = append(detected, m[1])
	}
	for _, rt := range roundedTokens {
		if strings.Contains(full, rt.token) {
			detected = append(detected, rt.px)
		}
	}
	for _, m := range radiusArbRe.FindAllStringSubmatch(full, -1) {
		detected = append(detected, m[1])
	}
	for _, m := range radiusClassRe.FindAllStringSubmatch(full, -1) {
		detected = append(detected, m[1])
	}

	if len(detected) == 0 {
		return nil
	}
	for _, r := range detected {
		if slices.Contains(allowedRadii, r) {
			return nil
		}
	}
	return []Finding{{
		Kind:    KindUnauthorizedRadius,
		Message: "Radius used is not in the design system. Allowed: " + formatList(allowedRadii),
	}}
}

// checkBalance compares open and close counts per bracket kind in the source
// segment. Counting ignores strings and comments, which is crude but catches
// the truncated output the model actually produces.
func checkBalance(ts string) []Finding {
	var findings []Finding
	for _, pair := range bracketPairs {
		if strings.Count(ts, pair[0]) != strings.Count(ts, pair[1]) {
			findings = append(findings, Finding{
				Kind:    KindSyntaxError,
				Message: fmt.Sprintf("Unbalanced '%s' and '%s'", pair[0], pair[1]),
			})
		}
	}
	return findings
}

func checkMarkers(ts string) []Finding {
	var findings []Finding
	if !strings.Contains(ts, "@Component") {
		findings = append(findings, Finding{
			Kind:    KindMissingDecorator,
			Message: "@Component decorator is required",
		})
	}
	if !strings.Contains(ts, "export class") {
		findings = append(findings, Finding{
			Kind:    KindMissingClass,
			Message: "Component must export a class",
		})
	}
	return findings
}

func formatList(items []string) string {
	return "[" + strings.Join(items, ", ") + "]"
}
