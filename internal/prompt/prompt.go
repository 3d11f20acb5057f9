// Package prompt assembles the texts sent to the generation model. The
// system persona is fixed; per-request prompts embed the active design
// system so every call restates the full constraint set.
package prompt

import (
	"fmt"
	"strings"

	"forgeui/internal/designsystem"
)

// System is the persona prepended to every model call. It pins the two
// segment output contract the extractor relies on.
const System = `You are a senior Angular engineer working inside a design-system pipeline. You turn natural language requests into production-quality standalone Angular components.

Always follow these output rules:
- Emit the TypeScript component file first: imports, an @Component decorator with templateUrl: './app.component.html', and an exported class.
- Then emit a line containing only --- HTML --- followed by the full HTML template.
- Use only hex colors from the provided design system palette. Never invent color values.
- Apply the required font family and only the allowed border radius values.
- No markdown code fences, no commentary, no explanations outside the code.`

const generationTemplate = `DESIGN SYSTEM (you must strictly follow these tokens):
%s

ALLOWED COLORS ONLY: %s
REQUIRED FONT: %s

USER REQUEST: %s

Generate a complete Angular standalone component now.`

const correctionTemplate = `Your previous component violated the design system. Fix every error listed below and return the complete corrected component.

ERRORS:
%s

ORIGINAL OUTPUT:
%s

DESIGN SYSTEM (you must strictly follow these tokens):
%s

Return the full TypeScript component, then a line containing only --- HTML ---, then the full HTML template. No explanations, no code fences.`

// Generation builds the user turn for a fresh generation request.
func Generation(ds *designsystem.System, userRequest string) string {
	return fmt.Sprintf(generationTemplate,
		ds.TokensJSON(),
		"["+strings.Join(ds.Rules.AllowedColors, ", ")+"]",
		ds.Rules.RequiredFont,
		userRequest,
	)
}

// Correction builds the sole user turn of a correction call. It carries the
// validation errors verbatim, the raw output being corrected, and the token
// set again, since the correction call does not include earlier turns.
func Correction(errors []string, originalRaw string, ds *designsystem.System) string {
	lines := make([]string, len(errors))
	for i, e := range errors {
		lines[i] = "- " + e
	}
	return fmt.Sprintf(correctionTemplate,
		strings.Join(lines, "\n"),
		originalRaw,
		ds.TokensJSON(),
	)
}
