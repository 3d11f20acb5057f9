package prompt

import (
	"strings"
	"testing"

	"forgeui/internal/designsystem"
)

func testSystem(t *testing.T) *designsystem.System {
	t.Helper()
	ds, err := designsystem.Parse([]byte(`{
		"name": "Test",
		"tokens": {"colors": {"primary": "#4f46e5"}},
		"rules": {
			"allowed_colors": ["#4f46e5", "#ffffff"],
			"required_font": "Inter",
			"border_radius_values": ["8px", "16px"]
		}
	}`))
	if err != nil {
		t.Fatalf("parse design system: %v", err)
	}
	return ds
}

func TestGenerationEmbedsRulesAndRequest(t *testing.T) {
	ds := testSystem(t)
	got := Generation(ds, "a pricing card")

	for _, want := range []string{
		"DESIGN SYSTEM (you must strictly follow these tokens):",
		`"primary": "#4f46e5"`,
		"ALLOWED COLORS ONLY: [#4f46e5, #ffffff]",
		"REQUIRED FONT: Inter",
		"USER REQUEST: a pricing card",
		"Generate a complete Angular standalone component now.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("generation prompt missing %q:\n%s", want, got)
		}
	}
}

func TestCorrectionEmbedsErrorsAndOriginal(t *testing.T) {
	ds := testSystem(t)
	errs := []string{
		"UNAUTHORIZED_COLOR: '#000000' is not in the design system. Allowed: [#4f46e5, #ffffff]",
		"MISSING_FONT: Component must use 'Inter' font family",
	}
	got := Correction(errs, "raw model text here", ds)

	if !strings.Contains(got, "- "+errs[0]+"\n- "+errs[1]) {
		t.Errorf("errors not dash-listed:\n%s", got)
	}
	if !strings.Contains(got, "ORIGINAL OUTPUT:\nraw model text here") {
		t.Errorf("original output not embedded:\n%s", got)
	}
	if !strings.Contains(got, `"primary": "#4f46e5"`) {
		t.Errorf("design tokens not embedded:\n%s", got)
	}
}

func TestSystemPromptPinsOutputContract(t *testing.T) {
	if !strings.Contains(System, "--- HTML ---") {
		t.Error("system prompt must state the segment separator")
	}
	if !strings.Contains(System, "templateUrl: './app.component.html'") {
		t.Error("system prompt must state the canonical template reference")
	}
}
