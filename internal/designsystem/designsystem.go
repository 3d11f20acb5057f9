package designsystem

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

var ErrNoDocument = errors.New("designsystem: no document found")

// System is the full design-system document: the token tree handed to the
// model verbatim, and the rules the validator enforces. Read-only after load.
type System struct {
	Name   string          `json:"name"`
	Tokens json.RawMessage `json:"tokens"`
	Rules  Rules           `json:"rules"`

	doc []byte
}

// Rules is the enforced subset of the document.
type Rules struct {
	AllowedColors []string
	RequiredFont  string
	AllowedRadii  []string
}

// UnmarshalJSON accepts the legacy radii key spellings older documents used.
func (r *Rules) UnmarshalJSON(b []byte) error {
	var raw struct {
		AllowedColors []string `json:"allowed_colors"`
		RequiredFont  string   `json:"required_font"`
		Radii         []string `json:"border_radius_values"`
		RadiiAlt      []string `json:"allowed_radii"`
		RadiiAlt2     []string `json:"allowed_radii_values"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	r.AllowedColors = raw.AllowedColors
	r.RequiredFont = raw.RequiredFont
	r.AllowedRadii = raw.Radii
	if len(r.AllowedRadii) == 0 {
		r.AllowedRadii = raw.RadiiAlt
	}
	if len(r.AllowedRadii) == 0 {
		r.AllowedRadii = raw.RadiiAlt2
	}
	return nil
}

// LoadFromEnv reads the document from Postgres when DESIGN_SYSTEM_PG_DSN is
// set, otherwise from the JSON file at path. Errors are fatal to startup; a
// configured-but-broken Postgres source is not silently masked by the file.
func LoadFromEnv(path string) (*System, error) {
	if dsn := strings.TrimSpace(os.Getenv("DESIGN_SYSTEM_PG_DSN")); dsn != "" {
		return LoadPostgres(dsn)
	}
	return LoadFile(path)
}

// LoadFile reads and parses the document at path.
func LoadFile(path string) (*System, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read design system: %w", err)
	}
	return Parse(b)
}

// Parse decodes a design-system document, keeping the raw bytes for the
// passthrough endpoint.
func Parse(doc []byte) (*System, error) {
	var s System
	if err := json.Unmarshal(doc, &s); err != nil {
		return nil, fmt.Errorf("parse design system: %w", err)
	}
	s.doc = append([]byte(nil), doc...)
	return &s, nil
}

// Document returns the loaded document verbatim.
func (s *System) Document() []byte { return s.doc }

// TokensJSON renders the token tree with two-space indentation, the form the
// prompts embed.
func (s *System) TokensJSON() string {
	if len(s.Tokens) == 0 {
		return "{}"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, s.Tokens, "", "  "); err != nil {
		return string(s.Tokens)
	}
	return buf.String()
}
