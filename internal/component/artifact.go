package component

// Artifact holds the pieces recovered from one model response: the
// TypeScript component source, the HTML template markup, and the raw
// response text. Raw is preserved verbatim for audit even when
// extraction finds no usable structure.
type Artifact struct {
	TS   string
	HTML string
	Raw  string
}

// Joined returns the source and markup as one blob, the form most
// rule checks scan.
func (a Artifact) Joined() string {
	return a.TS + "\n" + a.HTML
}
