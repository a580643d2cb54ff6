package export

import (
	"bytes"
	"fmt"
	"strings"
)

// Section is one titled block of a plain-text document.
type Section struct {
	Heading string
	Lines   []string
}

// Document describes a sectioned plain-text dump. The output is meant for
// humans, not for re-import.
type Document struct {
	Title    string
	Sections []Section
}

// TextExporter renders documents as flat human-readable text.
type TextExporter struct{}

// NewTextExporter constructs a text exporter.
func NewTextExporter() *TextExporter {
	return &TextExporter{}
}

// Render produces the flat dump for the document.
func (e *TextExporter) Render(doc Document) ([]byte, error) {
	if doc.Title == "" {
		return nil, fmt.Errorf("text export requires a title")
	}
	buf := &bytes.Buffer{}
	rule := strings.Repeat("=", 60)

	fmt.Fprintln(buf, rule)
	fmt.Fprintln(buf, doc.Title)
	fmt.Fprintln(buf, rule)

	for _, section := range doc.Sections {
		fmt.Fprintf(buf, "\n========== %s ==========\n", section.Heading)
		for _, line := range section.Lines {
			fmt.Fprintln(buf, line)
		}
	}

	fmt.Fprintf(buf, "\n%s\nEND OF EXPORT\n", rule)
	return buf.Bytes(), nil
}
