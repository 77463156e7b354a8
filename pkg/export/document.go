package export

import "fmt"

// Field is a labelled summary value printed above the table.
type Field struct {
	Label string
	Value string
}

// Dataset defines tabular export content. Rows are keyed by header.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Document is a titled report: a summary block followed by a table.
type Document struct {
	Title   string
	Summary []Field
	Table   Dataset
}

// Renderer turns a document into bytes of one file format.
type Renderer interface {
	Render(doc Document) ([]byte, error)
	ContentType() string
	Extension() string
}

// RendererFor returns the renderer registered for a format name.
func RendererFor(format string) (Renderer, error) {
	switch format {
	case "csv":
		return NewCSVExporter(), nil
	case "pdf":
		return NewPDFExporter(), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

func (d Dataset) validate() error {
	if len(d.Headers) == 0 {
		return fmt.Errorf("export requires at least one header")
	}
	return nil
}
