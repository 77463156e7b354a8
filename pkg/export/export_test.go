package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleDocument() Document {
	return Document{
		Title: "Compliance Audit PSYCH 001",
		Summary: []Field{
			{Label: "Overall", Value: "WARN"},
			{Label: "Score", Value: "94.4"},
		},
		Table: Dataset{
			Headers: []string{"Rule", "Status", "Message"},
			Rows: []map[string]string{
				{"Rule": "UNT-003", "Status": "PASS", "Message": "162 hours support 3 units"},
				{"Rule": "SLO-003", "Status": "WARN", "Message": "Outcome 2 uses \"understand\", which is not measurable"},
			},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	data, err := NewCSVExporter().Render(sampleDocument())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Equal(t, "Overall,WARN", lines[0])
	require.Equal(t, "Score,94.4", lines[1])
	require.Equal(t, "Rule,Status,Message", lines[3])
	require.Contains(t, lines[5], `"Outcome 2 uses ""understand"", which is not measurable"`)
}

func TestPDFExporterRender(t *testing.T) {
	data, err := NewPDFExporter().Render(sampleDocument())
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Document{})
	require.Error(t, err)
	_, err = NewPDFExporter().Render(Document{})
	require.Error(t, err)
}

func TestRendererFor(t *testing.T) {
	r, err := RendererFor("pdf")
	require.NoError(t, err)
	require.Equal(t, "application/pdf", r.ContentType())

	_, err = RendererFor("xlsx")
	require.Error(t, err)
}
