package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders a Dataset as a landscape table. The core fonts cover
// cp1252 only, so callers pass canonical identifiers rather than Korean labels.
type PDFExporter struct {
	font string
}

// NewPDFExporter constructs a PDF exporter using the Helvetica core font.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{font: "Helvetica"}
}

// Render creates a PDF with the dataset title and a bordered table body.
// Column widths follow the longest value in each column.
func (e *PDFExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if data.Title != "" {
		pdf.SetFont(e.font, "B", 14)
		pdf.CellFormat(0, 10, tr(data.Title), "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}

	widths := e.columnWidths(pdf, data, 277.0)

	pdf.SetFont(e.font, "B", 9)
	for i, header := range data.Headers {
		pdf.CellFormat(widths[i], 8, tr(header), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(e.font, "", 8)
	for _, row := range data.Rows {
		for i, header := range data.Headers {
			pdf.CellFormat(widths[i], 7, tr(row[header]), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) columnWidths(pdf *gofpdf.Fpdf, data Dataset, total float64) []float64 {
	pdf.SetFont(e.font, "", 8)
	natural := make([]float64, len(data.Headers))
	sum := 0.0
	for i, header := range data.Headers {
		w := pdf.GetStringWidth(header) + 4
		for _, row := range data.Rows {
			if rw := pdf.GetStringWidth(row[header]) + 4; rw > w {
				w = rw
			}
		}
		natural[i] = w
		sum += w
	}
	for i := range natural {
		natural[i] = natural[i] / sum * total
	}
	return natural
}
