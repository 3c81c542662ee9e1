package document

import (
	"bytes"
	"fmt"

	"foodgram-backend/domain"

	"github.com/go-pdf/fpdf"
)

// Renderer turns an ordered shopping list into a downloadable document.
// The aggregation producing the items is independent of the output
// format, so implementations can be swapped without touching it.
type Renderer interface {
	Render(title string, items []domain.ShoppingListItem) ([]byte, string, error)
	ContentType() string
}

type pdfRenderer struct{}

func NewPDFRenderer() Renderer {
	return &pdfRenderer{}
}

func (r *pdfRenderer) Render(title string, items []domain.ShoppingListItem) ([]byte, string, error) {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 24)
	pdf.CellFormat(0, 14, title, "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 12)
	for _, item := range items {
		line := fmt.Sprintf("%s - %d %s", item.Name, item.Amount, item.MeasurementUnit)
		pdf.CellFormat(0, 8, line, "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), "shopping_cart.pdf", nil
}

func (r *pdfRenderer) ContentType() string {
	return "application/pdf"
}
