package infra

// pdf.go: receipt PDF generation using go-pdf/fpdf.
// Thermal-receipt sized page (74mm wide) with:
//   - Business header (name, RUC, address)
//   - Document title and number, timestamp, customer label
//   - Item table (description, quantity, subtotal)
//   - Bold total and payment method
//
// Rendered into memory; callers stream it over HTTP or attach it to an e-mail.

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"ferrepos/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerarReciboPDF renders a receipt and returns the PDF bytes.
func GenerarReciboPDF(recibo model.Recibo) ([]byte, error) {
	// Height grows with the number of lines so long sales are not cut.
	alto := 80.0 + float64(len(recibo.Lineas))*5
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: alto},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(false, 4)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW, 6, tr(recibo.Encabezado.Negocio), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	if recibo.Encabezado.RUC != "" {
		pdf.CellFormat(contentW, 4, tr("RUC "+recibo.Encabezado.RUC), "", 1, "C", false, 0, "")
	}
	if recibo.Encabezado.Direccion != "" {
		pdf.CellFormat(contentW, 4, tr(recibo.Encabezado.Direccion), "", 1, "C", false, 0, "")
	}
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(contentW, 5, tr(recibo.Titulo), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, tr("N° "+recibo.Numero), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, recibo.Fecha.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	if recibo.Cliente != "" {
		pdf.CellFormat(contentW, 4, tr("Cliente: "+recibo.Cliente), "", 1, "L", false, 0, "")
	}
	pdf.Ln(1)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Items ────────────────────────────────────────────────────────────────
	col1 := contentW * 0.52
	col2 := contentW * 0.16
	col3 := contentW * 0.32

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Producto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Cant", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, l := range recibo.Lineas {
		pdf.CellFormat(col1, 5, tr(truncar(l.Descripcion, 24)), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", l.Cantidad), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, "S/ "+l.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, "S/ "+recibo.Total.StringFixed(2), "", 1, "R", false, 0, "")
	if recibo.MetodoPago != "" {
		pdf.SetFont("Helvetica", "", 7)
		pdf.CellFormat(contentW, 4, tr("Pago: "+recibo.MetodoPago), "", 1, "L", false, 0, "")
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, tr("¡Gracias por su compra!"), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render recibo %s: %w", recibo.Numero, err)
	}
	return buf.Bytes(), nil
}

// truncar cuts s to max runes, marking the cut.
func truncar(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-1]) + "."
}
