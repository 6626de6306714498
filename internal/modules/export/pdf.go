package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

const (
	pageMargin = 18.0
	lineH      = 5.5
	dateDE     = "02.01.2006"
)

// document wraps one fpdf page flow with the house layout: A4 portrait,
// Helvetica in cp1252, and a footer carrying the title and page count.
type document struct {
	pdf      *fpdf.Fpdf
	tr       func(string) string
	contentW float64
}

func newDocument(title, author string, generatedAt time.Time) *document {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetTitle(title, true)
	pdf.SetAuthor(author, true)
	pdf.SetCreator("QUIDZ", true)
	if !generatedAt.IsZero() {
		pdf.SetCreationDate(generatedAt)
		pdf.SetModificationDate(generatedAt)
	}
	pdf.AliasNbPages("")

	d := &document{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(100, 116, 139)
		pdf.CellFormat(0, 6, d.tr(fmt.Sprintf("%s  |  Seite %d/{nb}", title, pdf.PageNo())), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	d.contentW = pageW - left - right
	return d
}

func (d *document) title(text, subtitle string) {
	d.pdf.SetFont("Helvetica", "B", 18)
	d.pdf.SetTextColor(15, 23, 42)
	d.pdf.CellFormat(0, 10, d.tr(text), "", 1, "L", false, 0, "")
	if subtitle != "" {
		d.pdf.SetFont("Helvetica", "", 10)
		d.pdf.SetTextColor(100, 116, 139)
		d.pdf.CellFormat(0, 6, d.tr(subtitle), "", 1, "L", false, 0, "")
	}
	d.pdf.Ln(4)
}

func (d *document) heading(text string) {
	d.pdf.Ln(2)
	d.pdf.SetFont("Helvetica", "B", 13)
	d.pdf.SetTextColor(30, 64, 175)
	d.pdf.CellFormat(0, 8, d.tr(text), "", 1, "L", false, 0, "")
	y := d.pdf.GetY()
	d.pdf.SetDrawColor(226, 232, 240)
	d.pdf.Line(pageMargin, y, pageMargin+d.contentW, y)
	d.pdf.Ln(2)
}

func (d *document) paragraph(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	d.pdf.SetFont("Helvetica", "", 10)
	d.pdf.SetTextColor(30, 41, 59)
	d.pdf.MultiCell(0, lineH, d.tr(text), "", "L", false)
	d.pdf.Ln(1)
}

// notes prints a labelled free-text block, or a dash when empty.
func (d *document) notes(label, text string) {
	d.pdf.SetFont("Helvetica", "B", 10)
	d.pdf.SetTextColor(71, 85, 105)
	d.pdf.CellFormat(0, lineH, d.tr(label), "", 1, "L", false, 0, "")
	if strings.TrimSpace(text) == "" {
		text = "-"
	}
	d.paragraph(text)
}

func (d *document) keyValues(pairs [][2]string) {
	labelW := 62.0
	for _, kv := range pairs {
		d.pdf.SetFont("Helvetica", "", 10)
		d.pdf.SetTextColor(71, 85, 105)
		d.pdf.CellFormat(labelW, lineH+0.5, d.tr(kv[0]), "", 0, "L", false, 0, "")
		d.pdf.SetFont("Helvetica", "B", 10)
		d.pdf.SetTextColor(15, 23, 42)
		d.pdf.CellFormat(d.contentW-labelW, lineH+0.5, d.tr(kv[1]), "", 1, "L", false, 0, "")
	}
	d.pdf.Ln(1)
}

// table renders a header row and body rows; widths are fractions of the
// content width and cells are clipped to one line.
func (d *document) table(header []string, widths []float64, rows [][]string) {
	abs := make([]float64, len(widths))
	for i, w := range widths {
		abs[i] = w * d.contentW
	}

	d.pdf.SetFont("Helvetica", "B", 9)
	d.pdf.SetFillColor(241, 245, 249)
	d.pdf.SetTextColor(51, 65, 85)
	for i, h := range header {
		d.pdf.CellFormat(abs[i], 7, d.tr(h), "B", 0, "L", true, 0, "")
	}
	d.pdf.Ln(-1)

	d.pdf.SetFont("Helvetica", "", 9)
	d.pdf.SetTextColor(30, 41, 59)
	if len(rows) == 0 {
		d.pdf.CellFormat(d.contentW, 7, d.tr("Keine Eintraege"), "", 1, "L", false, 0, "")
		return
	}
	for _, row := range rows {
		for i := range header {
			cell := ""
			if i < len(row) {
				cell = d.clip(row[i], abs[i]-2)
			}
			d.pdf.CellFormat(abs[i], 6.5, cell, "B", 0, "L", false, 0, "")
		}
		d.pdf.Ln(-1)
	}
	d.pdf.Ln(2)
}

// clip translates s and shortens it to fit width in the current font.
func (d *document) clip(s string, width float64) string {
	s = d.tr(strings.Join(strings.Fields(s), " "))
	if d.pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && d.pdf.GetStringWidth(s+"...") > width {
		s = s[:len(s)-1]
	}
	return s + "..."
}

func (d *document) pngImage(name string, png []byte, width float64) {
	opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	d.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	d.pdf.ImageOptions(name, pageMargin, 0, width, 0, true, opts, 0, "")
	d.pdf.Ln(2)
}

func (d *document) write(w io.Writer) error {
	if err := d.pdf.Error(); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	if err := d.pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(dateDE)
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return formatDate(*t)
}

func formatPct(v float64) string {
	return strings.Replace(fmt.Sprintf("%.1f %%", v), ".", ",", 1)
}

func formatAvg(v *float64) string {
	if v == nil {
		return "-"
	}
	return strings.Replace(fmt.Sprintf("%.2f", *v), ".", ",", 1)
}

func yesNo(b bool) string {
	if b {
		return "ja"
	}
	return "nein"
}
