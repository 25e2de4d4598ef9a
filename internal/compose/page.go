package compose

import (
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/MrJamesThe3rd/accountill/internal/encoding"
	"github.com/MrJamesThe3rd/accountill/internal/render"
)

const (
	fontFamily = "Helvetica"
	lineHeight = 5.0
)

// column widths as a share of the printable width
var columnShares = []float64{0.40, 0.12, 0.16, 0.12, 0.20}

type page struct {
	pdf   *gofpdf.Fpdf
	doc   *render.Markup
	tr    func(string) string
	left  float64
	right float64
	width float64
}

func newPage(pdf *gofpdf.Fpdf, doc *render.Markup) *page {
	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()

	return &page{
		pdf:   pdf,
		doc:   doc,
		tr:    encoding.Windows1252,
		left:  left,
		right: right,
		width: pageW - left - right,
	}
}

func (p *page) draw() {
	p.pdf.SetFooterFunc(p.footer)
	p.pdf.AddPage()

	p.header()
	p.parties()
	p.meta()
	p.table()
	p.summary()
	p.notes()
	p.paymentLink()
}

func (p *page) header() {
	pdf := p.pdf

	pdf.SetFont(fontFamily, "B", 22)
	pdf.SetTextColor(31, 41, 51)
	pdf.CellFormat(0, 12, p.tr(p.doc.Title), "", 1, "R", false, 0, "")

	if p.doc.Status != "" {
		pdf.SetFont(fontFamily, "", 9)
		pdf.SetTextColor(110, 110, 110)
		pdf.CellFormat(0, 5, p.tr(strings.ToUpper(p.doc.Status)), "", 1, "R", false, 0, "")
	}

	pdf.Ln(6)
}

func (p *page) parties() {
	y := p.pdf.GetY()
	half := p.width / 2

	leftEnd := p.party(p.left, y, half-5, p.doc.From)
	rightEnd := p.party(p.left+half+5, y, half-5, p.doc.BillTo)

	p.pdf.SetXY(p.left, max(leftEnd, rightEnd)+6)
}

func (p *page) party(x, y, width float64, party render.Party) float64 {
	pdf := p.pdf

	pdf.SetXY(x, y)
	pdf.SetTextColor(110, 110, 110)
	pdf.SetFont(fontFamily, "B", 9)
	pdf.CellFormat(width, 6, p.tr(strings.ToUpper(party.Heading)), "", 2, "L", false, 0, "")

	pdf.SetTextColor(31, 41, 51)
	pdf.SetFont(fontFamily, "", 10)

	for _, line := range party.Lines {
		pdf.SetX(x)
		pdf.MultiCell(width, lineHeight, p.tr(line), "", "L", false)
	}

	return pdf.GetY()
}

func (p *page) meta() {
	if len(p.doc.Meta) == 0 {
		return
	}

	pdf := p.pdf

	for _, f := range p.doc.Meta {
		pdf.SetFont(fontFamily, "B", 9)
		pdf.CellFormat(35, lineHeight, p.tr(f.Label), "", 0, "L", false, 0, "")
		pdf.SetFont(fontFamily, "", 9)
		pdf.CellFormat(0, lineHeight, p.tr(f.Value), "", 1, "L", false, 0, "")
	}

	pdf.Ln(6)
}

func (p *page) widths() []float64 {
	widths := make([]float64, len(p.doc.Columns))
	for i := range widths {
		share := 1.0 / float64(len(widths))
		if len(widths) == len(columnShares) {
			share = columnShares[i]
		}

		widths[i] = p.width * share
	}

	return widths
}

func align(col int) string {
	if col == 0 {
		return "L"
	}

	return "R"
}

func (p *page) tableHeader(widths []float64) {
	pdf := p.pdf

	pdf.SetFont(fontFamily, "B", 9)
	pdf.SetFillColor(236, 239, 244)
	pdf.SetTextColor(31, 41, 51)

	for i, col := range p.doc.Columns {
		pdf.CellFormat(widths[i], 7, p.tr(col), "", 0, align(i), true, 0, "")
	}

	pdf.Ln(-1)
	pdf.SetFont(fontFamily, "", 9)
}

func (p *page) table() {
	if len(p.doc.Columns) == 0 {
		return
	}

	pdf := p.pdf
	widths := p.widths()
	_, pageH := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()

	p.tableHeader(widths)

	for _, row := range p.doc.Rows {
		first := p.tr(cell(row, 0))
		lines := pdf.SplitLines([]byte(first), widths[0]-2)
		h := float64(max(len(lines), 1)) * lineHeight

		if pdf.GetY()+h > pageH-bottom {
			pdf.AddPage()
			p.tableHeader(widths)
		}

		x, y := pdf.GetXY()
		pdf.MultiCell(widths[0], lineHeight, first, "", "L", false)

		cx := x + widths[0]
		for i := 1; i < len(widths); i++ {
			pdf.SetXY(cx, y)
			pdf.CellFormat(widths[i], lineHeight, p.tr(cell(row, i)), "", 0, "R", false, 0, "")
			cx += widths[i]
		}

		pdf.SetDrawColor(220, 223, 228)
		pdf.Line(x, y+h+1, x+p.width, y+h+1)
		pdf.SetXY(x, y+h+2)
	}

	pdf.Ln(4)
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}

	return ""
}

func (p *page) summary() {
	pdf := p.pdf
	labelW, valueW := 45.0, 40.0
	x := p.left + p.width - labelW - valueW

	for _, f := range p.doc.Summary {
		style, size := "", 10.0
		if f.Emphasis {
			style, size = "B", 11
		}

		pdf.SetX(x)
		pdf.SetFont(fontFamily, style, size)
		pdf.CellFormat(labelW, 7, p.tr(f.Label), "", 0, "L", false, 0, "")
		pdf.CellFormat(valueW, 7, p.tr(f.Value), "", 1, "R", false, 0, "")
	}

	pdf.Ln(6)
}

func (p *page) notes() {
	if len(p.doc.Notes) == 0 {
		return
	}

	pdf := p.pdf

	pdf.SetFont(fontFamily, "B", 10)
	pdf.CellFormat(0, 6, "Notes", "", 1, "L", false, 0, "")
	pdf.SetFont(fontFamily, "", 9)

	for _, para := range p.doc.Notes {
		pdf.MultiCell(0, lineHeight, p.tr(para), "", "L", false)
		pdf.Ln(2)
	}
}

func (p *page) paymentLink() {
	if p.doc.PaymentLink == "" {
		return
	}

	pdf := p.pdf

	pdf.Ln(4)
	pdf.SetFont(fontFamily, "B", 10)
	pdf.SetTextColor(31, 41, 51)
	pdf.CellFormat(0, 6, "Pay online", "", 1, "L", false, 0, "")
	pdf.SetFont(fontFamily, "U", 9)
	pdf.SetTextColor(37, 99, 235)
	pdf.CellFormat(0, lineHeight, p.tr(p.doc.PaymentLink), "", 1, "L", false, 0, p.doc.PaymentLink)
	pdf.SetTextColor(31, 41, 51)
}

func (p *page) footer() {
	pdf := p.pdf

	pdf.SetY(-15)
	pdf.SetFont(fontFamily, "I", 8)
	pdf.SetTextColor(140, 140, 140)
	pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
}
