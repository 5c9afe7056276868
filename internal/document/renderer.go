// Package document renders the quote and invoice PDFs mailed to customers.
package document

import (
	"bytes"
	"fmt"
	"procomp-service/internal/pricing"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

const (
	companyName    = "PROCOMP Szerviz"
	companyAddress = "Cím: 1234 Budapest, Szerviz u. 1."
	companyEmail   = "info@procomp.hu"
	companyPhone   = "+36 1 234 5678"
)

// QuoteDocument árajánlat
type QuoteDocument struct {
	Identifier    string
	CustomerEmail string
	IssuedAt      time.Time
	ExpiresAt     time.Time
	Inputs        pricing.Inputs
	Totals        pricing.Breakdown
}

// InvoiceDocument számla
type InvoiceDocument struct {
	Identifier    string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	IssuedAt      time.Time
	Inputs        pricing.Inputs
	Totals        pricing.Breakdown
}

type Renderer interface {
	RenderQuote(doc QuoteDocument) ([]byte, error)
	RenderInvoice(doc InvoiceDocument) ([]byte, error)
}

type PDFRenderer struct{}

func NewPDFRenderer() Renderer {
	return &PDFRenderer{}
}

func (r *PDFRenderer) RenderQuote(doc QuoteDocument) ([]byte, error) {
	pdf, tr := newPage()

	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetTextColor(30, 58, 138)
	pdf.CellFormat(0, 12, tr(companyName+" - Árajánlat"), "", 1, "C", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(51, 51, 51)
	line(pdf, tr, "Ügyfél: "+doc.CustomerEmail)
	line(pdf, tr, "Dátum: "+doc.IssuedAt.Format("2006.01.02."))
	line(pdf, tr, "Azonosító: "+doc.Identifier)
	line(pdf, tr, "Érvényes: "+doc.ExpiresAt.Format("2006.01.02. 15:04"))
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "BU", 14)
	pdf.SetTextColor(0, 0, 0)
	line(pdf, tr, "Részletek:")

	pdf.SetFont("Helvetica", "", 12)
	line(pdf, tr, fmt.Sprintf("Munkaóra: %s óra", doc.Inputs.LaborHours.String()))
	line(pdf, tr, "Óradíj: "+FormatHUF(doc.Inputs.LaborRate))
	line(pdf, tr, "Anyagdíj: "+FormatHUF(doc.Inputs.MaterialCost))
	pdf.Ln(2)
	writeTotals(pdf, tr, doc.Totals)

	return output(pdf)
}

func (r *PDFRenderer) RenderInvoice(doc InvoiceDocument) ([]byte, error) {
	pdf, tr := newPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(30, 58, 138)
	line(pdf, tr, companyName)
	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(0, 0, 0)
	line(pdf, tr, companyAddress)
	line(pdf, tr, "Email: "+companyEmail)
	line(pdf, tr, "Telefon: "+companyPhone)
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 16)
	pdf.CellFormat(0, 8, tr("Számla azonosító: "+doc.Identifier), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 8, tr("Dátum: "+doc.IssuedAt.Format("2006-01-02")), "", 1, "R", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(51, 51, 51)
	line(pdf, tr, "Ügyfél: "+doc.CustomerName)
	line(pdf, tr, "Email: "+doc.CustomerEmail)
	line(pdf, tr, "Telefon: "+doc.CustomerPhone)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "BU", 14)
	pdf.SetTextColor(0, 0, 0)
	line(pdf, tr, "Számlázott tételek:")

	pdf.SetFont("Helvetica", "", 12)
	line(pdf, tr, fmt.Sprintf("Munkaóra: %s x %s = %s",
		doc.Inputs.LaborHours.String(), FormatHUF(doc.Inputs.LaborRate), FormatHUF(doc.Totals.Labor)))
	line(pdf, tr, "Anyagdíj: "+FormatHUF(doc.Inputs.MaterialCost))
	pdf.Ln(2)
	writeTotals(pdf, tr, doc.Totals)
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(51, 51, 51)
	pdf.CellFormat(0, 7, tr("Köszönjük, hogy minket választott!"), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 7, tr(companyName), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 7, tr(companyEmail+" | "+companyPhone), "", 1, "C", false, 0, "")

	return output(pdf)
}

func newPage() (*fpdf.Fpdf, func(string) string) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 18, 18)
	pdf.AddPage()
	// core fonts are cp1252; characters outside it are replaced
	return pdf, pdf.UnicodeTranslatorFromDescriptor("")
}

func line(pdf *fpdf.Fpdf, tr func(string) string, text string) {
	pdf.CellFormat(0, 7, tr(text), "", 1, "L", false, 0, "")
}

func writeTotals(pdf *fpdf.Fpdf, tr func(string) string, totals pricing.Breakdown) {
	line(pdf, tr, "Nettó összeg: "+FormatHUF(totals.Net))
	line(pdf, tr, "ÁFA (27%): "+FormatHUF(totals.Tax))
	pdf.SetFont("Helvetica", "BU", 14)
	pdf.SetTextColor(30, 58, 138)
	line(pdf, tr, "Bruttó összeg: "+FormatHUF(totals.Gross))
}

func output(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// FormatHUF formats an amount as "12 345 Ft" (decimals kept only when non-zero).
func FormatHUF(d decimal.Decimal) string {
	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	intPart := d.Truncate(0)
	frac := d.Sub(intPart)

	digits := intPart.String()
	var b strings.Builder
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(c)
	}

	if !frac.IsZero() {
		b.WriteString(",")
		b.WriteString(frac.StringFixed(2)[2:])
	}

	return sign + b.String() + " Ft"
}
