package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/synaptica-ai/afi-risk/pkg/explain"
	"github.com/synaptica-ai/afi-risk/pkg/risk"
)

const (
	DefaultTitle = "Patient-Specific Mortality Risk Explanation"
	DefaultTopN  = 5

	pageHeightMM = 297.0
	marginLeft   = 10.6
	marginRight  = 10.6
	marginTop    = 14.1
	marginBottom = 17.6
	lineHeight   = 3.6
	barWidth     = 15
)

type rgb struct{ r, g, b int }

var (
	titleColor    = rgb{0x00, 0x33, 0x66}
	headerColor   = rgb{0x4B, 0x8B, 0xBE}
	increaseColor = rgb{0xFF, 0xE5, 0xE5}
	reduceColor   = rgb{0xE5, 0xFF, 0xE5}
	neutralColor  = rgb{0xF5, 0xF5, 0xDC}
	legendRed     = rgb{0xFF, 0xCC, 0xCC}
	legendGreen   = rgb{0xCC, 0xFF, 0xCC}
)

// Document is everything the PDF report prints.
type Document struct {
	Title       string
	Probability float64
	Tier        risk.Tier
	Table       explain.Table
	View        View
	TopN        int
	GeneratedAt time.Time
}

type column struct {
	title string
	width float64
	align string
}

func columns(view View) []column {
	if view == ClinicalView {
		return []column{
			{"Feature", 56.4, "C"},
			{"Input Value", 63.5, "L"},
			{"Risk Impact", 70.5, "C"},
		}
	}
	return []column{
		{"Feature", 49.4, "C"},
		{"Input Value", 49.4, "C"},
		{"Risk Weight", 31.7, "L"},
		{"Risk Impact", 60.0, "C"},
	}
}

// WritePDF renders the explanation report: title, top contributors, the full
// contribution table, a colour legend and the sign convention footnotes.
func WritePDF(w io.Writer, doc Document) error {
	if doc.Title == "" {
		doc.Title = DefaultTitle
	}
	if doc.TopN <= 0 {
		doc.TopN = DefaultTopN
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(true, marginBottom)
	pdf.SetCreator("afi-risk", true)
	pdf.SetTitle(doc.Title, true)
	if !doc.GeneratedAt.IsZero() {
		pdf.SetCreationDate(doc.GeneratedAt)
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "BU", 16)
	pdf.SetTextColor(titleColor.r, titleColor.g, titleColor.b)
	pdf.CellFormat(0, 8, tr(doc.Title), "", 1, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 10)
	if doc.Tier != "" {
		summary := fmt.Sprintf("Predicted Survival Probability: %.2f%%  |  Outcome: %s", doc.Probability*100, doc.Tier.Outcome())
		pdf.CellFormat(0, 6, tr(summary), "", 1, "C", false, 0, "")
	}
	pdf.Ln(2)

	ranked := doc.Table.ByContribution()
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 6, "Top Contributors to Mortality Risk:", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	for _, r := range doc.Table.Top(doc.TopN) {
		label := tr("- " + latin1(r.Feature))
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(pdf.GetStringWidth(label)+1, 4.2, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(0, 4.2, fmt.Sprintf(": %+.2f", r.Contribution), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	cols := columns(doc.View)
	drawHeader := func() {
		pdf.SetFont("Helvetica", "B", 8)
		pdf.SetFillColor(headerColor.r, headerColor.g, headerColor.b)
		pdf.SetTextColor(0xF5, 0xF5, 0xF5)
		pdf.SetDrawColor(128, 128, 128)
		for _, c := range cols {
			pdf.CellFormat(c.width, 6, c.title, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Helvetica", "", 8)
	}
	drawHeader()

	maxAbs := ranked.MaxAbs()
	for _, r := range ranked {
		impact := fmt.Sprintf("%+.2f %s", r.Contribution, explain.RiskBar(r.Contribution, maxAbs, barWidth))
		cells := []string{r.Feature, r.Display}
		if doc.View != ClinicalView {
			cells = append(cells, fmt.Sprintf("%.4f", r.Weight))
		}
		cells = append(cells, impact)

		lines := 1
		split := make([][]string, len(cells))
		for i, text := range cells {
			split[i] = pdf.SplitText(latin1(text), cols[i].width-2)
			if len(split[i]) == 0 {
				split[i] = []string{""}
			}
			if len(split[i]) > lines {
				lines = len(split[i])
			}
		}
		height := float64(lines)*lineHeight + 1.4

		if pdf.GetY()+height > pageHeightMM-marginBottom {
			pdf.AddPage()
			drawHeader()
		}

		fill := rowColor(r.Contribution)
		pdf.SetFillColor(fill.r, fill.g, fill.b)
		x, y := pdf.GetX(), pdf.GetY()
		for i, c := range cols {
			pdf.Rect(x, y, c.width, height, "FD")
			for j, line := range split[i] {
				pdf.SetXY(x, y+0.7+float64(j)*lineHeight)
				pdf.CellFormat(c.width, lineHeight, tr(line), "", 0, c.align, false, 0, "")
			}
			x += c.width
		}
		pdf.SetXY(marginLeft, y+height)
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "", 8)
	legendSwatch(pdf, legendRed)
	pdf.CellFormat(45, 4, " = "+LegendIncreased, "", 0, "L", false, 0, "")
	legendSwatch(pdf, legendGreen)
	pdf.CellFormat(45, 4, " = "+LegendReduced, "", 1, "L", false, 0, "")

	pdf.Ln(5)
	for _, note := range Footnotes(doc.View) {
		pdf.Ln(2)
		pdf.MultiCell(0, 3.6, tr(note), "", "L", false)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("rendering pdf: %w", err)
	}
	return pdf.Output(w)
}

func legendSwatch(pdf *fpdf.Fpdf, c rgb) {
	pdf.SetFillColor(c.r, c.g, c.b)
	pdf.CellFormat(5, 4, "", "", 0, "L", true, 0, "")
}

// latin1 replaces runes the core PDF fonts cannot measure.
func latin1(s string) string {
	return strings.Map(func(r rune) rune {
		if r > 0xFF {
			return '?'
		}
		return r
	}, s)
}

func rowColor(contribution float64) rgb {
	switch {
	case contribution < 0:
		return increaseColor
	case contribution > 0:
		return reduceColor
	default:
		return neutralColor
	}
}
