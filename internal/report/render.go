package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/7Spidy/foodinsight-ai/internal/nutrition"
)

// Palette for the infographic.
const (
	colorPrimary   = "#2DD4BF" // teal
	colorSecondary = "#F472B6" // pink
	colorAccent    = "#A78BFA" // purple
	colorDarkBg    = "#0F172A" // dark slate
	colorLightBg   = "#F8FAFC" // light slate
	colorTextDark  = "#1E293B"
	colorTextLight = "#64748B"
)

// Letter page in points, with the layout anchors used below.
const (
	pageWidth = 612.0
	margin    = 36.0
	contentW  = pageWidth - 2*margin
	headerH   = 96.0
	photoBoxW = 300.0
	photoBoxH = 200.0
	barW      = contentW
	barH      = 14.0
	footerY   = 752.0
)

// Input is everything the renderer needs for one report page. The
// renderer never touches the record itself; publishing is a separate
// step.
type Input struct {
	Estimate   nutrition.Estimate
	Macros     []nutrition.MacroPercent
	Photo      []byte
	AnalyzedAt time.Time
}

// Renderer draws one-page nutrition report PDFs with a fixed layout.
type Renderer struct{}

// NewRenderer creates a Renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render produces the report as PDF bytes. It fails if the photo cannot
// be decoded or the page cannot be finalized.
func (r *Renderer) Render(in Input) ([]byte, error) {
	photo, photoW, photoH, err := preparePhoto(in.Photo)
	if err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	// Core fonts are cp1252; model output is UTF-8.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	r.drawHeader(pdf, tr, in)
	r.drawPhoto(pdf, photo, photoW, photoH)
	r.drawCaloriesAndScore(pdf, tr, in.Estimate)
	y := r.drawMacroBars(pdf, 356, in.Macros)
	y = r.drawTextBlock(pdf, tr, y+18, "Nutritional Insight", in.Estimate.Insight)
	r.drawTextBlock(pdf, tr, y+10, "How to Make it Healthier", in.Estimate.Tip)
	r.drawFooter(pdf, in.AnalyzedAt)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("finalizing PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawHeader(pdf *fpdf.Fpdf, tr func(string) string, in Input) {
	setFill(pdf, colorDarkBg)
	pdf.Rect(0, 0, pageWidth, headerH, "F")

	setText(pdf, colorPrimary)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetXY(margin, 18)
	pdf.CellFormat(contentW, 14, "FOODINSIGHT AI", "", 0, "L", false, 0, "")

	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 26)
	pdf.SetXY(margin, 36)
	pdf.CellFormat(contentW, 30, tr(in.Estimate.FoodName), "", 0, "L", false, 0, "")

	setText(pdf, colorTextLight)
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(margin, 68)
	subtitle := in.AnalyzedAt.Format("January 2, 2006 15:04")
	if in.Estimate.FoodType != "" {
		subtitle += "  |  " + in.Estimate.FoodType
	}
	if in.Estimate.PortionSize != "" {
		subtitle += "  |  " + in.Estimate.PortionSize
	}
	pdf.CellFormat(contentW, 12, tr(subtitle), "", 0, "L", false, 0, "")
}

func (r *Renderer) drawPhoto(pdf *fpdf.Fpdf, photo []byte, w, h int) {
	boxX, boxY := margin, headerH+22.0

	setFill(pdf, colorLightBg)
	pdf.Rect(boxX, boxY, photoBoxW, photoBoxH, "F")

	fitW, fitH := fitInBox(float64(w), float64(h), photoBoxW, photoBoxH)
	x := boxX + (photoBoxW-fitW)/2
	y := boxY + (photoBoxH-fitH)/2

	pdf.RegisterImageOptionsReader("meal-photo", fpdf.ImageOptions{ImageType: "JPG"}, bytes.NewReader(photo))
	pdf.ImageOptions("meal-photo", x, y, fitW, fitH, false, fpdf.ImageOptions{ImageType: "JPG"}, 0, "")
}

func (r *Renderer) drawCaloriesAndScore(pdf *fpdf.Fpdf, tr func(string) string, e nutrition.Estimate) {
	colX := margin + photoBoxW + 24
	colW := pageWidth - margin - colX

	setText(pdf, colorTextDark)
	pdf.SetFont("Helvetica", "B", 48)
	pdf.SetXY(colX, headerH+40)
	pdf.CellFormat(colW, 48, fmt.Sprintf("%d", e.Kcal), "", 0, "C", false, 0, "")

	setText(pdf, colorTextLight)
	pdf.SetFont("Helvetica", "", 13)
	pdf.SetXY(colX, headerH+90)
	pdf.CellFormat(colW, 16, "KCal", "", 0, "C", false, 0, "")

	bucket := nutrition.BucketFor(e.Score)
	badgeW, badgeH := colW, 56.0
	badgeY := headerH + 130.0
	setFill(pdf, bucket.Hex)
	pdf.RoundedRect(colX, badgeY, badgeW, badgeH, 8, "1234", "F")

	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetXY(colX, badgeY+8)
	pdf.CellFormat(badgeW, 24, fmt.Sprintf("%d / 100", e.Score), "", 0, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetXY(colX, badgeY+34)
	pdf.CellFormat(badgeW, 14, tr(bucket.Label), "", 0, "C", false, 0, "")
}

var macroBarColors = []string{colorPrimary, colorSecondary, colorAccent}

// drawMacroBars draws one bar per macro and returns the y position
// below the last bar. Fill is capped at 100% even when the stored
// percent exceeds it.
func (r *Renderer) drawMacroBars(pdf *fpdf.Fpdf, y float64, macros []nutrition.MacroPercent) float64 {
	setText(pdf, colorTextDark)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(margin, y)
	pdf.CellFormat(contentW, 18, "Macronutrient Breakdown", "", 0, "L", false, 0, "")
	y += 28

	for i, m := range macros {
		setText(pdf, colorTextDark)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetXY(margin, y)
		pdf.CellFormat(70, 12, m.Label, "", 0, "L", false, 0, "")

		setText(pdf, colorTextLight)
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetXY(margin+70, y)
		pdf.CellFormat(160, 12, fmt.Sprintf("%.0fg of %dg target", m.ActualG, m.TargetG), "", 0, "L", false, 0, "")

		pdf.SetXY(margin, y)
		pdf.CellFormat(barW, 12, fmt.Sprintf("%d%%", m.Percent), "", 0, "R", false, 0, "")

		barY := y + 16
		setFill(pdf, colorLightBg)
		pdf.RoundedRect(margin, barY, barW, barH, 4, "1234", "F")

		fill := float64(m.Percent)
		if fill > 100 {
			fill = 100
		}
		if fill > 0 {
			setFill(pdf, macroBarColors[i%len(macroBarColors)])
			pdf.RoundedRect(margin, barY, barW*fill/100, barH, 4, "1234", "F")
		}

		y = barY + barH + 12
	}
	return y
}

// drawTextBlock draws a subtitle and word-wrapped body, returning the y
// position below the block.
func (r *Renderer) drawTextBlock(pdf *fpdf.Fpdf, tr func(string) string, y float64, title, body string) float64 {
	if body == "" {
		return y
	}

	setText(pdf, colorTextDark)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(margin, y)
	pdf.CellFormat(contentW, 18, title, "", 0, "L", false, 0, "")

	setText(pdf, colorTextLight)
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetXY(margin, y+20)
	pdf.MultiCell(contentW, 14, tr(body), "", "L", false)
	return pdf.GetY()
}

func (r *Renderer) drawFooter(pdf *fpdf.Fpdf, at time.Time) {
	setText(pdf, colorTextLight)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetXY(margin, footerY)
	footer := fmt.Sprintf("Generated by FoodInsight AI - %s", at.Format("January 2, 2006"))
	pdf.CellFormat(contentW, 12, footer, "", 0, "C", false, 0, "")
}

func setFill(pdf *fpdf.Fpdf, hex string) {
	r, g, b := hexRGB(hex)
	pdf.SetFillColor(r, g, b)
}

func setText(pdf *fpdf.Fpdf, hex string) {
	r, g, b := hexRGB(hex)
	pdf.SetTextColor(r, g, b)
}

func hexRGB(hex string) (int, int, int) {
	var r, g, b int
	fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b)
	return r, g, b
}
