package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/shenki/openpower-vpd-parser/internal/inventory"
	"github.com/shenki/openpower-vpd-parser/internal/ipz"
)

// SaveInventoryPDF renders a parsed inventory store into a PDF document.
// Problems collected during a best-effort parse are listed in their own
// section; pass nil when the parse was clean.
func SaveInventoryPDF(store *inventory.Store, problems []ipz.Problem, out string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("VPD Inventory Report", false)
	pdf.SetAuthor("vpdctl", false)
	pdf.SetCreator("vpdctl", false)
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	addPDFTitle(pdf, "VPD Inventory Report")
	addSummarySection(pdf, store, problems)
	addRecordSections(pdf, store)
	addProblemsSection(pdf, problems)

	if pdf.Err() {
		return pdf.Error()
	}
	return pdf.OutputFileAndClose(out)
}

func addPDFTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)
}

func addSummarySection(pdf *gofpdf.Fpdf, store *inventory.Store, problems []ipz.Problem) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Summary")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	items := []struct {
		label string
		value string
	}{
		{label: "Inventory Path", value: emptyFallback(store.InventoryPath(), "-")},
		{label: "VPD File", value: emptyFallback(store.VpdFilePath(), "-")},
		{label: "Records", value: strconv.Itoa(len(store.Records()))},
		{label: "Keywords", value: strconv.Itoa(store.KeywordCount())},
		{label: "Problems", value: strconv.Itoa(len(problems))},
	}
	for _, item := range items {
		pdf.CellFormat(50, 6, item.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, item.value, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func addRecordSections(pdf *gofpdf.Fpdf, store *inventory.Store) {
	records := store.Records()
	if len(records) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, "No records parsed.", "", "L", false)
		pdf.Ln(4)
		return
	}

	headers := []string{"Keyword", "Value"}
	widths := []float64{30, 150}
	lineHeight := 5.0

	for _, record := range records {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "Record "+record)
		pdf.Ln(9)

		pdf.SetFillColor(240, 240, 240)
		pdf.SetFont("Helvetica", "B", 10)
		for i, h := range headers {
			pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Helvetica", "", 9)
		for _, keyword := range store.Keywords(record) {
			value, err := store.Get(record, keyword)
			if err != nil {
				value = "-"
			}
			renderTableRow(pdf, widths, []string{keyword, value}, lineHeight)
		}
		pdf.Ln(4)
	}
}

func addProblemsSection(pdf *gofpdf.Fpdf, problems []ipz.Problem) {
	if len(problems) == 0 {
		return
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Problems")
	pdf.Ln(9)

	for i, p := range problems {
		pdf.SetFont("Helvetica", "B", 10)
		header := fmt.Sprintf("%d. %s", i+1, problemLocation(p))
		pdf.MultiCell(0, 5, header, "", "L", false)

		if msg := strings.TrimSpace(p.Message); msg != "" {
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, msg, "", "L", false)
		}
		pdf.Ln(2)
	}
}

func renderTableRow(pdf *gofpdf.Fpdf, widths []float64, values []string, lineHeight float64) {
	xStart := pdf.GetX()
	yStart := pdf.GetY()
	maxLines := 1
	splitCols := make([][]string, len(values))
	for i, val := range values {
		text := strings.TrimSpace(val)
		if text == "" {
			text = "-"
		}
		lines := pdf.SplitText(text, widths[i]-2)
		if len(lines) == 0 {
			lines = []string{""}
		}
		splitCols[i] = lines
		if len(lines) > maxLines {
			maxLines = len(lines)
		}
	}
	rowHeight := float64(maxLines) * lineHeight
	x := xStart
	for i, lines := range splitCols {
		pdf.SetXY(x, yStart)
		cellText := strings.Join(lines, "\n")
		pdf.MultiCell(widths[i], lineHeight, cellText, "1", "L", false)
		x += widths[i]
	}
	pdf.SetXY(xStart, yStart+rowHeight)
}

func problemLocation(p ipz.Problem) string {
	parts := make([]string, 0, 3)
	if p.Record != "" {
		parts = append(parts, "Record "+p.Record)
	}
	if p.Keyword != "" {
		parts = append(parts, "Keyword "+p.Keyword)
	}
	if p.Offset > 0 {
		parts = append(parts, fmt.Sprintf("Offset 0x%X", p.Offset))
	}
	if len(parts) == 0 {
		return "Image"
	}
	return strings.Join(parts, ", ")
}

func emptyFallback(val, fallback string) string {
	if strings.TrimSpace(val) == "" {
		return fallback
	}
	return val
}
