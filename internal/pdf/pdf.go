// Package pdf renders persisted evaluation reports as printable PDF
// documents: a metadata header, the narrative summary, and the checklist as
// a table.
package pdf

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/skillsenselab/osce-insight/internal/extract"
	"github.com/skillsenselab/osce-insight/internal/report"
)

const (
	pageMargin = 15.0
	lineHeight = 5.5

	colItemWidth     = 60.0
	colStatusWidth   = 22.0
	colEvidenceWidth = 98.0
)

// statusFill maps checklist statuses to table cell fill colors.
var statusFill = map[string][3]int{
	"Yes":      {223, 240, 216},
	"No":       {242, 222, 222},
	"Not Sure": {252, 248, 227},
}

// Render produces a PDF document for a persisted report.
func Render(r *report.Report) ([]byte, error) {
	eval, err := r.Evaluation()
	if err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(pageMargin, pageMargin, pageMargin)
	doc.SetAutoPageBreak(true, pageMargin)
	doc.AddPage()
	tr := doc.UnicodeTranslatorFromDescriptor("")

	writeHeader(doc, tr, r)
	if summary := summaryOf(eval); summary != "" {
		writeSummary(doc, tr, summary)
	}
	writeChecklist(doc, tr, eval.Checklist)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeader(doc *fpdf.Fpdf, tr func(string) string, r *report.Report) {
	doc.SetFont("Helvetica", "B", 16)
	doc.CellFormat(0, 10, tr("OSCE Evaluation Report"), "", 1, "L", false, 0, "")

	doc.SetFont("Helvetica", "", 9)
	doc.SetTextColor(90, 90, 90)
	meta := []string{
		"Report ID: " + r.ID,
		"Created: " + r.CreatedAt.Format("2006-01-02 15:04:05 MST"),
	}
	if r.SourceFile != "" {
		meta = append(meta, "Source: "+r.SourceFile)
	}
	if r.ModelID != "" {
		meta = append(meta, "Model: "+r.ModelID)
	}
	for _, line := range meta {
		doc.CellFormat(0, 4.5, tr(line), "", 1, "L", false, 0, "")
	}
	doc.SetTextColor(0, 0, 0)
	doc.Ln(4)
}

func writeSummary(doc *fpdf.Fpdf, tr func(string) string, summary string) {
	doc.SetFont("Helvetica", "B", 12)
	doc.CellFormat(0, 8, "Summary", "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	doc.MultiCell(0, lineHeight, tr(summary), "", "L", false)
	doc.Ln(4)
}

func writeChecklist(doc *fpdf.Fpdf, tr func(string) string, items []extract.ChecklistItem) {
	doc.SetFont("Helvetica", "B", 12)
	doc.CellFormat(0, 8, "Checklist", "", 1, "L", false, 0, "")

	doc.SetFont("Helvetica", "B", 10)
	doc.SetFillColor(235, 235, 235)
	doc.CellFormat(colItemWidth, 7, "Item", "1", 0, "L", true, 0, "")
	doc.CellFormat(colStatusWidth, 7, "Status", "1", 0, "C", true, 0, "")
	doc.CellFormat(colEvidenceWidth, 7, "Evidence", "1", 1, "L", true, 0, "")

	doc.SetFont("Helvetica", "", 9)
	if len(items) == 0 {
		doc.CellFormat(colItemWidth+colStatusWidth+colEvidenceWidth, 7,
			"No checklist items recorded.", "1", 1, "L", false, 0, "")
		return
	}
	for _, item := range items {
		writeRow(doc, tr, item)
	}
}

// writeRow draws one checklist row, sizing its height to the tallest wrapped
// column so the cell borders line up.
func writeRow(doc *fpdf.Fpdf, tr func(string) string, item extract.ChecklistItem) {
	itemText := tr(item.Item)
	evidenceText := tr(evidenceOf(item))

	itemLines := doc.SplitText(itemText, colItemWidth-2)
	evidenceLines := doc.SplitText(evidenceText, colEvidenceWidth-2)
	rows := len(itemLines)
	if len(evidenceLines) > rows {
		rows = len(evidenceLines)
	}
	if rows == 0 {
		rows = 1
	}
	height := float64(rows)*lineHeight + 2

	// Avoid splitting a row across pages.
	_, pageHeight := doc.GetPageSize()
	if y := doc.GetY(); y+height > pageHeight-pageMargin {
		doc.AddPage()
	}

	fill, hasFill := statusFill[item.Status]
	if hasFill {
		doc.SetFillColor(fill[0], fill[1], fill[2])
	}

	x, y := doc.GetXY()
	doc.Rect(x, y, colItemWidth, height, "D")
	doc.Rect(x+colItemWidth, y, colStatusWidth, height, borderStyle(hasFill))
	doc.Rect(x+colItemWidth+colStatusWidth, y, colEvidenceWidth, height, "D")

	doc.SetXY(x+1, y+1)
	doc.MultiCell(colItemWidth-2, lineHeight, itemText, "", "L", false)

	doc.SetXY(x+colItemWidth, y+1)
	doc.CellFormat(colStatusWidth, lineHeight, tr(item.Status), "", 0, "C", false, 0, "")

	doc.SetXY(x+colItemWidth+colStatusWidth+1, y+1)
	doc.MultiCell(colEvidenceWidth-2, lineHeight, evidenceText, "", "L", false)

	doc.SetXY(x, y+height)
}

func borderStyle(fill bool) string {
	if fill {
		return "FD"
	}
	return "D"
}

// evidenceOf prefixes evidence with its encounter timestamp when present.
func evidenceOf(item extract.ChecklistItem) string {
	switch {
	case item.Timestamp != "" && item.Evidence != "":
		return "[" + item.Timestamp + "] " + item.Evidence
	case item.Timestamp != "":
		return "[" + item.Timestamp + "]"
	default:
		return item.Evidence
	}
}

// summaryOf pulls the narrative summary out of the record's free-form
// fields, tolerating a missing or non-string value.
func summaryOf(eval *extract.Evaluation) string {
	raw, ok := eval.Extra["summary"]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return strings.TrimSpace(string(raw))
	}
	return s
}
