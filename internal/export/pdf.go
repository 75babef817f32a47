// Package export renders printable assignment sheets and shares them outside
// the application.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/example/carwash-ops/internal/application"
)

const (
	pageMargin  = 54.0
	lineHeight  = 16.0
	headerSpace = 26.0
)

// Renderer produces the assignment sheet PDF. One section per employee, one
// row per assignment, paginated with a repeating header and footer.
type Renderer struct {
	businessName string
	now          func() time.Time
}

// NewRenderer constructs a renderer titled with the business name.
func NewRenderer(businessName string, now func() time.Time) *Renderer {
	if businessName == "" {
		businessName = "Car Wash"
	}
	if now == nil {
		now = time.Now
	}
	return &Renderer{businessName: businessName, now: now}
}

// AssignmentSheets renders the sheets into a PDF document.
func (r *Renderer) AssignmentSheets(sheets []application.EmployeeSheet) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("Renderer is nil")
	}

	doc := r.render(sheets)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render assignment sheets: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) render(sheets []application.EmployeeSheet) *gofpdf.Fpdf {
	doc := gofpdf.New("P", "pt", "Letter", "")
	doc.SetMargins(pageMargin, pageMargin+headerSpace, pageMargin)
	doc.SetAutoPageBreak(true, pageMargin)
	doc.AliasNbPages("")

	generated := r.now().Format("Mon, 02 Jan 2006 15:04")
	doc.SetHeaderFunc(func() {
		doc.SetY(pageMargin - 18)
		doc.SetFont("Helvetica", "B", 14)
		doc.CellFormat(0, lineHeight, fmt.Sprintf("%s - Assignment Sheets", r.businessName), "", 1, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 9)
		doc.CellFormat(0, 12, fmt.Sprintf("Generated %s", generated), "", 1, "L", false, 0, "")
		doc.Ln(6)
	})
	doc.SetFooterFunc(func() {
		doc.SetY(-pageMargin + 18)
		doc.SetFont("Helvetica", "I", 8)
		doc.CellFormat(0, 10, fmt.Sprintf("Page %d of {nb}", doc.PageNo()), "", 0, "C", false, 0, "")
	})

	doc.AddPage()

	if len(sheets) == 0 {
		doc.SetFont("Helvetica", "", 11)
		doc.CellFormat(0, lineHeight, "No active employees.", "", 1, "L", false, 0, "")
		return doc
	}

	for i, sheet := range sheets {
		if i > 0 {
			doc.Ln(14)
		}
		r.renderSheet(doc, sheet)
	}
	return doc
}

func (r *Renderer) renderSheet(doc *gofpdf.Fpdf, sheet application.EmployeeSheet) {
	doc.SetFont("Helvetica", "B", 12)
	doc.CellFormat(0, lineHeight, sheet.Employee.Name, "B", 1, "L", false, 0, "")
	doc.Ln(4)

	if len(sheet.Assignments) == 0 {
		doc.SetFont("Helvetica", "I", 10)
		doc.CellFormat(0, lineHeight, "No tasks assigned.", "", 1, "L", false, 0, "")
		return
	}

	for _, view := range sheet.Assignments {
		doc.SetFont("Helvetica", "B", 10)
		title := view.TaskTitle
		if view.TaskCategory != "" {
			title = fmt.Sprintf("%s  [%s]", title, view.TaskCategory)
		}
		doc.CellFormat(0, lineHeight, title, "", 1, "L", false, 0, "")

		doc.SetFont("Helvetica", "", 9)
		meta := fmt.Sprintf("Due: %s    Status: %s", orDash(view.DueDate), view.Status)
		doc.CellFormat(0, 12, meta, "", 1, "L", false, 0, "")
		if view.Notes != "" {
			doc.MultiCell(0, 12, fmt.Sprintf("Notes: %s", view.Notes), "", "L", false)
		}
		if view.TaskDescription != "" {
			doc.MultiCell(0, 12, view.TaskDescription, "", "L", false)
		}
		doc.Ln(6)
	}
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
