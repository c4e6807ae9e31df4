package reporting

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/lcalzada-xor/fleetpulse/internal/core/domain"
)

// maxAlertRows bounds the alert table to the first page.
const maxAlertRows = 15

// PDFExporter renders dashboard snapshots as a one-page fleet report
type PDFExporter struct {
	Title string
}

// NewPDFExporter creates a new PDF exporter instance
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{Title: "Fleet Status Report"}
}

// ExportSnapshot generates a PDF from a snapshot
func (e *PDFExporter) ExportSnapshot(snap domain.DashboardSnapshot) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	e.addHeader(pdf, snap)
	e.addSystemStatus(pdf, snap)
	e.addStatistics(pdf, snap)
	e.addDistribution(pdf, tr, "Devices by Status", snap.StatusDistribution)
	e.addDistribution(pdf, tr, "Devices by Type", snap.TypeDistribution)
	e.addAlerts(pdf, tr, snap)
	e.addFooter(pdf, snap)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) addHeader(pdf *gofpdf.Fpdf, snap domain.DashboardSnapshot) {
	pdf.SetFont("Arial", "B", 24)
	pdf.SetTextColor(0, 51, 102) // Dark blue
	pdf.CellFormat(0, 15, e.Title, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 6, fmt.Sprintf("Computed: %s", snap.ComputedAt.Format("2006-01-02 15:04:05")), "", 1, "L", false, 0, "")

	if snap.Degraded {
		pdf.SetTextColor(220, 53, 69)
		pdf.CellFormat(0, 6, fmt.Sprintf("Partial data, failed stages: %v", snap.FailedStages), "", 1, "L", false, 0, "")
	}

	pdf.Ln(8)
}

// addSystemStatus draws the colored health banner
func (e *PDFExporter) addSystemStatus(pdf *gofpdf.Fpdf, snap domain.DashboardSnapshot) {
	r, g, b := statusColor(snap.Stats.SystemStatus)

	pdf.SetFillColor(r, g, b)
	pdf.Rect(20, pdf.GetY(), 170, 30, "F")
	y := pdf.GetY()

	pdf.SetFont("Arial", "B", 32)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetXY(25, y+5)
	pdf.CellFormat(80, 20, fmt.Sprintf("%d%%", snap.Stats.UptimePercentage), "", 0, "L", false, 0, "")

	pdf.SetFont("Arial", "B", 18)
	pdf.SetXY(110, y+8)
	pdf.CellFormat(80, 14, string(snap.Stats.SystemStatus), "", 0, "L", false, 0, "")

	pdf.SetY(y + 35)
	pdf.Ln(5)
}

func statusColor(s domain.SystemStatus) (r, g, b int) {
	switch s {
	case domain.SystemError:
		return 220, 53, 69 // Red
	case domain.SystemCritical:
		return 255, 149, 0 // Orange
	case domain.SystemWarning:
		return 255, 204, 0 // Yellow
	default:
		return 52, 199, 89 // Green
	}
}

func (e *PDFExporter) addStatistics(pdf *gofpdf.Fpdf, snap domain.DashboardSnapshot) {
	sectionTitle(pdf, "Fleet Overview")

	st := snap.Stats
	stats := []struct {
		label string
		value string
		color []int
	}{
		{"Total Devices", fmt.Sprintf("%d", st.TotalDevices), []int{0, 102, 204}},
		{"Online", fmt.Sprintf("%d (%d%%)", st.OnlineDevices, st.OnlinePercentage), []int{52, 199, 89}},
		{"Offline", fmt.Sprintf("%d (%d%%)", st.OfflineDevices, st.OfflinePercentage), []int{150, 150, 150}},
		{"Maintenance", fmt.Sprintf("%d", st.MaintenanceDevices), []int{255, 149, 0}},
		{"Error", fmt.Sprintf("%d (%d%%)", st.ErrorDevices, st.ErrorPercentage), []int{220, 53, 69}},
		{"Pending Alerts", fmt.Sprintf("%d", len(snap.Alerts)), []int{0, 102, 204}},
	}

	// Two columns
	colWidth := 85.0
	for i, stat := range stats {
		x := 20.0
		if i%2 == 1 {
			x = 105.0
		}
		pdf.SetXY(x, pdf.GetY())

		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(50, 7, stat.label+":", "", 0, "L", false, 0, "")

		pdf.SetFont("Arial", "B", 11)
		pdf.SetTextColor(stat.color[0], stat.color[1], stat.color[2])
		pdf.CellFormat(colWidth-50, 7, stat.value, "", 0, "R", false, 0, "")

		if i%2 == 1 {
			pdf.Ln(7)
		}
	}

	pdf.Ln(8)
}

func (e *PDFExporter) addDistribution(pdf *gofpdf.Fpdf, tr func(string) string, title string, dist domain.Distribution) {
	sectionTitle(pdf, title)

	if len(dist) == 0 {
		emptyLine(pdf, "No devices")
		return
	}

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 10)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(90, 7, "Category", "1", 0, "L", true, 0, "")
	pdf.CellFormat(40, 7, "Devices", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Share", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	for _, entry := range dist {
		pdf.CellFormat(90, 6, tr(entry.Description), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%d", entry.Count), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%d%%", entry.Percentage), "1", 1, "C", false, 0, "")
	}
	pdf.Ln(6)
}

func (e *PDFExporter) addAlerts(pdf *gofpdf.Fpdf, tr func(string) string, snap domain.DashboardSnapshot) {
	sectionTitle(pdf, "Priority Alerts")

	if len(snap.Alerts) == 0 {
		emptyLine(pdf, "No pending alerts")
		return
	}

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 10)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(25, 8, "Severity", "1", 0, "C", true, 0, "")
	pdf.CellFormat(55, 8, "Device", "1", 0, "L", true, 0, "")
	pdf.CellFormat(60, 8, "Message", "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 8, "Time", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	for i, a := range snap.Alerts {
		if i >= maxAlertRows {
			break
		}
		r, g, b := severityColor(a.Severity)
		pdf.SetTextColor(r, g, b)
		pdf.CellFormat(25, 7, string(a.Severity), "1", 0, "C", false, 0, "")

		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(55, 7, truncate(tr(a.DeviceName), 32), "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 7, truncate(tr(a.Message), 36), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, a.Timestamp.Format("01-02 15:04"), "1", 1, "C", false, 0, "")
	}
	pdf.Ln(6)
}

func severityColor(s domain.AlertSeverity) (r, g, b int) {
	switch s {
	case domain.SeverityCritical:
		return 220, 53, 69
	case domain.SeverityHigh:
		return 255, 149, 0
	case domain.SeverityMedium:
		return 200, 160, 0
	default:
		return 52, 199, 89
	}
}

func (e *PDFExporter) addFooter(pdf *gofpdf.Fpdf, snap domain.DashboardSnapshot) {
	pdf.SetY(-20)

	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.Ln(3)

	id := snap.ID
	if len(id) > 8 {
		id = id[:8]
	}
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated by FleetPulse | Snapshot %s #%d", id, snap.Sequence), "", 1, "C", false, 0, "")
}

func sectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	pdf.Ln(2)
}

func emptyLine(pdf *gofpdf.Fpdf, text string) {
	pdf.SetFont("Arial", "I", 10)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 7, text, "", 1, "L", false, 0, "")
	pdf.Ln(5)
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}
