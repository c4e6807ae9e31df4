package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/lcalzada-xor/fleetpulse/internal/adapters/web/templates"
	"github.com/lcalzada-xor/fleetpulse/internal/core/domain"
)

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"lower": func(v any) string { return strings.ToLower(fmt.Sprint(v)) },
}).Parse(templates.FleetReportHTML))

// reportRow is one distribution category with its chart color.
type reportRow struct {
	Label      string
	Count      int
	Percentage int
	Color      string
}

type reportView struct {
	Snapshot    domain.DashboardSnapshot
	StatusClass string
	StatusRows  []reportRow
	TypeRows    []reportRow
	GeneratedAt time.Time
}

func newReportView(snap domain.DashboardSnapshot, now time.Time) reportView {
	class := strings.ToLower(string(snap.Stats.SystemStatus))
	if snap.Degraded {
		class = "degraded"
	}
	return reportView{
		Snapshot:    snap,
		StatusClass: class,
		StatusRows:  reportRows(snap.StatusDistribution, snap.StatusChart),
		TypeRows:    reportRows(snap.TypeDistribution, snap.TypeChart),
		GeneratedAt: now,
	}
}

// reportRows pairs each entry with the chart color at the same position.
func reportRows(dist domain.Distribution, chart domain.ChartProjection) []reportRow {
	rows := make([]reportRow, 0, len(dist))
	for i, e := range dist {
		row := reportRow{Label: e.Description, Count: e.Count, Percentage: e.Percentage}
		if i < len(chart.Colors) {
			row.Color = chart.Colors[i]
		}
		rows = append(rows, row)
	}
	return rows
}

// HandleHTMLReport renders the current snapshot as a standalone HTML page.
func (h *DashboardHandler) HandleHTMLReport(w http.ResponseWriter, r *http.Request) {
	snap, err := h.current(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Render into a buffer so a template failure can still produce a 500.
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, newReportView(snap, time.Now())); err != nil {
		h.logger.Error("HTML report rendering failed", "snapshot", snap.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "report generation failed")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, download := r.URL.Query()["download"]; download {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"fleetpulse_report_%d.html\"", snap.Sequence))
	}
	w.Write(buf.Bytes())
}
