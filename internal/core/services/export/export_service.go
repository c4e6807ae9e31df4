package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/lcalzada-xor/fleetpulse/internal/core/domain"
)

// Format is an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat maps a query value to a Format. Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "application/json"
}

// Filename returns the attachment name for a snapshot export.
func (f Format) Filename(snap domain.DashboardSnapshot) string {
	return fmt.Sprintf("fleetpulse_%s.%s", snap.ComputedAt.UTC().Format("20060102T150405Z"), f)
}

// Write encodes the snapshot in the given format.
func Write(w io.Writer, f Format, snap domain.DashboardSnapshot) error {
	if f == FormatCSV {
		return ExportCSV(w, snap)
	}
	return ExportJSON(w, snap)
}

// ExportJSON writes the whole snapshot as indented JSON
func ExportJSON(w io.Writer, snap domain.DashboardSnapshot) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(snap)
}

// ExportCSV writes the snapshot as sectioned CSV: one "section,key,value..."
// block for stats, each distribution and the ranked alerts.
func ExportCSV(w io.Writer, snap domain.DashboardSnapshot) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	st := snap.Stats
	rows := [][]string{
		{"section", "key", "value"},
		{"snapshot", "id", snap.ID},
		{"snapshot", "sequence", strconv.FormatUint(snap.Sequence, 10)},
		{"snapshot", "computedAt", snap.ComputedAt.Format(time.RFC3339)},
		{"snapshot", "degraded", strconv.FormatBool(snap.Degraded)},
		{"stats", "totalDevices", strconv.Itoa(st.TotalDevices)},
		{"stats", "onlineDevices", strconv.Itoa(st.OnlineDevices)},
		{"stats", "offlineDevices", strconv.Itoa(st.OfflineDevices)},
		{"stats", "maintenanceDevices", strconv.Itoa(st.MaintenanceDevices)},
		{"stats", "errorDevices", strconv.Itoa(st.ErrorDevices)},
		{"stats", "uptimePercentage", strconv.Itoa(st.UptimePercentage)},
		{"stats", "systemStatus", string(st.SystemStatus)},
	}
	for _, r := range rows {
		if err := writer.Write(r); err != nil {
			return err
		}
	}

	if err := writeDistribution(writer, "status", snap.StatusDistribution); err != nil {
		return err
	}
	if err := writeDistribution(writer, "type", snap.TypeDistribution); err != nil {
		return err
	}

	// Alerts
	if err := writer.Write([]string{"alert", "id", "severity", "type", "deviceName", "timestamp", "message"}); err != nil {
		return err
	}
	for _, a := range snap.Alerts {
		row := []string{
			"alert",
			strconv.FormatInt(a.ID, 10),
			string(a.Severity),
			string(a.Type),
			a.DeviceName,
			a.Timestamp.Format(time.RFC3339),
			a.Message,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func writeDistribution(writer *csv.Writer, section string, d domain.Distribution) error {
	for _, e := range d {
		row := []string{section, e.Category, strconv.Itoa(e.Count), strconv.Itoa(e.Percentage)}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	return nil
}
