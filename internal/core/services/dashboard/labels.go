package dashboard

// statusDescriptions maps raw status keys to display descriptions.
// Portuguese keys are still produced by older firmware.
var statusDescriptions = map[string]string{
	"ACTIVE":      "Active",
	"ATIVO":       "Active",
	"INACTIVE":    "Inactive",
	"INATIVO":     "Inactive",
	"OFFLINE":     "Offline",
	"MAINTENANCE": "Maintenance",
	"MANUTENCAO":  "Maintenance",
	"ERROR":       "Error",
	"ERRO":        "Error",
	"CONFIGURING": "Configuring",
	"UNKNOWN":     "Unknown",
}

var typeDescriptions = map[string]string{
	"SENSOR":             "Sensors",
	"ACTUATOR":           "Actuators",
	"GATEWAY":            "Gateways",
	"TRACKER":            "Trackers",
	"MONITOR":            "Monitors",
	"CONTROLLER":         "Controllers",
	"TEMPERATURE_SENSOR": "Temperature Sensors",
	"VIBRATION_SENSOR":   "Vibration Sensors",
	"OXYGEN_METER":       "Oxygen Meters",
	"HUMIDITY_SENSOR":    "Humidity Sensors",
	"PRESSURE_SENSOR":    "Pressure Sensors",
	"GENERIC":            "Generic Devices",
}

// Describer turns a category key into a human-readable description.
type Describer func(key string) string

// DescribeStatus falls back to the raw key for unknown statuses.
func DescribeStatus(key string) string {
	if d, ok := statusDescriptions[key]; ok {
		return d
	}
	return key
}

// DescribeType falls back to the raw key for unknown types.
func DescribeType(key string) string {
	if d, ok := typeDescriptions[key]; ok {
		return d
	}
	return key
}

// chartPalette is indexed by position so equal category orders always get
// equal colors across refreshes.
var chartPalette = [...]string{
	"#007bff",
	"#28a745",
	"#fd7e14",
	"#dc3545",
	"#6f42c1",
	"#e83e8c",
	"#20c997",
	"#ffc107",
	"#6c757d",
	"#17a2b8",
}

const (
	chartBorderColor = "#fff"
	chartBorderWidth = 2
)

// PaletteColor returns the palette color for a position, wrapping around.
func PaletteColor(i int) string {
	if i < 0 {
		i = -i
	}
	return chartPalette[i%len(chartPalette)]
}
