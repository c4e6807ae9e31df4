package mock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/fleetpulse/internal/core/domain"
	"github.com/lcalzada-xor/fleetpulse/internal/geo"
)

func newTestFleet(s Scenario) *Fleet {
	return NewFleet(NewDataGenerator(geo.NewStaticProvider(-23.55, -46.63), 42), s)
}

func TestNewFleet_Scenario(t *testing.T) {
	f := newTestFleet(ScenarioByName("basic"))

	devices, err := f.ListDevices(context.Background())
	require.NoError(t, err)
	assert.Len(t, devices, 24)

	seen := make(map[string]bool)
	for _, d := range devices {
		assert.NotEmpty(t, d.Identifier)
		assert.False(t, seen[d.Identifier], "identifiers must be unique")
		seen[d.Identifier] = true
		assert.NotNil(t, d.LastCommunication)
	}
}

func TestScenarioByName_Unknown(t *testing.T) {
	assert.Equal(t, "basic", ScenarioByName("nope").Name)
	assert.Equal(t, 250, ScenarioByName("LARGE").Devices)
}

func TestFleet_AlertsMatchDevices(t *testing.T) {
	f := newTestFleet(ScenarioByName("degraded"))

	devices, err := f.ListDevices(context.Background())
	require.NoError(t, err)
	alerts, err := f.ListAlerts(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, alerts)

	byID := make(map[int64]domain.Device)
	for _, d := range devices {
		byID[d.ID] = d
	}
	for _, a := range alerts {
		d, ok := byID[a.DeviceID]
		require.True(t, ok)
		assert.True(t, a.Severity.IsKnown())
		if a.Type == domain.AlertError {
			assert.True(t, d.InError())
		}
	}
}

func TestFleet_Acknowledge(t *testing.T) {
	f := newTestFleet(ScenarioByName("degraded"))
	alerts, _ := f.ListAlerts(context.Background())
	require.NotEmpty(t, alerts)

	require.NoError(t, f.AcknowledgeAlert(context.Background(), alerts[0].ID))
	assert.ErrorIs(t, f.AcknowledgeAlert(context.Background(), 99999), domain.ErrAlertNotFound)

	after, _ := f.ListAlerts(context.Background())
	assert.True(t, after[0].Acknowledged)
}

func TestFleet_Unavailable(t *testing.T) {
	f := newTestFleet(ScenarioByName("basic"))
	f.SetUnavailable(false, true)

	_, err := f.ListDevices(context.Background())
	assert.NoError(t, err)
	_, err = f.ListAlerts(context.Background())
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestFleet_StepKeepsSize(t *testing.T) {
	f := newTestFleet(ScenarioByName("basic"))
	for i := 0; i < 50; i++ {
		f.Step()
	}

	devices, _ := f.ListDevices(context.Background())
	assert.Len(t, devices, 24)

	empty := newTestFleet(ScenarioByName("empty"))
	empty.Step()
	devices, _ = empty.ListDevices(context.Background())
	assert.Empty(t, devices)
}
