package messaging

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Refresher is the part of the dashboard service a device event pokes.
type Refresher interface {
	TriggerRefresh()
}

// DeviceEvent is the payload published by devices on the event topic.
type DeviceEvent struct {
	DeviceID  int64     `json:"deviceId"`
	Event     string    `json:"event"` // status, connectivity, reading
	Timestamp time.Time `json:"timestamp"`
}

// EventReading is a telemetry sample. It does not change any dashboard
// count, so it does not schedule a refresh.
const EventReading = "reading"

// MQTTTrigger schedules a dashboard refresh when a device reports a status
// or connectivity change. Bursts collapse into the refresh in flight.
type MQTTTrigger struct {
	client    mqtt.Client
	topic     string
	refresher Refresher
	log       *slog.Logger
}

// NewMQTTTrigger configures a client for broker. Nothing connects until Start.
func NewMQTTTrigger(broker, clientID, topic string, refresher Refresher, log *slog.Logger) (*MQTTTrigger, error) {
	if broker == "" || topic == "" {
		return nil, fmt.Errorf("mqtt trigger needs a broker and a topic")
	}
	t := &MQTTTrigger{
		topic:     topic,
		refresher: refresher,
		log:       log.With(slog.String("component", "mqtt-trigger"), slog.String("topic", topic)),
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second).
		SetOnConnectHandler(func(c mqtt.Client) {
			// Resubscribe after every reconnect; the session is not persistent.
			if token := c.Subscribe(t.topic, 0, t.handle); token.Wait() && token.Error() != nil {
				t.log.Error("subscribe failed", slog.Any("err", token.Error()))
			}
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			t.log.Warn("connection lost", slog.Any("err", err))
		})

	t.client = mqtt.NewClient(opts)
	return t, nil
}

// Start connects and subscribes.
func (t *MQTTTrigger) Start() error {
	if token := t.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}
	t.log.Info("listening for device events")
	return nil
}

// Stop disconnects, waiting up to 250ms for in-flight work.
func (t *MQTTTrigger) Stop() {
	if t.client.IsConnected() {
		t.client.Unsubscribe(t.topic).Wait()
	}
	t.client.Disconnect(250)
}

func (t *MQTTTrigger) handle(_ mqtt.Client, msg mqtt.Message) {
	var ev DeviceEvent
	if err := json.Unmarshal(msg.Payload(), &ev); err != nil {
		// Unknown payloads still signal that something changed.
		t.log.Debug("undecodable device event", slog.String("msg_topic", msg.Topic()), slog.Any("err", err))
		t.refresher.TriggerRefresh()
		return
	}
	if ev.Event == EventReading {
		return
	}
	t.log.Debug("device event", slog.Int64("device_id", ev.DeviceID), slog.String("event", ev.Event))
	t.refresher.TriggerRefresh()
}
