package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Publisher is the part of the MQTT client the MQTT sink needs.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// MQTTSink publishes each event as JSON on a per-action topic.
type MQTTSink struct {
	pub   Publisher
	topic func(action string) string
	qos   byte
}

// NewMQTTSink creates a sink. topic maps an action to its topic name.
func NewMQTTSink(pub Publisher, topic func(action string) string, qos byte) *MQTTSink {
	return &MQTTSink{pub: pub, topic: topic, qos: qos}
}

func (s *MQTTSink) Name() string { return "mqtt" }

func (s *MQTTSink) Send(_ context.Context, log *AuditLog) error {
	payload, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("encoding audit event: %w", err)
	}
	return s.pub.Publish(s.topic(string(log.Action)), payload, s.qos, false)
}

// PointWriter is the part of the InfluxDB client the Influx sink needs.
type PointWriter interface {
	WritePoint(measurement string, tags map[string]string, fields map[string]any, at time.Time)
}

// MeasurementAuthEvents is the InfluxDB measurement for audit events.
const MeasurementAuthEvents = "auth_events"

// InfluxSink writes one counter point per event, tagged with the action and,
// when known, the role involved.
type InfluxSink struct {
	w PointWriter
}

func NewInfluxSink(w PointWriter) *InfluxSink {
	return &InfluxSink{w: w}
}

func (s *InfluxSink) Name() string { return "influxdb" }

func (s *InfluxSink) Send(_ context.Context, log *AuditLog) error {
	tags := map[string]string{
		"action": string(log.Action),
		"source": log.Source,
	}
	if role, ok := log.Details["role"].(string); ok && role != "" {
		tags["role"] = role
	}
	s.w.WritePoint(MeasurementAuthEvents, tags, map[string]any{"count": 1}, log.CreatedAt)
	return nil
}
