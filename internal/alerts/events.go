package alerts

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	TypeAlert     = "alert"
	TypeIoTUpdate = "iot_update"
)

type Event struct {
	Type      string     `json:"type"`
	Timestamp string     `json:"timestamp"`
	Alert     *Alert     `json:"alert,omitempty"`
	Update    *IoTUpdate `json:"update,omitempty"`
}

type Alert struct {
	Priority  string  `json:"priority"`
	Store     int     `json:"store"`
	Dept      int     `json:"dept"`
	Message   string  `json:"message"`
	RiskScore float64 `json:"riskScore"`
}

type IoTUpdate struct {
	Store           int     `json:"store"`
	Dept            int     `json:"dept"`
	WeeklySales     float64 `json:"weeklySales"`
	Temperature     float64 `json:"temperature"`
	IsHoliday       bool    `json:"isHoliday"`
	AnomalyDetected bool    `json:"anomalyDetected"`
	AnomalyScore    float64 `json:"anomalyScore"`
	RiskLevel       string  `json:"riskLevel"`
	RiskScore       float64 `json:"riskScore"`
	Cluster         int     `json:"cluster"`
}

type wireMessage struct {
	Type      string   `json:"type"`
	Timestamp string   `json:"timestamp"`
	Priority  string   `json:"priority"`
	Store     int      `json:"store"`
	Dept      int      `json:"dept"`
	Message   string   `json:"message"`
	RiskScore float64  `json:"risk_score"`
	Data      wireData `json:"data"`
	Analysis  wireRisk `json:"analysis"`
}

type wireData struct {
	Store       int     `json:"store"`
	Dept        int     `json:"dept"`
	WeeklySales float64 `json:"weekly_sales"`
	Temperature float64 `json:"temperature"`
	IsHoliday   int     `json:"is_holiday"`
}

type wireRisk struct {
	AnomalyDetected bool    `json:"anomaly_detected"`
	AnomalyScore    float64 `json:"anomaly_score"`
	RiskLevel       string  `json:"risk_level"`
	RiskScore       float64 `json:"risk_score"`
	Cluster         int     `json:"cluster"`
}

var errUnknownType = errors.New("unknown message type")

// Decode maps one stream frame to an Event. Frames of other types return
// errUnknownType so the stream can skip them.
func Decode(payload []byte) (Event, error) {
	var msg wireMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Event{}, fmt.Errorf("decode alert frame: %w", err)
	}

	event := Event{
		Type:      strings.TrimSpace(msg.Type),
		Timestamp: msg.Timestamp,
	}

	switch event.Type {
	case TypeAlert:
		priority := strings.ToUpper(strings.TrimSpace(msg.Priority))
		if priority == "" {
			priority = "HIGH"
		}
		event.Alert = &Alert{
			Priority:  priority,
			Store:     msg.Store,
			Dept:      msg.Dept,
			Message:   strings.TrimSpace(msg.Message),
			RiskScore: msg.RiskScore,
		}
	case TypeIoTUpdate:
		event.Update = &IoTUpdate{
			Store:           msg.Data.Store,
			Dept:            msg.Data.Dept,
			WeeklySales:     msg.Data.WeeklySales,
			Temperature:     msg.Data.Temperature,
			IsHoliday:       msg.Data.IsHoliday != 0,
			AnomalyDetected: msg.Analysis.AnomalyDetected,
			AnomalyScore:    msg.Analysis.AnomalyScore,
			RiskLevel:       strings.ToUpper(strings.TrimSpace(msg.Analysis.RiskLevel)),
			RiskScore:       msg.Analysis.RiskScore,
			Cluster:         msg.Analysis.Cluster,
		}
	default:
		return event, fmt.Errorf("%w: %q", errUnknownType, event.Type)
	}

	return event, nil
}
