package alerts

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sales_dashboard/internal/analytics"
	"sales_dashboard/internal/config"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticToken string

func (t staticToken) Token() string { return string(t) }

const (
	alertFrame  = `{"type": "alert", "priority": "HIGH", "timestamp": "2025-01-01T10:00:00", "store": 4, "dept": 7, "message": "⚠ High risk detected from IoT update", "risk_score": 70}`
	updateFrame = `{"type": "iot_update", "timestamp": "2025-01-01T10:00:01", "data": {"store": 4, "dept": 7, "weekly_sales": 24924.5, "temperature": 42.3, "is_holiday": 1}, "analysis": {"anomaly_detected": true, "anomaly_score": -0.2, "risk_level": "high", "risk_score": 70, "cluster": 6}}`
)

func newSocketServer(t *testing.T, frames []string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ws/alerts", r.URL.Path)
		assert.NotEmpty(t, r.URL.Query().Get("client_id"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, frame := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
				return
			}
		}
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
		time.Sleep(50 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestStream(t *testing.T, baseURL string) *Stream {
	t.Helper()
	cfg := config.Config{APIBaseURL: baseURL, AlertsPath: "/ws/alerts", Timeout: 2 * time.Second}
	stream, err := NewStream(cfg, staticToken("tok"), zap.NewNop())
	require.NoError(t, err)
	return stream
}

func TestStreamDeliversDecodedEvents(t *testing.T) {
	srv := newSocketServer(t, []string{alertFrame, `{"type": "heartbeat"}`, `not json`, updateFrame})
	stream := newTestStream(t, srv.URL)

	var events []Event
	err := stream.Run(context.Background(), func(e Event) error {
		events = append(events, e)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, events, 2)

	require.NotNil(t, events[0].Alert)
	assert.Equal(t, TypeAlert, events[0].Type)
	assert.Equal(t, Alert{Priority: "HIGH", Store: 4, Dept: 7, Message: "⚠ High risk detected from IoT update", RiskScore: 70}, *events[0].Alert)

	require.NotNil(t, events[1].Update)
	assert.True(t, events[1].Update.IsHoliday)
	assert.True(t, events[1].Update.AnomalyDetected)
	assert.Equal(t, "HIGH", events[1].Update.RiskLevel)
	assert.Equal(t, 6, events[1].Update.Cluster)
}

func TestStreamStopsOnHandlerError(t *testing.T) {
	srv := newSocketServer(t, []string{alertFrame, alertFrame})
	stream := newTestStream(t, srv.URL)

	stop := errors.New("stop")
	calls := 0
	err := stream.Run(context.Background(), func(Event) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestStreamConnectFailureIsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	stream := newTestStream(t, srv.URL)
	srv.Close()

	err := stream.Run(context.Background(), func(Event) error { return nil })
	assert.ErrorIs(t, err, analytics.ErrAPI)
}

func TestSocketURL(t *testing.T) {
	got, err := socketURL("https://api.example.com/base/", "ws/alerts")
	require.NoError(t, err)
	assert.Equal(t, "wss://api.example.com/base/ws/alerts", got)

	got, err = socketURL("http://localhost:8000", "")
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8000/ws/alerts", got)

	_, err = socketURL("ftp://host", "/ws")
	assert.Error(t, err)
}
