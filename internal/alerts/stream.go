package alerts

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sales_dashboard/internal/analytics"
	"sales_dashboard/internal/config"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const closeGracePeriod = time.Second

// Stream follows the backend's alert socket. It connects once and does not
// reconnect.
type Stream struct {
	endpoint string
	clientID string
	dialer   *websocket.Dialer
	tokens   analytics.TokenSource
	logger   *zap.Logger
}

func NewStream(cfg config.Config, tokens analytics.TokenSource, logger *zap.Logger) (*Stream, error) {
	baseURL, err := cfg.BaseURL()
	if err != nil {
		return nil, err
	}
	endpoint, err := socketURL(baseURL, cfg.AlertsPath)
	if err != nil {
		return nil, err
	}

	return &Stream{
		endpoint: endpoint,
		clientID: uuid.NewString(),
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: cfg.Timeout,
		},
		tokens: tokens,
		logger: logger.Named("alerts"),
	}, nil
}

func (s *Stream) Endpoint() string {
	return s.endpoint
}

// Run delivers events to handle until ctx ends, the server closes the socket
// or handle returns an error.
func (s *Stream) Run(ctx context.Context, handle func(Event) error) error {
	target, err := url.Parse(s.endpoint)
	if err != nil {
		return fmt.Errorf("parse alerts url: %w", err)
	}
	query := target.Query()
	query.Set("client_id", s.clientID)
	target.RawQuery = query.Encode()

	header := http.Header{}
	if s.tokens != nil {
		if token := strings.TrimSpace(s.tokens.Token()); token != "" {
			header.Set("Authorization", "Bearer "+token)
		}
	}

	conn, resp, err := s.dialer.DialContext(ctx, target.String(), header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("%w: alerts handshake: %s", analytics.ErrAPI, resp.Status)
		}
		return fmt.Errorf("%w: alerts connect: %v", analytics.ErrAPI, err)
	}
	defer conn.Close()

	s.logger.Info("alert stream connected",
		zap.String("endpoint", s.endpoint),
		zap.String("client_id", s.clientID),
	)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(closeGracePeriod))
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("%w: alerts read: %v", analytics.ErrAPI, err)
		}

		event, err := Decode(payload)
		if errors.Is(err, errUnknownType) {
			s.logger.Debug("skipping alert frame", zap.String("type", event.Type))
			continue
		}
		if err != nil {
			s.logger.Warn("malformed alert frame", zap.Error(err))
			continue
		}

		if err := handle(event); err != nil {
			return err
		}
	}
}

func socketURL(baseURL, path string) (string, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}

	switch parsed.Scheme {
	case "https", "wss":
		parsed.Scheme = "wss"
	case "http", "ws", "":
		parsed.Scheme = "ws"
	default:
		return "", fmt.Errorf("unsupported base url scheme %q", parsed.Scheme)
	}

	if path == "" {
		path = "/ws/alerts"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/") + path
	return parsed.String(), nil
}
