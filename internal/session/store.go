package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"sales_dashboard/internal/config"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
)

const (
	KeyAccessToken = "access_token"
	KeyUsername    = "username"
)

type fileData struct {
	Values map[string]string `toml:"values"`
}

// Store is a durable key-value file. Every read goes to disk so a login from
// another process is visible immediately.
type Store struct {
	path   string
	mu     sync.Mutex
	logger *zap.Logger
}

func NewStore(cfg config.Config, logger *zap.Logger) *Store {
	return Open(cfg.SessionFile, logger)
}

func Open(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		path:   path,
		logger: logger.Named("session"),
	}
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		s.logger.Warn("session file unreadable", zap.String("path", s.path), zap.Error(err))
		return "", false
	}
	value, ok := values[key]
	return value, ok
}

func (s *Store) Set(key, value string) error {
	return s.update(func(values map[string]string) {
		values[key] = value
	})
}

func (s *Store) Delete(keys ...string) error {
	return s.update(func(values map[string]string) {
		for _, key := range keys {
			delete(values, key)
		}
	})
}

func (s *Store) Token() string {
	token, _ := s.Get(KeyAccessToken)
	return strings.TrimSpace(token)
}

func (s *Store) Username() string {
	username, _ := s.Get(KeyUsername)
	return username
}

// SetToken stores the bearer token and, when known, the user it was issued to.
func (s *Store) SetToken(token, username string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("session token is empty")
	}
	return s.update(func(values map[string]string) {
		values[KeyAccessToken] = token
		if username != "" {
			values[KeyUsername] = username
		} else {
			delete(values, KeyUsername)
		}
	})
}

func (s *Store) ClearToken() error {
	return s.Delete(KeyAccessToken, KeyUsername)
}

func (s *Store) LoggedIn() bool {
	return s.Token() != ""
}

func (s *Store) update(mutate func(map[string]string)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		s.logger.Warn("discarding unreadable session file", zap.String("path", s.path), zap.Error(err))
		values = map[string]string{}
	}
	mutate(values)
	return s.save(values)
}

func (s *Store) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var decoded fileData
	if err := toml.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("parse session file: %w", err)
	}
	if decoded.Values == nil {
		decoded.Values = map[string]string{}
	}
	return decoded.Values, nil
}

func (s *Store) save(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	data, err := toml.Marshal(fileData{Values: values})
	if err != nil {
		return fmt.Errorf("encode session file: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}
