package logging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"sales_dashboard/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// OpenLogFile returns nil when logging to a file is disabled.
func OpenLogFile(logFile string) (*os.File, error) {
	if logFile == "" {
		return nil, nil
	}

	if dir := filepath.Dir(logFile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}

	file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	return file, nil
}

func Level(debug bool) zapcore.Level {
	if debug {
		return zap.DebugLevel
	}
	return zap.InfoLevel
}

// Sink is the JSON log file teed onto the application logger. Entries carry
// the backend environment as api_env. The file, level and environment can be
// changed after loggers were handed out; every logger derived from Attach
// follows the change.
type Sink struct {
	mu    sync.RWMutex
	level zap.AtomicLevel
	path  string
	env   string
	file  *os.File
	core  zapcore.Core
}

func NewSink(cfg config.Config) (*Sink, error) {
	s := &Sink{level: zap.NewAtomicLevelAt(Level(cfg.Debug))}
	if err := s.Reconfigure(cfg.LogFile, cfg.Debug, cfg.APIEnv); err != nil {
		return nil, err
	}
	return s, nil
}

// Attach tees base into the sink.
func (s *Sink) Attach(base *zap.Logger) *zap.Logger {
	return base.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, &sinkCore{sink: s})
	}))
}

func (s *Sink) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path
}

// Reconfigure switches the file, level and api_env. An empty path disables
// the file. The previous file is closed once the new one is in place.
func (s *Sink) Reconfigure(path string, debug bool, apiEnv string) error {
	s.level.SetLevel(Level(debug))

	s.mu.Lock()
	defer s.mu.Unlock()

	if path == s.path && apiEnv == s.env && (s.file != nil || path == "") {
		return nil
	}

	file := s.file
	if path != s.path || file == nil {
		opened, err := OpenLogFile(path)
		if err != nil {
			return err
		}
		file = opened
	}

	var core zapcore.Core
	if file != nil {
		encCfg := zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		core = zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(file), s.level)
		if apiEnv != "" {
			core = core.With([]zapcore.Field{zap.String("api_env", apiEnv)})
		}
	}

	previous := s.file
	s.path, s.env, s.file, s.core = path, apiEnv, file, core
	if previous != nil && previous != file {
		_ = previous.Sync()
		return previous.Close()
	}
	return nil
}

func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file := s.file
	s.path, s.file, s.core = "", nil, nil
	if file == nil {
		return nil
	}
	return errors.Join(file.Sync(), file.Close())
}

func (s *Sink) current() zapcore.Core {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.core
}

// sinkCore resolves the sink's file core on every write so loggers created
// before a Reconfigure follow it.
type sinkCore struct {
	sink   *Sink
	fields []zapcore.Field
}

func (c *sinkCore) Enabled(level zapcore.Level) bool {
	return c.sink.level.Enabled(level) && c.sink.current() != nil
}

func (c *sinkCore) With(fields []zapcore.Field) zapcore.Core {
	return &sinkCore{sink: c.sink, fields: append(slices.Clip(c.fields), fields...)}
}

func (c *sinkCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *sinkCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	c.sink.mu.RLock()
	defer c.sink.mu.RUnlock()
	if c.sink.core == nil {
		return nil
	}
	all := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	all = append(append(all, c.fields...), fields...)
	return c.sink.core.Write(entry, all)
}

func (c *sinkCore) Sync() error {
	if core := c.sink.current(); core != nil {
		return core.Sync()
	}
	return nil
}
