package modelmapper

import "log/slog"

// Logger is the structured logger a ModelMapper reports TypeMap builds through.
//
// Attributes are alternating key-value pairs, following the log/slog convention:
//
//	logger.Debug("type map built", "pair", "main.Order -> main.OrderDTO", "mappings", 4)
//
// Use [NewSlogAdapter] to log through a *slog.Logger:
//
//	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
//	mapper := modelmapper.New(modelmapper.WithLogger(modelmapper.NewSlogAdapter(slog.New(handler))))
type Logger interface {
	Debug(msg string, attrs ...any)
	Info(msg string, attrs ...any)
	Warn(msg string, attrs ...any)
	Error(msg string, attrs ...any)

	// With returns a Logger prepending attrs to every entry.
	With(attrs ...any) Logger
}

// NopLogger discards all output. It is the default logger.
type NopLogger struct{}

func (NopLogger) Debug(_ string, _ ...any) {}

func (NopLogger) Info(_ string, _ ...any) {}

func (NopLogger) Warn(_ string, _ ...any) {}

func (NopLogger) Error(_ string, _ ...any) {}

func (n NopLogger) With(_ ...any) Logger { return n }

var _ Logger = NopLogger{}

// SlogAdapter implements Logger over a *slog.Logger.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter wraps logger; a nil logger means slog.Default().
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}

	return &SlogAdapter{logger: logger}
}

func (s *SlogAdapter) Debug(msg string, attrs ...any) {
	s.logger.Debug(msg, attrs...)
}

func (s *SlogAdapter) Info(msg string, attrs ...any) {
	s.logger.Info(msg, attrs...)
}

func (s *SlogAdapter) Warn(msg string, attrs ...any) {
	s.logger.Warn(msg, attrs...)
}

func (s *SlogAdapter) Error(msg string, attrs ...any) {
	s.logger.Error(msg, attrs...)
}

func (s *SlogAdapter) With(attrs ...any) Logger {
	return &SlogAdapter{logger: s.logger.With(attrs...)}
}

var _ Logger = (*SlogAdapter)(nil)
