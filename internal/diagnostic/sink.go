package diagnostic

import (
	"go.uber.org/zap"
)

// Sink receives progress lines and diagnostics. It is passed explicitly
// to every stage; a nil *Sink discards everything.
type Sink struct {
	logger *zap.Logger
	diags  Diagnostics
}

// NewSink creates a Sink logging through logger. A nil logger is replaced
// by a no-op logger.
func NewSink(logger *zap.Logger) *Sink {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Sink{logger: logger}
}

// Logger returns the underlying logger.
func (s *Sink) Logger() *zap.Logger {
	if s == nil {
		return zap.NewNop()
	}

	return s.logger
}

// Progress logs a human-readable progress line. Progress is never
// collected as a diagnostic.
func (s *Sink) Progress(msg string, fields ...zap.Field) {
	if s == nil {
		return
	}

	s.logger.Info(msg, fields...)
}

// Report records a diagnostic and logs it at the matching level.
func (s *Sink) Report(d Diagnostic) {
	if s == nil {
		return
	}

	s.diags.Add(d)

	fields := []zap.Field{zap.String("code", d.Code)}
	if d.Entry != "" {
		fields = append(fields, zap.String("entry", d.Entry))
	}

	if d.Symbol != "" {
		fields = append(fields, zap.String("symbol", d.Symbol))
	}

	if len(d.Suggestions) > 0 {
		fields = append(fields, zap.Strings("suggestions", d.Suggestions))
	}

	switch d.Severity {
	case DiagnosticError:
		s.logger.Error(d.Message, fields...)
	case DiagnosticWarning:
		s.logger.Warn(d.Message, fields...)
	default:
		s.logger.Debug(d.Message, fields...)
	}
}

// Warn records a warning.
func (s *Sink) Warn(code, message, entry, symbol string) {
	s.Report(Diagnostic{Severity: DiagnosticWarning, Code: code, Message: message, Entry: entry, Symbol: symbol})
}

// Info records an informational diagnostic.
func (s *Sink) Info(code, message, entry, symbol string) {
	s.Report(Diagnostic{Severity: DiagnosticInfo, Code: code, Message: message, Entry: entry, Symbol: symbol})
}

// Error records a non-fatal error diagnostic.
func (s *Sink) Error(code, message, entry, symbol string) {
	s.Report(Diagnostic{Severity: DiagnosticError, Code: code, Message: message, Entry: entry, Symbol: symbol})
}

// Diagnostics returns everything collected so far.
func (s *Sink) Diagnostics() *Diagnostics {
	if s == nil {
		return &Diagnostics{}
	}

	return &s.diags
}
