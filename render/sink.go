package render

import (
	"errors"

	"go.uber.org/zap"

	"github.com/Protocol-Lattice/dreamsearch/internal/logging"
	"github.com/Protocol-Lattice/dreamsearch/parser"
)

// Sink receives diagnostics about queries that could not be parsed.
// Implementations must be safe for concurrent use.
type Sink interface {
	ParseFailed(raw string, err error)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(raw string, err error)

func (f SinkFunc) ParseFailed(raw string, err error) { f(raw, err) }

// NopSink discards diagnostics.
var NopSink Sink = SinkFunc(func(string, error) {})

// LogSink reports parse failures to logger at warn level.
func LogSink(logger *zap.Logger) Sink {
	logger = logging.Default(logger).Named("render")
	return SinkFunc(func(raw string, err error) {
		fields := []zap.Field{zap.String("query", raw), zap.Error(err)}
		var pe *parser.ParseError
		if errors.As(err, &pe) {
			fields = append(fields, zap.Int("pos", pe.Pos))
		}
		logger.Warn("query parse failed, rendering raw text", fields...)
	})
}
