// =============================================================================
// Smart Invoice Validator - Logging Setup
// =============================================================================
//
// Central logrus configuration. Commands log progress and per-file outcomes;
// the decoder/engine/encoder core stays log-free so it remains pure and
// embeddable.
//
// =============================================================================

package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Setup builds a configured logger. Output always goes to stderr; when
// logFile is non-empty, it is appended there as well.
func Setup(level, logFile string) (*logrus.Logger, error) {
	logger := logrus.New()

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger.SetLevel(parsed)

	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("cannot open log file: %w", err)
		}
		logger.SetOutput(io.MultiWriter(os.Stderr, f))
	} else {
		logger.SetOutput(os.Stderr)
	}

	return logger, nil
}
