package indexer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mvp-joe/folio/internal/scanner"
	"github.com/sirupsen/logrus"
)

// ErrorLogFile is the name of the rebuild problem log inside the log directory.
const ErrorLogFile = "indexer.log"

// appendErrorLog records a rebuild's problems in <logs>/indexer.log.
func appendErrorLog(dir, generation string, problems []scanner.Problem) error {
	if len(problems) == 0 {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(dir, ErrorLogFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open error log: %w", err)
	}
	defer f.Close()

	logger := logrus.New()
	logger.SetOutput(f)
	logger.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})

	for _, p := range problems {
		entry := logger.WithFields(logrus.Fields{
			"generation": generation,
			"path":       p.Path,
			"kind":       string(p.Kind),
		})
		if p.Related != "" {
			entry = entry.WithField("related", p.Related)
		}
		entry.Error(p.Message)
	}
	return nil
}
