package indexer

// ProgressReporter provides callbacks for reporting rebuild progress.
// Implementations can display progress bars, log messages, or remain silent.
type ProgressReporter interface {
	// OnDiscoveryStart is called when file discovery begins.
	OnDiscoveryStart()

	// OnDiscoveryComplete is called when file discovery finishes.
	OnDiscoveryComplete(totalFiles int)

	// OnFileProcessingStart is called before parsing files.
	OnFileProcessingStart(totalFiles int)

	// OnFileProcessed is called after each file is parsed. Files are parsed
	// in parallel, so implementations must be safe for concurrent use.
	OnFileProcessed(path string)

	// OnWriting is called when the cache generation is being written.
	OnWriting()

	// OnComplete is called when a rebuild completes successfully.
	OnComplete(stats *Stats)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnDiscoveryStart()                    {}
func (n *NoOpProgressReporter) OnDiscoveryComplete(totalFiles int)   {}
func (n *NoOpProgressReporter) OnFileProcessingStart(totalFiles int) {}
func (n *NoOpProgressReporter) OnFileProcessed(path string)          {}
func (n *NoOpProgressReporter) OnWriting()                           {}
func (n *NoOpProgressReporter) OnComplete(stats *Stats)              {}
