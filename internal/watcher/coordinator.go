package watcher

import (
	"context"
	"errors"

	"github.com/mvp-joe/folio/internal/indexer"
	"github.com/sirupsen/logrus"
)

// Rebuilder is the part of the indexer the coordinator drives.
type Rebuilder interface {
	Rebuild(ctx context.Context) (*indexer.Stats, error)
}

// Coordinator turns file change batches into rebuilds. Batches that arrive
// while a rebuild runs are coalesced into one follow-up rebuild.
type Coordinator struct {
	files     FileWatcher
	rebuilder Rebuilder
	log       logrus.FieldLogger
	trigger   chan struct{}

	// OnRebuild is called after each rebuild attempt.
	OnRebuild func(stats *indexer.Stats, err error)
}

// NewCoordinator creates a coordinator.
func NewCoordinator(files FileWatcher, rebuilder Rebuilder, logger logrus.FieldLogger) *Coordinator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Coordinator{
		files:     files,
		rebuilder: rebuilder,
		log:       logger,
		trigger:   make(chan struct{}, 1),
	}
}

// Run watches until ctx is cancelled, then stops the file watcher.
func (c *Coordinator) Run(ctx context.Context) error {
	if err := c.files.Start(ctx, c.handleFileChange); err != nil {
		return err
	}
	defer func() {
		if err := c.files.Stop(); err != nil {
			c.log.WithError(err).Warn("file watcher stop failed")
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.trigger:
			c.rebuild(ctx)
		}
	}
}

func (c *Coordinator) handleFileChange(files []string) {
	if len(files) == 0 {
		return
	}
	c.log.WithField("files", len(files)).Debug("change detected")

	select {
	case c.trigger <- struct{}{}:
	default:
	}
}

func (c *Coordinator) rebuild(ctx context.Context) {
	stats, err := c.rebuilder.Rebuild(ctx)
	switch {
	case errors.Is(err, indexer.ErrRebuildInProgress):
		c.log.Warn("another rebuild is running, skipping")
	case err != nil && ctx.Err() == nil:
		c.log.WithError(err).Error("rebuild failed")
	case err == nil:
		c.log.WithFields(logrus.Fields{
			"items":    stats.Items,
			"problems": len(stats.Problems),
			"duration": stats.Duration,
		}).Info("rebuilt after change")
	}
	if c.OnRebuild != nil {
		c.OnRebuild(stats, err)
	}
}
