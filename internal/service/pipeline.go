// Package service implements the race-event ingestion pipeline:
// receive, classify, dedupe, normalize, persist.
package service

import (
	"context"
	"encoding/json"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/zedalytics/internal/metrics"
	"github.com/yourusername/zedalytics/internal/repository"
)

// EventSource delivers raw feed messages in arrival order. Receive
// blocks until the next message or a connection-level failure.
type EventSource interface {
	Receive(ctx context.Context) (json.RawMessage, error)
}

// Pipeline runs the perpetual receive -> classify -> dedupe ->
// normalize -> persist loop. Processing is strictly sequential: the
// next message is not read until the current one is fully handled.
type Pipeline struct {
	source     EventSource
	normalizer *Normalizer
	seen       *SeenCache
	repos      repository.Repositories
	logger     *logrus.Logger
	stats      *IngestionMetrics
}

// NewPipeline creates an ingestion pipeline
func NewPipeline(
	source EventSource,
	normalizer *Normalizer,
	seen *SeenCache,
	repos repository.Repositories,
	logger *logrus.Logger,
) *Pipeline {
	if logger == nil {
		logger = logrus.New()
	}

	return &Pipeline{
		source:     source,
		normalizer: normalizer,
		seen:       seen,
		repos:      repos,
		logger:     logger,
		stats:      NewIngestionMetrics(),
	}
}

// Run processes messages until the source fails at the connection level
// or ctx is canceled. Malformed messages and failed write units are
// logged, counted, and skipped; only connection errors propagate, so
// the caller owns reconnect policy.
func (p *Pipeline) Run(ctx context.Context) error {
	for {
		raw, err := p.source.Receive(ctx)
		if err != nil {
			return err
		}

		p.handleMessage(ctx, raw)
	}
}

// handleMessage processes a single raw message to completion.
func (p *Pipeline) handleMessage(ctx context.Context, raw json.RawMessage) {
	race, err := p.normalizer.Classify(raw)
	if err != nil {
		p.stats.RecordMalformed()
		metrics.RecordMalformedMessage()
		p.logger.WithError(err).WithField("raw", truncate(raw, 512)).Warn("Skipping malformed message")
		return
	}
	if race == nil {
		p.stats.RecordIgnored()
		metrics.RecordRaceSkipped("not_actionable")
		return
	}

	if p.seen.Seen(race.ID) {
		p.stats.RecordDuplicate()
		metrics.RecordRaceSkipped("duplicate")
		p.logger.WithField("race_id", race.ID).Debug("Race already processed, skipping")
		return
	}

	batch := p.normalizer.Normalize(race)

	start := time.Now()
	if err := p.persist(ctx, batch); err != nil {
		p.stats.RecordPersistenceFailure()
		metrics.RecordPersistenceFailure()
		// Not marked seen: a later redelivery gets another chance to
		// store this race.
		p.logger.WithError(err).WithField("race_id", race.ID).Error("Failed to persist race")
		return
	}

	// Marked seen only after the write unit succeeded.
	p.seen.Mark(race.ID)
	metrics.UpdateSeenCacheSize(p.seen.Len())

	p.stats.RecordPersisted(len(batch.Participants), batch.SkippedParticipants)
	metrics.RecordRacePersisted(len(batch.Participants), time.Since(start).Seconds())

	p.logger.WithFields(logrus.Fields{
		"race_id":      race.ID,
		"race_name":    batch.Race.Name,
		"participants": len(batch.Participants),
	}).Info("Logged race")
}

// persist writes one normalized batch: horse and stable upserts first,
// then the race and its participants in a single transaction.
func (p *Pipeline) persist(ctx context.Context, batch *NormalizedBatch) error {
	for _, horse := range batch.Horses {
		if err := p.repos.Horse.Upsert(ctx, horse); err != nil {
			return &PersistenceError{RaceID: batch.Race.ID, Cause: err}
		}
	}

	for _, stable := range batch.Stables {
		if err := p.repos.Stable.Upsert(ctx, stable); err != nil {
			return &PersistenceError{RaceID: batch.Race.ID, Cause: err}
		}
	}

	inserted, err := p.repos.Race.InsertRaceAndParticipants(ctx, batch.Race, batch.Participants)
	if err != nil {
		return &PersistenceError{RaceID: batch.Race.ID, Cause: err}
	}
	if !inserted {
		p.logger.WithField("race_id", batch.Race.ID).Debug("Race row already present, participants untouched")
	}

	return nil
}

// Stats returns the pipeline's run statistics
func (p *Pipeline) Stats() *IngestionMetrics {
	return p.stats
}

// truncate trims raw to at most n bytes for logging, backing up so a
// multi-byte UTF-8 sequence is never split.
func truncate(raw []byte, n int) string {
	if len(raw) <= n {
		return string(raw)
	}
	for n > 0 && !utf8.RuneStart(raw[n]) {
		n--
	}
	return string(raw[:n]) + "..."
}
