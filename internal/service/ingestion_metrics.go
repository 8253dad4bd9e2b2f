package service

import (
	"fmt"
	"sync"
	"time"
)

// IngestionMetrics tracks statistics about the ingestion run
type IngestionMetrics struct {
	mu                  sync.RWMutex
	StartTime           time.Time
	RacesPersisted      int
	RacesDuplicate      int
	RacesIgnored        int
	ParticipantsWritten int
	ParticipantsSkipped int
	MalformedMessages   int
	PersistenceFailures int
}

// NewIngestionMetrics creates a new metrics tracker
func NewIngestionMetrics() *IngestionMetrics {
	return &IngestionMetrics{
		StartTime: time.Now(),
	}
}

// RecordPersisted records a successfully persisted race
func (m *IngestionMetrics) RecordPersisted(participants, skipped int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RacesPersisted++
	m.ParticipantsWritten += participants
	m.ParticipantsSkipped += skipped
}

// RecordDuplicate records a race skipped by the dedupe guard
func (m *IngestionMetrics) RecordDuplicate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RacesDuplicate++
}

// RecordIgnored records a message classified as not actionable
func (m *IngestionMetrics) RecordIgnored() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RacesIgnored++
}

// RecordMalformed records a message that failed to parse
func (m *IngestionMetrics) RecordMalformed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MalformedMessages++
}

// RecordPersistenceFailure records a failed write unit
func (m *IngestionMetrics) RecordPersistenceFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PersistenceFailures++
}

// Summary returns a one-line human readable summary
func (m *IngestionMetrics) Summary() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fmt.Sprintf(
		"persisted=%d duplicates=%d ignored=%d participants=%d skipped_participants=%d malformed=%d persistence_failures=%d uptime=%v",
		m.RacesPersisted, m.RacesDuplicate, m.RacesIgnored,
		m.ParticipantsWritten, m.ParticipantsSkipped,
		m.MalformedMessages, m.PersistenceFailures,
		time.Since(m.StartTime).Round(time.Second),
	)
}
