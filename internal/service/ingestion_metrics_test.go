package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIngestionMetricsSummary(t *testing.T) {
	m := NewIngestionMetrics()
	m.RecordPersisted(8, 1)
	m.RecordPersisted(5, 0)
	m.RecordDuplicate()
	m.RecordIgnored()
	m.RecordMalformed()
	m.RecordPersistenceFailure()

	summary := m.Summary()
	assert.Contains(t, summary, "persisted=2")
	assert.Contains(t, summary, "duplicates=1")
	assert.Contains(t, summary, "ignored=1")
	assert.Contains(t, summary, "participants=13")
	assert.Contains(t, summary, "skipped_participants=1")
	assert.Contains(t, summary, "malformed=1")
	assert.Contains(t, summary, "persistence_failures=1")
	assert.Contains(t, summary, "uptime=")
}
