package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSummaryReportsAllCounters(t *testing.T) {
	start := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Second)
	stats := &ProcessingStats{
		FilesProcessed:     2,
		DocumentsProcessed: 40,
		OpinionsFound:      12,
		OpinionsParsed:     11,
		AppealsFound:       3,
		Errors:             1,
		StartTime:          &start,
		EndTime:            &end,
	}

	assert.Equal(t,
		"completed in 90.0s: files=2 documents=40 opinions_found=12 opinions_parsed=11 appeals_found=3 errors=1",
		stats.Summary())
}

func TestDurationWithoutEndTime(t *testing.T) {
	start := time.Now().UTC()
	stats := &ProcessingStats{StartTime: &start}
	assert.Zero(t, stats.Duration())
}
