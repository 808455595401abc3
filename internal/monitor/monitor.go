package monitor

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/stationops/nowplayd/internal/announce"
	"github.com/stationops/nowplayd/internal/config"
	"github.com/stationops/nowplayd/internal/history"
	"github.com/stationops/nowplayd/internal/metadata"
	"github.com/stationops/nowplayd/internal/submit"
	"github.com/stationops/nowplayd/internal/watcher"
	"github.com/stationops/nowplayd/pkg/logger"
)

// Monitor drives the whole pipeline: read file, parse, submit, announce.
// On startup it reads and submits once, then reacts to settled file changes
// until its context is cancelled.
type Monitor struct {
	cfg        *config.Config
	submitter  *submit.Submitter
	journal    *history.Store // nil when the journal is disabled
	announcers []announce.Announcer

	mu       sync.RWMutex
	snapshot Snapshot
}

// SubmissionInfo summarizes the most recent submission attempt.
type SubmissionInfo struct {
	SubmissionID string        `json:"submission_id"`
	Artist       string        `json:"artist"`
	Title        string        `json:"title"`
	StartTime    string        `json:"start_time"`
	Status       submit.Status `json:"status"`
	HTTPStatus   int           `json:"http_status,omitempty"`
	Error        string        `json:"error,omitempty"`
	At           time.Time     `json:"at"`
}

// Snapshot is the monitor's current state as served by the status API.
type Snapshot struct {
	FilePath       string          `json:"file_path"`
	StartedAt      time.Time       `json:"started_at"`
	LastChangeAt   *time.Time      `json:"last_change_at,omitempty"`
	Submitted      int             `json:"submitted"`
	Failed         int             `json:"failed"`
	LastSubmission *SubmissionInfo `json:"last_submission,omitempty"`
}

// New wires the monitor. journal may be nil; announcers may be empty.
func New(cfg *config.Config, submitter *submit.Submitter, journal *history.Store, announcers []announce.Announcer) *Monitor {
	return &Monitor{
		cfg:        cfg,
		submitter:  submitter,
		journal:    journal,
		announcers: announcers,
		snapshot: Snapshot{
			FilePath:  cfg.FilePath,
			StartedAt: time.Now(),
		},
	}
}

// Run reads and submits the current file content once, then watches for
// changes until ctx is cancelled. An unreadable file at startup is fatal;
// afterwards read failures only skip the affected cycle.
func (m *Monitor) Run(ctx context.Context) error {
	content, err := os.ReadFile(m.cfg.FilePath)
	if err != nil {
		return fmt.Errorf("cannot read monitored file %s: %w", m.cfg.FilePath, err)
	}
	m.process(ctx, string(content))

	w, err := watcher.New(m.cfg.FilePath, m.cfg.Debounce, func() {
		m.cycle(ctx)
	})
	if err != nil {
		return err
	}

	logger.Log.Infof("Started monitoring %s (debounce %v)", m.cfg.FilePath, m.cfg.Debounce)
	return w.Run(ctx)
}

// Status returns a copy of the current snapshot.
func (m *Monitor) Status() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// History returns recent journal entries, or ok=false when the journal is
// disabled.
func (m *Monitor) History(limit int) ([]history.Entry, bool, error) {
	if m.journal == nil {
		return nil, false, nil
	}
	entries, err := m.journal.Recent(limit)
	return entries, true, err
}

// cycle handles one settled change. Transient read failures are warnings:
// the update is dropped and the next change produces the next attempt.
func (m *Monitor) cycle(ctx context.Context) {
	content, err := os.ReadFile(m.cfg.FilePath)
	if err != nil {
		logger.Log.Warnf("Failed to read %s, skipping this change: %v", m.cfg.FilePath, err)
		return
	}

	now := time.Now()
	m.mu.Lock()
	m.snapshot.LastChangeAt = &now
	m.mu.Unlock()

	logger.Log.Infof("File changed: %s", m.cfg.FilePath)
	m.process(ctx, string(content))
}

// process parses, submits, journals and announces one update. Every settled
// change submits, even when the parsed fields match the previous submission.
func (m *Monitor) process(ctx context.Context, content string) {
	record := metadata.Parse(content)

	logger.Log.Infof("Extracted - Artist: %q, Title: %q", record.Artist, record.Title)
	if !record.Complete() {
		logger.Log.Warn("Missing artist or title, submitting with empty field(s)")
	}

	outcome := m.submitter.Submit(ctx, record)

	switch outcome.Status {
	case submit.StatusOK:
		logger.Log.Infof("Successfully posted: %s - %s", record.Artist, record.Title)
	case submit.StatusRejected:
		logger.Log.Errorf("Remote rejected update (status %d): %v", outcome.HTTPStatus, outcome.Err)
	case submit.StatusTransportError:
		logger.Log.Errorf("Submission failed: %v", outcome.Err)
	}

	m.record(record, outcome)
	m.announce(record, outcome)
}

// record updates the snapshot and appends to the journal when enabled.
func (m *Monitor) record(record metadata.Record, outcome submit.Outcome) {
	info := &SubmissionInfo{
		SubmissionID: outcome.SubmissionID,
		Artist:       record.Artist,
		Title:        record.Title,
		StartTime:    outcome.StartTime,
		Status:       outcome.Status,
		HTTPStatus:   outcome.HTTPStatus,
		At:           outcome.SubmittedAt,
	}
	if outcome.Err != nil {
		info.Error = outcome.Err.Error()
	}

	m.mu.Lock()
	if outcome.Status == submit.StatusOK {
		m.snapshot.Submitted++
	} else {
		m.snapshot.Failed++
	}
	m.snapshot.LastSubmission = info
	m.mu.Unlock()

	if m.journal == nil {
		return
	}
	err := m.journal.Record(history.Entry{
		SubmissionID: outcome.SubmissionID,
		Artist:       record.Artist,
		Title:        record.Title,
		StartTime:    outcome.StartTime,
		Status:       string(outcome.Status),
		HTTPStatus:   outcome.HTTPStatus,
		Error:        info.Error,
	})
	if err != nil {
		logger.Log.Warnf("Failed to journal submission: %v", err)
	}
}

// announce fans the update out to local sinks. Announcer failures never
// affect the submission outcome.
func (m *Monitor) announce(record metadata.Record, outcome submit.Outcome) {
	if len(m.announcers) == 0 {
		return
	}
	update := announce.NewUpdate(record, outcome.StartTime)
	for _, a := range m.announcers {
		if err := a.Announce(update); err != nil {
			logger.Log.Warnf("Announcer %s failed: %v", a.Name(), err)
		}
	}
}
