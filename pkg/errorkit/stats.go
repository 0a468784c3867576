package errorkit

import (
	"fmt"
	"sync"
)

// Statistics is the process-lifetime error accumulator. One instance is
// created at orchestrator startup and injected into the retry executor; it is
// never persisted across runs.
type Statistics struct {
	mu         sync.Mutex
	total      uint64
	recovered  uint64
	critical   uint64
	byKind     map[ErrorKind]uint64
	bySeverity map[Severity]uint64
}

// StatsSnapshot is a read-only copy of the counters for reporting.
type StatsSnapshot struct {
	TotalErrors     uint64
	RecoveredErrors uint64
	CriticalErrors  uint64
	ByKind          map[ErrorKind]uint64
	BySeverity      map[Severity]uint64
	RecoveryRate    string
}

// NewStatistics creates an empty accumulator.
func NewStatistics() *Statistics {
	return &Statistics{
		byKind:     make(map[ErrorKind]uint64),
		bySeverity: make(map[Severity]uint64),
	}
}

// Record counts a terminal failure.
func (s *Statistics) Record(perr *PipelineError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total++
	s.byKind[perr.Kind]++
	s.bySeverity[perr.Severity]++
	if perr.Severity == SeverityCritical {
		s.critical++
	}
}

// RecordRecovery counts one successful mitigation. Only the orchestrator
// calls this, after a fallback strategy actually worked; the accumulator has
// no knowledge of retry outcomes on its own.
func (s *Statistics) RecordRecovery() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recovered++
}

// Snapshot returns a copy of the current counters.
func (s *Statistics) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	byKind := make(map[ErrorKind]uint64, len(s.byKind))
	for k, v := range s.byKind {
		byKind[k] = v
	}
	bySeverity := make(map[Severity]uint64, len(s.bySeverity))
	for k, v := range s.bySeverity {
		bySeverity[k] = v
	}

	rate := "0.00%"
	if s.total > 0 {
		rate = fmt.Sprintf("%.2f%%", float64(s.recovered)/float64(s.total)*100)
	}

	return StatsSnapshot{
		TotalErrors:     s.total,
		RecoveredErrors: s.recovered,
		CriticalErrors:  s.critical,
		ByKind:          byKind,
		BySeverity:      bySeverity,
		RecoveryRate:    rate,
	}
}
