package service

import (
	"fmt"
	"time"
)

// RunStats tracks the counters of one ranking run. A run is sequential, so
// the stats are owned by the goroutine executing it and copied out when done.
type RunStats struct {
	StartTime    time.Time     `json:"start_time"`
	Duration     time.Duration `json:"duration_ns"`
	RacesFetched int           `json:"races_fetched"`
	OutOfWindow  int           `json:"out_of_window"`
	Duplicates   int           `json:"duplicates"`
	Scored       int           `json:"scored"`
	Skipped      int           `json:"skipped"`
	Returned     int           `json:"returned"`
}

// NewRunStats creates stats stamped with the wall-clock start time.
func NewRunStats() *RunStats {
	return &RunStats{StartTime: time.Now()}
}

// Finish stamps the run duration and result count.
func (s *RunStats) Finish(returned int) {
	s.Returned = returned
	s.Duration = time.Since(s.StartTime)
}

// SuccessRate returns the share of in-window races that scored, in percent.
func (s RunStats) SuccessRate() float64 {
	attempted := s.Scored + s.Skipped
	if attempted == 0 {
		return 0
	}
	return float64(s.Scored) / float64(attempted) * 100
}

// String returns a formatted summary of the run.
func (s RunStats) String() string {
	return fmt.Sprintf(
		"RunStats{Fetched=%d, OutOfWindow=%d, Duplicates=%d, Scored=%d (%.1f%%), Skipped=%d, Returned=%d, Duration=%v}",
		s.RacesFetched,
		s.OutOfWindow,
		s.Duplicates,
		s.Scored,
		s.SuccessRate(),
		s.Skipped,
		s.Returned,
		s.Duration,
	)
}
