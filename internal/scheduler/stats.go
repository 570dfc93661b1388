package scheduler

import "time"

// TickStats 最近一次扫描的统计
type TickStats struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Due        int       `json:"due"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	Error      string    `json:"error,omitempty"`
}

func (s *Scheduler) setLastTick(stats *TickStats) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	copied := *stats
	s.lastTick = &copied
}

// LastTick returns a copy of the most recent tick summary, false before the first tick.
func (s *Scheduler) LastTick() (TickStats, bool) {
	s.statsMu.RLock()
	defer s.statsMu.RUnlock()
	if s.lastTick == nil {
		return TickStats{}, false
	}
	return *s.lastTick, true
}
