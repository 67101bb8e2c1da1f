package model

import "time"

// Session groups contiguous usage records that share a session identity.
type Session struct {
	ID                string               `json:"id"`
	StartTime         time.Time            `json:"start_time"`
	EndTime           *time.Time           `json:"end_time,omitempty"`
	UserID            string               `json:"user_id,omitempty"`
	TotalCost         float64              `json:"total_cost"`
	TotalInputTokens  int64                `json:"total_input_tokens"`
	TotalOutputTokens int64                `json:"total_output_tokens"`
	RequestCount      int                  `json:"request_count"`
	DurationSeconds   *int64               `json:"duration_seconds,omitempty"`
	Metadata          map[string]MetaValue `json:"metadata,omitempty"`
}

// NewSession creates a session with zeroed totals and no end time.
func NewSession(id string, startTime time.Time, userID string) *Session {
	return &Session{
		ID:        id,
		StartTime: startTime,
		UserID:    userID,
	}
}

// AddRecord folds a record into the session totals and advances the end
// time to the latest of the start time and every record timestamp seen,
// so the end time never precedes the start even for out-of-order records.
func (s *Session) AddRecord(r *UsageRecord) {
	s.TotalCost += r.Cost
	s.TotalInputTokens += r.InputTokens
	s.TotalOutputTokens += r.OutputTokens
	s.RequestCount++

	if s.EndTime == nil {
		end := s.StartTime
		if r.Timestamp.After(end) {
			end = r.Timestamp
		}
		s.EndTime = &end
	} else if r.Timestamp.After(*s.EndTime) {
		end := r.Timestamp
		s.EndTime = &end
	}
}

// CalculateDuration sets DurationSeconds from the start/end span in whole
// seconds. No-op while the session has no end time.
func (s *Session) CalculateDuration() {
	if s.EndTime == nil {
		return
	}
	secs := int64(s.EndTime.Sub(s.StartTime) / time.Second)
	s.DurationSeconds = &secs
}

// AvgCostPerRequest returns the mean cost per request, 0 for an empty
// session.
func (s *Session) AvgCostPerRequest() float64 {
	if s.RequestCount == 0 {
		return 0
	}
	return s.TotalCost / float64(s.RequestCount)
}

// AvgTokensPerRequest returns the mean token count per request, 0 for an
// empty session.
func (s *Session) AvgTokensPerRequest() float64 {
	if s.RequestCount == 0 {
		return 0
	}
	return float64(s.TotalInputTokens+s.TotalOutputTokens) / float64(s.RequestCount)
}

// Merge combines another partial session for the same id into s. Start
// time keeps the earliest, end time the latest; totals add elementwise.
func (s *Session) Merge(other *Session) {
	if other.StartTime.Before(s.StartTime) {
		s.StartTime = other.StartTime
	}
	if other.EndTime != nil && (s.EndTime == nil || other.EndTime.After(*s.EndTime)) {
		end := *other.EndTime
		s.EndTime = &end
	}
	if s.UserID == "" {
		s.UserID = other.UserID
	}
	s.TotalCost += other.TotalCost
	s.TotalInputTokens += other.TotalInputTokens
	s.TotalOutputTokens += other.TotalOutputTokens
	s.RequestCount += other.RequestCount
}
