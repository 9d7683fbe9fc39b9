// Package domain provides the pure domain layer for workout records with no
// infrastructure dependencies.
//
// It defines the Session, DailyLog, and SplitAssignment entities together
// with the repository interfaces the local store implements. The domain layer
// has no knowledge of infrastructure concerns (databases, sync transport).
package domain

import "time"

// SessionStatus represents the live state of an in-progress session.
// It is only meaningful while the session has no end time; completion resets
// the status to active so the finished record is stored in a neutral state.
type SessionStatus string

const (
	// SessionStatusActive indicates the session clock is running.
	SessionStatusActive SessionStatus = "active"

	// SessionStatusPaused indicates the session clock is stopped.
	SessionStatusPaused SessionStatus = "paused"
)

// IsValid returns true if the status is a recognized session status.
func (s SessionStatus) IsValid() bool {
	switch s {
	case SessionStatusActive, SessionStatusPaused:
		return true
	default:
		return false
	}
}

// Session represents a single workout instance.
// All fields are unexported to enforce encapsulation; use the constructor
// and getter methods to access data. The zero value is not usable.
type Session struct {
	id     string
	userID string
	name   string

	startTime time.Time
	endTime   *time.Time

	activities []Activity

	status      SessionStatus
	pausedAt    *time.Time
	totalPaused time.Duration

	dirty     bool
	updatedAt time.Time
}

// NewSession creates a new active Session owned by userID, started at start.
// The session is dirty until the remote store accepts it.
func NewSession(id, userID, name string, start time.Time) *Session {
	return &Session{
		id:         id,
		userID:     userID,
		name:       name,
		startTime:  start,
		activities: nil,
		status:     SessionStatusActive,
		dirty:      true,
		updatedAt:  start,
	}
}

// ReconstituteSession creates a Session from existing data, typically when
// hydrating from the local store or from a pulled remote row.
func ReconstituteSession(
	id, userID, name string,
	startTime time.Time,
	endTime *time.Time,
	activities []Activity,
	status SessionStatus,
	pausedAt *time.Time,
	totalPaused time.Duration,
	dirty bool,
	updatedAt time.Time,
) *Session {
	if !status.IsValid() {
		status = SessionStatusActive
	}
	return &Session{
		id:          id,
		userID:      userID,
		name:        name,
		startTime:   startTime,
		endTime:     endTime,
		activities:  activities,
		status:      status,
		pausedAt:    pausedAt,
		totalPaused: totalPaused,
		dirty:       dirty,
		updatedAt:   updatedAt,
	}
}

// ID returns the stable unique identifier for this session.
func (s *Session) ID() string { return s.id }

// UserID returns the owning user id.
func (s *Session) UserID() string { return s.userID }

// Name returns the display name of this session.
func (s *Session) Name() string { return s.name }

// StartTime returns when this session started.
func (s *Session) StartTime() time.Time { return s.startTime }

// EndTime returns when this session ended, or nil while in progress.
func (s *Session) EndTime() *time.Time { return s.endTime }

// Status returns the live status. Only meaningful while EndTime is nil.
func (s *Session) Status() SessionStatus { return s.status }

// PausedAt returns when the current pause began, or nil if not paused.
func (s *Session) PausedAt() *time.Time { return s.pausedAt }

// TotalPaused returns the cumulative paused duration.
func (s *Session) TotalPaused() time.Duration { return s.totalPaused }

// Dirty reports whether the remote store has yet to accept this record.
func (s *Session) Dirty() bool { return s.dirty }

// UpdatedAt returns when this session was last mutated.
func (s *Session) UpdatedAt() time.Time { return s.updatedAt }

// Activities returns the ordered activity list.
func (s *Session) Activities() []Activity { return s.activities }

// IsCompleted reports whether an end time has been stamped.
func (s *Session) IsCompleted() bool { return s.endTime != nil }

// IsPaused reports whether the session clock is currently stopped.
func (s *Session) IsPaused() bool { return s.endTime == nil && s.status == SessionStatusPaused }

// SetName updates the display name.
func (s *Session) SetName(name string, now time.Time) {
	s.name = name
	s.touch(now)
}

// SetStartTime directly edits the start time. Used for retroactive correction
// of historical sessions; never recomputes totalPaused.
func (s *Session) SetStartTime(t time.Time, now time.Time) {
	s.startTime = t
	s.touch(now)
}

// SetEndTime directly edits the end time. Used for retroactive correction
// of historical sessions; never recomputes totalPaused.
func (s *Session) SetEndTime(t time.Time, now time.Time) {
	end := t
	s.endTime = &end
	s.touch(now)
}

// Pause stops the session clock. No-op if already paused or completed.
func (s *Session) Pause(now time.Time) {
	if s.IsCompleted() || s.status == SessionStatusPaused {
		return
	}
	at := now
	s.status = SessionStatusPaused
	s.pausedAt = &at
	s.touch(now)
}

// Resume restarts the session clock, folding the open pause interval into
// the total. No-op if not paused. A paused status without a pausedAt stamp
// is repaired without accruing time.
func (s *Session) Resume(now time.Time) {
	if s.status != SessionStatusPaused {
		return
	}
	if s.pausedAt != nil {
		if d := now.Sub(*s.pausedAt); d > 0 {
			s.totalPaused += d
		}
	}
	s.status = SessionStatusActive
	s.pausedAt = nil
	s.touch(now)
}

// Complete closes the session. If paused, the open pause interval is folded
// into the total first. The end time is stamped to now only when not already
// set, so historical edits survive a subsequent save. The status resets to
// active for the finished record.
func (s *Session) Complete(now time.Time) {
	if s.status == SessionStatusPaused && s.pausedAt != nil {
		if d := now.Sub(*s.pausedAt); d > 0 {
			s.totalPaused += d
		}
	}
	if s.endTime == nil {
		end := now
		s.endTime = &end
	}
	s.status = SessionStatusActive
	s.pausedAt = nil
	s.touch(now)
}

// ActiveElapsed returns the working time of the session: wall time minus
// paused time. While paused, the clock reads as of the pause start. The
// result is clamped to zero to defend against clock skew.
func (s *Session) ActiveElapsed(now time.Time) time.Duration {
	ref := now
	if s.endTime != nil {
		ref = *s.endTime
	} else if s.status == SessionStatusPaused && s.pausedAt != nil {
		ref = *s.pausedAt
	}
	elapsed := ref.Sub(s.startTime) - s.totalPaused
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// TotalElapsed returns the wall-clock span of the session including paused
// time, clamped to zero. Kept distinct from ActiveElapsed on purpose.
func (s *Session) TotalElapsed(now time.Time) time.Duration {
	ref := now
	if s.endTime != nil {
		ref = *s.endTime
	}
	elapsed := ref.Sub(s.startTime)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// AddActivity appends an activity to the session.
func (s *Session) AddActivity(a Activity, now time.Time) {
	s.activities = append(s.activities, a)
	s.touch(now)
}

// RemoveActivity removes the activity with the given id.
// Removing a nonexistent id is a no-op.
func (s *Session) RemoveActivity(activityID string, now time.Time) {
	kept := s.activities[:0]
	for _, a := range s.activities {
		if a.ID != activityID {
			kept = append(kept, a)
		}
	}
	if len(kept) == len(s.activities) {
		return
	}
	s.activities = kept
	s.touch(now)
}

// UpdateActivity replaces the activity matching the given activity's id.
// A non-matching id is a no-op.
func (s *Session) UpdateActivity(a Activity, now time.Time) {
	for i := range s.activities {
		if s.activities[i].ID == a.ID {
			s.activities[i] = a
			s.touch(now)
			return
		}
	}
}

// FindActivity returns the activity with the given id, or nil.
func (s *Session) FindActivity(activityID string) *Activity {
	for i := range s.activities {
		if s.activities[i].ID == activityID {
			return &s.activities[i]
		}
	}
	return nil
}

// MarkSynced clears the dirty flag after a confirmed remote accept.
func (s *Session) MarkSynced() { s.dirty = false }

// touch stamps the update time and flags the record for upload.
func (s *Session) touch(now time.Time) {
	s.updatedAt = now
	s.dirty = true
}
