package domain

// SessionRepository defines the local-store persistence interface for
// Session entities. It is the only write path; the dirty bookkeeping is
// centralized here and cannot be bypassed.
type SessionRepository interface {
	// Save persists a session keyed by its id. Idempotent: re-saving an
	// unchanged record is safe. The session's dirty flag is stored as-is;
	// locally-originated mutations arrive dirty, pulled rows arrive clean.
	Save(session *Session) error

	// FindByID retrieves a session by id.
	// Returns SessionNotFoundError if no matching session exists.
	FindByID(id string) (*Session, error)

	// Delete removes a session by id.
	// Returns SessionNotFoundError if no matching session exists.
	Delete(id string) error

	// ListAll retrieves all sessions ordered by start time descending.
	ListAll() ([]*Session, error)

	// ListOpen retrieves sessions with no end time, newest first. Under the
	// single-active invariant this holds at most one element, but the store
	// reports whatever it finds so callers can self-heal.
	ListOpen() ([]*Session, error)

	// ListDirty retrieves sessions pending upload.
	ListDirty() ([]*Session, error)

	// MarkSynced clears the dirty flag for exactly the given ids.
	MarkSynced(ids []string) error

	// DeleteAll removes every session record.
	DeleteAll() error
}

// DailyLogRepository defines the local-store persistence interface for
// DailyLog records, keyed by date string.
type DailyLogRepository interface {
	// Save persists a log keyed by its date. Last write overwrites.
	Save(log *DailyLog) error

	// FindByDate retrieves the log for a YYYY-MM-DD date.
	// Returns LogNotFoundError if none exists.
	FindByDate(date string) (*DailyLog, error)

	// ListDirty retrieves logs pending upload.
	ListDirty() ([]*DailyLog, error)

	// MarkSynced clears the dirty flag for exactly the given dates.
	MarkSynced(dates []string) error

	// DeleteAll removes every daily log record.
	DeleteAll() error
}

// SplitRepository defines the local-store persistence interface for weekly
// SplitAssignment records, keyed by week-start date string.
type SplitRepository interface {
	// Save persists an assignment keyed by its week start.
	Save(assignment *SplitAssignment) error

	// FindByWeek retrieves the assignment whose week starts on the given
	// YYYY-MM-DD Sunday. Returns AssignmentNotFoundError if none exists.
	FindByWeek(weekStart string) (*SplitAssignment, error)

	// ListDirty retrieves assignments pending upload.
	ListDirty() ([]*SplitAssignment, error)

	// MarkSynced clears the dirty flag for exactly the given week starts.
	MarkSynced(weekStarts []string) error

	// DeleteAll removes every assignment record.
	DeleteAll() error
}
