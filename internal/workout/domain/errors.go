package domain

import "fmt"

// SessionNotFoundError indicates no session exists with the requested id.
type SessionNotFoundError struct {
	ID string
}

func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("session %q not found", e.ID)
}

// NoActiveSessionError indicates an operation that requires a live session
// was invoked while none exists. Callers treat this as a distinguishable
// condition, not a crash.
type NoActiveSessionError struct{}

func (e *NoActiveSessionError) Error() string {
	return "no active session"
}

// LogNotFoundError indicates no daily log exists for the requested date.
type LogNotFoundError struct {
	Date string
}

func (e *LogNotFoundError) Error() string {
	return fmt.Sprintf("daily log for %s not found", e.Date)
}

// AssignmentNotFoundError indicates no split assignment exists for the
// requested week.
type AssignmentNotFoundError struct {
	WeekStart string
}

func (e *AssignmentNotFoundError) Error() string {
	return fmt.Sprintf("split assignment for week %s not found", e.WeekStart)
}
