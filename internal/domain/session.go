package domain

import "time"

// Session types.
const (
	SessionWork  = "work"
	SessionBreak = "break"
)

// Session is one completed timer interval belonging to a task.
// Immutable once created; only inserted or cascade-deleted with its task.
type Session struct {
	ID          int64
	TaskID      int64
	Type        string
	Duration    int // minutes
	CompletedAt time.Time
}

// DaySession is a session joined with its parent task title, as returned
// by the daily statistics scan.
type DaySession struct {
	Session
	TaskTitle string
}
