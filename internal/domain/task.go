package domain

import "time"

// Task is owned by exactly one user. SessionsCount is derived at read
// time: the number of "work" sessions recorded against the task.
type Task struct {
	ID          int64
	UserID      int64
	Title       string
	Description string
	Completed   bool
	CreatedAt   time.Time

	SessionsCount int64
}
