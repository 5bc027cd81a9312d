package dto

import "time"

type CreateSessionRequest struct {
	TaskID      int64  `json:"task_id" binding:"required"`
	SessionType string `json:"session_type" binding:"required,oneof=work break"`
	Duration    int    `json:"duration" binding:"required,min=1"` // minutes
}

type SessionResponse struct {
	ID          int64     `json:"id"`
	TaskID      int64     `json:"task_id"`
	SessionType string    `json:"session_type"`
	Duration    int       `json:"duration"`
	CompletedAt time.Time `json:"completed_at"`
}

// TopTask is one entry of the daily top-tasks list.
type TopTask struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Sessions int    `json:"sessions"`
}

// StatsResponse is returned by GET /api/sessions/stats.
type StatsResponse struct {
	Date               string    `json:"date"`
	TotalWorkSessions  int       `json:"total_work_sessions"`
	TotalBreakSessions int       `json:"total_break_sessions"`
	TotalWorkTime      int       `json:"total_work_time"`  // minutes
	TotalBreakTime     int       `json:"total_break_time"` // minutes
	FocusEfficiency    int       `json:"focus_efficiency"` // percent
	TopTasks           []TopTask `json:"top_tasks"`
}
