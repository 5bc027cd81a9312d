package service

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/deepthireddy246/focustrack/internal/cache"
	dom "github.com/deepthireddy246/focustrack/internal/domain"
	"github.com/deepthireddy246/focustrack/internal/repo"

	"github.com/jackc/pgx/v5"
)

var ErrInvalidSession = errors.New("session type must be work or break and duration positive")

// topTasksLimit caps the daily top-tasks list.
const topTasksLimit = 5

// TaskStat is one entry of the daily top-tasks list.
type TaskStat struct {
	ID       int64
	Title    string
	Sessions int
}

// DailyStats aggregates one calendar day of sessions.
type DailyStats struct {
	Date            time.Time
	WorkSessions    int
	BreakSessions   int
	WorkMinutes     int
	BreakMinutes    int
	FocusEfficiency int // work / (work + break), percent
	TopTasks        []TaskStat
}

// SessionService records completed timer intervals and computes statistics.
type SessionService struct {
	sessions repo.SessionRepo
	tasks    repo.TaskRepo
	cache    *cache.TaskCache
}

// NewSessionService creates a SessionService. If c is nil, no cache is touched.
func NewSessionService(sessions repo.SessionRepo, tasks repo.TaskRepo, c *cache.TaskCache) *SessionService {
	return &SessionService{sessions: sessions, tasks: tasks, cache: c}
}

// Record inserts an immutable session row for a task owned by userID.
func (s *SessionService) Record(ctx context.Context, userID, taskID int64, sessionType string, duration int) (dom.Session, error) {
	if (sessionType != dom.SessionWork && sessionType != dom.SessionBreak) || duration <= 0 {
		return dom.Session{}, ErrInvalidSession
	}
	if _, err := s.tasks.GetByID(ctx, userID, taskID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Session{}, ErrNotFound
		}
		return dom.Session{}, err
	}
	sess, err := s.sessions.Create(ctx, dom.Session{
		TaskID:   taskID,
		Type:     sessionType,
		Duration: duration,
	})
	if err != nil {
		return dom.Session{}, err
	}
	// Work sessions change the derived sessions_count on the task list.
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, userID)
	}
	return sess, nil
}

// DailyStats scans the sessions completed on the calendar day of `day`
// (server-local time) against tasks owned by userID.
func (s *SessionService) DailyStats(ctx context.Context, userID int64, day time.Time) (DailyStats, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	to := from.AddDate(0, 0, 1)

	list, err := s.sessions.ListForDay(ctx, userID, from, to)
	if err != nil {
		return DailyStats{}, err
	}

	stats := DailyStats{Date: from, TopTasks: []TaskStat{}}
	perTask := map[int64]*TaskStat{}
	for _, sess := range list {
		switch sess.Type {
		case dom.SessionWork:
			stats.WorkSessions++
			stats.WorkMinutes += sess.Duration
			ts, ok := perTask[sess.TaskID]
			if !ok {
				ts = &TaskStat{ID: sess.TaskID, Title: sess.TaskTitle}
				perTask[sess.TaskID] = ts
			}
			ts.Sessions++
		case dom.SessionBreak:
			stats.BreakSessions++
			stats.BreakMinutes += sess.Duration
		}
	}

	if total := stats.WorkSessions + stats.BreakSessions; total > 0 {
		stats.FocusEfficiency = int(math.Round(100 * float64(stats.WorkSessions) / float64(total)))
	}

	for _, ts := range perTask {
		stats.TopTasks = append(stats.TopTasks, *ts)
	}
	// Count descending, ties broken by ascending task id for a stable order.
	sort.Slice(stats.TopTasks, func(i, j int) bool {
		a, b := stats.TopTasks[i], stats.TopTasks[j]
		if a.Sessions != b.Sessions {
			return a.Sessions > b.Sessions
		}
		return a.ID < b.ID
	})
	if len(stats.TopTasks) > topTasksLimit {
		stats.TopTasks = stats.TopTasks[:topTasksLimit]
	}
	return stats, nil
}
