package service

import (
	"context"
	"sort"
	"time"

	dom "github.com/deepthireddy246/focustrack/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// memStore is an in-memory stand-in for all three repositories, keeping the
// same cross-table semantics as the SQL: derived work-session counts,
// ownership scoping and cascade deletes.
type memStore struct {
	users    []dom.User
	tasks    []dom.Task
	sessions []dom.Session

	nextID int64
	now    time.Time
}

func newMemStore() *memStore {
	return &memStore{now: time.Date(2026, 8, 31, 9, 0, 0, 0, time.Local)}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

// tick makes each created row strictly newer than the previous one.
func (m *memStore) tick() time.Time {
	m.now = m.now.Add(time.Second)
	return m.now
}

// UserRepo

func (m *memStore) GetByUsername(_ context.Context, username string) (dom.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return dom.User{}, pgx.ErrNoRows
}

func (m *memStore) GetByID(_ context.Context, id int64) (dom.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return dom.User{}, pgx.ErrNoRows
}

func (m *memStore) Create(_ context.Context, username, email, passwordHash string) (dom.User, error) {
	for _, u := range m.users {
		if u.Username == username || u.Email == email {
			return dom.User{}, &pgconn.PgError{Code: "23505"}
		}
	}
	u := dom.User{ID: m.id(), Username: username, Email: email, PasswordHash: passwordHash, CreatedAt: m.tick()}
	m.users = append(m.users, u)
	return u, nil
}

// taskRepo adapts memStore to repo.TaskRepo (Create collides with the user
// Create method, so tasks get their own receiver).
type taskRepo struct{ *memStore }

func (m taskRepo) Create(_ context.Context, t dom.Task) (dom.Task, error) {
	t.ID = m.id()
	t.CreatedAt = m.tick()
	m.memStore.tasks = append(m.memStore.tasks, t)
	return t, nil
}

func (m taskRepo) workCount(taskID int64) int64 {
	var n int64
	for _, s := range m.memStore.sessions {
		if s.TaskID == taskID && s.Type == dom.SessionWork {
			n++
		}
	}
	return n
}

func (m taskRepo) GetByID(_ context.Context, userID, id int64) (dom.Task, error) {
	for _, t := range m.memStore.tasks {
		if t.ID == id && t.UserID == userID {
			t.SessionsCount = m.workCount(t.ID)
			return t, nil
		}
	}
	return dom.Task{}, pgx.ErrNoRows
}

func (m taskRepo) List(_ context.Context, userID int64) ([]dom.Task, error) {
	var out []dom.Task
	for _, t := range m.memStore.tasks {
		if t.UserID == userID {
			t.SessionsCount = m.workCount(t.ID)
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m taskRepo) Update(_ context.Context, userID, id int64, patch dom.Task) (dom.Task, error) {
	for i, t := range m.memStore.tasks {
		if t.ID == id && t.UserID == userID {
			t.Title = patch.Title
			t.Description = patch.Description
			t.Completed = patch.Completed
			m.memStore.tasks[i] = t
			return t, nil
		}
	}
	return dom.Task{}, pgx.ErrNoRows
}

func (m taskRepo) Delete(_ context.Context, userID, id int64) error {
	for i, t := range m.memStore.tasks {
		if t.ID == id && t.UserID == userID {
			m.memStore.tasks = append(m.memStore.tasks[:i], m.memStore.tasks[i+1:]...)
			var kept []dom.Session
			for _, s := range m.memStore.sessions {
				if s.TaskID != id {
					kept = append(kept, s)
				}
			}
			m.memStore.sessions = kept
			return nil
		}
	}
	return pgx.ErrNoRows
}

// sessionRepo adapts memStore to repo.SessionRepo.
type sessionRepo struct{ *memStore }

func (m sessionRepo) Create(_ context.Context, s dom.Session) (dom.Session, error) {
	s.ID = m.id()
	s.CompletedAt = m.tick()
	m.memStore.sessions = append(m.memStore.sessions, s)
	return s, nil
}

func (m sessionRepo) ListForDay(_ context.Context, userID int64, from, to time.Time) ([]dom.DaySession, error) {
	titles := map[int64]dom.Task{}
	for _, t := range m.memStore.tasks {
		titles[t.ID] = t
	}
	var out []dom.DaySession
	for _, s := range m.memStore.sessions {
		task, ok := titles[s.TaskID]
		if !ok || task.UserID != userID {
			continue
		}
		if s.CompletedAt.Before(from) || !s.CompletedAt.Before(to) {
			continue
		}
		out = append(out, dom.DaySession{Session: s, TaskTitle: task.Title})
	}
	return out, nil
}
