package repo

import (
	"context"
	"time"

	dom "github.com/deepthireddy246/focustrack/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type SessionRepo interface {
	Create(ctx context.Context, s dom.Session) (dom.Session, error)
	// ListForDay returns all sessions completed in [from, to) whose parent
	// task is owned by userID, joined with the task title.
	ListForDay(ctx context.Context, userID int64, from, to time.Time) ([]dom.DaySession, error)
}

type PGSessionRepo struct {
	db *pgxpool.Pool
}

func NewPGSessionRepo(db *pgxpool.Pool) *PGSessionRepo {
	return &PGSessionRepo{db: db}
}

func (r *PGSessionRepo) Create(ctx context.Context, s dom.Session) (dom.Session, error) {
	query := `
		INSERT INTO sessions (task_id, session_type, duration)
		VALUES ($1, $2, $3)
		RETURNING id, task_id, session_type, duration, completed_at`
	var out dom.Session
	err := r.db.QueryRow(ctx, query, s.TaskID, s.Type, s.Duration).Scan(
		&out.ID, &out.TaskID, &out.Type, &out.Duration, &out.CompletedAt,
	)
	return out, err
}

func (r *PGSessionRepo) ListForDay(ctx context.Context, userID int64, from, to time.Time) ([]dom.DaySession, error) {
	query := `
		SELECT s.id, s.task_id, t.title, s.session_type, s.duration, s.completed_at
		FROM sessions s
		JOIN tasks t ON t.id = s.task_id
		WHERE t.user_id = $1 AND s.completed_at >= $2 AND s.completed_at < $3`
	rows, err := r.db.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.DaySession
	for rows.Next() {
		var s dom.DaySession
		if err := rows.Scan(&s.ID, &s.TaskID, &s.TaskTitle, &s.Type, &s.Duration, &s.CompletedAt); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
