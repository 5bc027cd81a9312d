package repo

import (
	"context"

	dom "github.com/deepthireddy246/focustrack/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TaskRepo interface {
	Create(ctx context.Context, t dom.Task) (dom.Task, error)
	GetByID(ctx context.Context, userID, id int64) (dom.Task, error)
	List(ctx context.Context, userID int64) ([]dom.Task, error)
	Update(ctx context.Context, userID, id int64, patch dom.Task) (dom.Task, error)
	Delete(ctx context.Context, userID, id int64) error
}

type PGTaskRepo struct {
	db *pgxpool.Pool
}

func NewPGTaskRepo(db *pgxpool.Pool) *PGTaskRepo {
	return &PGTaskRepo{db: db}
}

func (r *PGTaskRepo) Create(ctx context.Context, t dom.Task) (dom.Task, error) {
	query := `
		INSERT INTO tasks (user_id, title, description)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, title, description, completed, created_at`
	var out dom.Task
	err := r.db.QueryRow(ctx, query, t.UserID, t.Title, t.Description).Scan(
		&out.ID, &out.UserID, &out.Title, &out.Description, &out.Completed, &out.CreatedAt,
	)
	return out, err
}

// GetByID returns the task with its work-session count, scoped to the owner.
func (r *PGTaskRepo) GetByID(ctx context.Context, userID, id int64) (dom.Task, error) {
	query := `
		SELECT t.id, t.user_id, t.title, t.description, t.completed, t.created_at,
		       COUNT(s.id) FILTER (WHERE s.session_type = 'work') AS sessions_count
		FROM tasks t
		LEFT JOIN sessions s ON s.task_id = t.id
		WHERE t.user_id = $1 AND t.id = $2
		GROUP BY t.id`
	var t dom.Task
	err := r.db.QueryRow(ctx, query, userID, id).Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt,
		&t.SessionsCount,
	)
	return t, err
}

// List returns all tasks owned by userID, newest first, each with its
// work-session count.
func (r *PGTaskRepo) List(ctx context.Context, userID int64) ([]dom.Task, error) {
	query := `
		SELECT t.id, t.user_id, t.title, t.description, t.completed, t.created_at,
		       COUNT(s.id) FILTER (WHERE s.session_type = 'work') AS sessions_count
		FROM tasks t
		LEFT JOIN sessions s ON s.task_id = t.id
		WHERE t.user_id = $1
		GROUP BY t.id
		ORDER BY t.created_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.Task
	for rows.Next() {
		var t dom.Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed,
			&t.CreatedAt, &t.SessionsCount); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *PGTaskRepo) Update(ctx context.Context, userID, id int64, patch dom.Task) (dom.Task, error) {
	query := `
		UPDATE tasks SET title = $3, description = $4, completed = $5
		WHERE user_id = $1 AND id = $2
		RETURNING id, user_id, title, description, completed, created_at`
	var t dom.Task
	err := r.db.QueryRow(ctx, query, userID, id, patch.Title, patch.Description, patch.Completed).Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt,
	)
	return t, err
}

// Delete removes the task; its sessions go with it via the FK cascade.
// Returns pgx.ErrNoRows when the task is not owned by userID.
func (r *PGTaskRepo) Delete(ctx context.Context, userID, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
