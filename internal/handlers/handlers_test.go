package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/deepthireddy246/focustrack/internal/auth"
	dom "github.com/deepthireddy246/focustrack/internal/domain"
	"github.com/deepthireddy246/focustrack/internal/dto"
	"github.com/deepthireddy246/focustrack/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore backs all three repositories for router-level tests.
type fakeStore struct {
	users    []dom.User
	tasks    []dom.Task
	sessions []dom.Session
	nextID   int64
	now      time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{now: time.Now().Add(-time.Hour)}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) tick() time.Time {
	f.now = f.now.Add(time.Second)
	return f.now
}

func (f *fakeStore) GetByUsername(_ context.Context, username string) (dom.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return dom.User{}, pgx.ErrNoRows
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (dom.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return dom.User{}, pgx.ErrNoRows
}

func (f *fakeStore) Create(_ context.Context, username, email, hash string) (dom.User, error) {
	for _, u := range f.users {
		if u.Username == username || u.Email == email {
			return dom.User{}, &pgconn.PgError{Code: "23505"}
		}
	}
	u := dom.User{ID: f.id(), Username: username, Email: email, PasswordHash: hash, CreatedAt: f.tick()}
	f.users = append(f.users, u)
	return u, nil
}

type fakeTaskRepo struct{ *fakeStore }

func (f fakeTaskRepo) workCount(taskID int64) int64 {
	var n int64
	for _, s := range f.sessions {
		if s.TaskID == taskID && s.Type == dom.SessionWork {
			n++
		}
	}
	return n
}

func (f fakeTaskRepo) Create(_ context.Context, t dom.Task) (dom.Task, error) {
	t.ID = f.id()
	t.CreatedAt = f.tick()
	f.fakeStore.tasks = append(f.fakeStore.tasks, t)
	return t, nil
}

func (f fakeTaskRepo) GetByID(_ context.Context, userID, id int64) (dom.Task, error) {
	for _, t := range f.fakeStore.tasks {
		if t.ID == id && t.UserID == userID {
			t.SessionsCount = f.workCount(t.ID)
			return t, nil
		}
	}
	return dom.Task{}, pgx.ErrNoRows
}

func (f fakeTaskRepo) List(_ context.Context, userID int64) ([]dom.Task, error) {
	var out []dom.Task
	for _, t := range f.fakeStore.tasks {
		if t.UserID == userID {
			t.SessionsCount = f.workCount(t.ID)
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f fakeTaskRepo) Update(_ context.Context, userID, id int64, patch dom.Task) (dom.Task, error) {
	for i, t := range f.fakeStore.tasks {
		if t.ID == id && t.UserID == userID {
			t.Title = patch.Title
			t.Description = patch.Description
			t.Completed = patch.Completed
			f.fakeStore.tasks[i] = t
			return t, nil
		}
	}
	return dom.Task{}, pgx.ErrNoRows
}

func (f fakeTaskRepo) Delete(_ context.Context, userID, id int64) error {
	for i, t := range f.fakeStore.tasks {
		if t.ID == id && t.UserID == userID {
			f.fakeStore.tasks = append(f.fakeStore.tasks[:i], f.fakeStore.tasks[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

type fakeSessionRepo struct{ *fakeStore }

func (f fakeSessionRepo) Create(_ context.Context, s dom.Session) (dom.Session, error) {
	s.ID = f.id()
	s.CompletedAt = f.tick()
	f.fakeStore.sessions = append(f.fakeStore.sessions, s)
	return s, nil
}

func (f fakeSessionRepo) ListForDay(_ context.Context, userID int64, from, to time.Time) ([]dom.DaySession, error) {
	byID := map[int64]dom.Task{}
	for _, t := range f.fakeStore.tasks {
		byID[t.ID] = t
	}
	var out []dom.DaySession
	for _, s := range f.fakeStore.sessions {
		t, ok := byID[s.TaskID]
		if !ok || t.UserID != userID {
			continue
		}
		if s.CompletedAt.Before(from) || !s.CompletedAt.Before(to) {
			continue
		}
		out = append(out, dom.DaySession{Session: s, TaskTitle: t.Title})
	}
	return out, nil
}

// newTestRouter wires the real handlers, services and middleware over fakes,
// mirroring the route table in internal/app.
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newFakeStore()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	userSvc := service.NewUserService(store)
	taskSvc := service.NewTaskService(fakeTaskRepo{store}, nil)
	sessSvc := service.NewSessionService(fakeSessionRepo{store}, fakeTaskRepo{store}, nil)

	authHandler := NewAuthHandler(tokens, userSvc)
	taskHandler := NewTaskHandler(taskSvc)
	sessionHandler := NewSessionHandler(sessSvc)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/auth/profile", auth.RequireAuth(tokens), authHandler.Profile)

	protected := api.Group("", auth.RequireAuth(tokens))
	protected.GET("/tasks", taskHandler.List)
	protected.POST("/tasks", taskHandler.Create)
	protected.PUT("/tasks/:id", taskHandler.Update)
	protected.DELETE("/tasks/:id", taskHandler.Delete)
	protected.POST("/sessions", sessionHandler.Record)
	protected.GET("/sessions/stats", sessionHandler.Stats)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func registerAlice(t *testing.T, r *gin.Engine) dto.AuthResponse {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "alice", "email": "a@x.com", "password": "pw123456",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp
}

func TestRegisterLoginProfileFlow(t *testing.T) {
	r := newTestRouter(t)

	reg := registerAlice(t, r)
	assert.Equal(t, "alice", reg.User.Username)
	assert.Equal(t, "a@x.com", reg.User.Email)

	w := doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "alice", "password": "pw123456",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var login dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	assert.Equal(t, reg.User.ID, login.User.ID)

	w = doJSON(t, r, http.MethodGet, "/api/auth/profile", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"alice"`)
}

func TestRegisterConflict(t *testing.T) {
	r := newTestRouter(t)
	registerAlice(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "alice", "email": "other@x.com", "password": "pw",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterMissingFields(t *testing.T) {
	r := newTestRouter(t)
	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{"username": "alice"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginInvalidCredentials(t *testing.T) {
	r := newTestRouter(t)
	registerAlice(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "alice", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{"username": "alice"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTasksRequireAuth(t *testing.T) {
	r := newTestRouter(t)
	w := doJSON(t, r, http.MethodGet, "/api/tasks", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateTaskMissingTitle(t *testing.T) {
	r := newTestRouter(t)
	token := registerAlice(t, r).Token

	w := doJSON(t, r, http.MethodPost, "/api/tasks", token, gin.H{"description": "no title"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaskCRUDFlow(t *testing.T) {
	r := newTestRouter(t)
	token := registerAlice(t, r).Token

	w := doJSON(t, r, http.MethodPost, "/api/tasks", token, gin.H{"title": "Write report"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created dto.TaskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, int64(0), created.SessionsCount)
	assert.False(t, created.Completed)

	// Partial update: only completed changes.
	w = doJSON(t, r, http.MethodPut, taskPath(created.ID), token, gin.H{"completed": true})
	require.Equal(t, http.StatusOK, w.Code)
	var updated dto.TaskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.True(t, updated.Completed)
	assert.Equal(t, "Write report", updated.Title)

	w = doJSON(t, r, http.MethodDelete, taskPath(created.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "deleted")

	w = doJSON(t, r, http.MethodGet, "/api/tasks", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestUpdateTaskNotFound(t *testing.T) {
	r := newTestRouter(t)
	token := registerAlice(t, r).Token

	w := doJSON(t, r, http.MethodPut, "/api/tasks/999", token, gin.H{"completed": true})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionAndStatsFlow(t *testing.T) {
	r := newTestRouter(t)
	token := registerAlice(t, r).Token

	w := doJSON(t, r, http.MethodPost, "/api/tasks", token, gin.H{"title": "Write report"})
	require.Equal(t, http.StatusCreated, w.Code)
	var task dto.TaskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &task))

	w = doJSON(t, r, http.MethodPost, "/api/sessions", token, gin.H{
		"task_id": task.ID, "session_type": "work", "duration": 25,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var sess dto.SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))
	assert.Equal(t, "work", sess.SessionType)

	w = doJSON(t, r, http.MethodGet, "/api/tasks", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tasks []dto.TaskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, int64(1), tasks[0].SessionsCount)

	w = doJSON(t, r, http.MethodGet, "/api/sessions/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats dto.StatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.TotalWorkSessions)
	assert.Equal(t, 25, stats.TotalWorkTime)
	require.Len(t, stats.TopTasks, 1)
	assert.Equal(t, "Write report", stats.TopTasks[0].Title)
}

func TestRecordSessionValidation(t *testing.T) {
	r := newTestRouter(t)
	token := registerAlice(t, r).Token

	w := doJSON(t, r, http.MethodPost, "/api/sessions", token, gin.H{
		"task_id": 1, "session_type": "nap", "duration": 25,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/sessions", token, gin.H{
		"task_id": 999, "session_type": "work", "duration": 25,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func taskPath(id int64) string {
	return "/api/tasks/" + strconv.FormatInt(id, 10)
}
