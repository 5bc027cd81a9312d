package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/deepthireddy246/focustrack/internal/auth"
	"github.com/deepthireddy246/focustrack/internal/dto"
	"github.com/deepthireddy246/focustrack/internal/service"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	svc *service.SessionService
}

func NewSessionHandler(svc *service.SessionService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

// Record godoc
// @Summary      Record a completed timer interval
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      dto.CreateSessionRequest  true  "Session body"
// @Success      201   {object}  dto.SessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /sessions [post]
func (h *SessionHandler) Record(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}
	sess, err := h.svc.Record(c.Request.Context(), userID, req.TaskID, req.SessionType, req.Duration)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSession):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		default:
			log.Printf("record session: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}
	c.JSON(http.StatusCreated, dto.SessionResponse{
		ID:          sess.ID,
		TaskID:      sess.TaskID,
		SessionType: sess.Type,
		Duration:    sess.Duration,
		CompletedAt: sess.CompletedAt,
	})
}

// Stats godoc
// @Summary      Daily session statistics
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.StatsResponse
// @Router       /sessions/stats [get]
func (h *SessionHandler) Stats(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	stats, err := h.svc.DailyStats(c.Request.Context(), userID, time.Now())
	if err != nil {
		log.Printf("daily stats: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	top := make([]dto.TopTask, len(stats.TopTasks))
	for i, ts := range stats.TopTasks {
		top[i] = dto.TopTask{ID: ts.ID, Title: ts.Title, Sessions: ts.Sessions}
	}
	c.JSON(http.StatusOK, dto.StatsResponse{
		Date:               stats.Date.Format("2006-01-02"),
		TotalWorkSessions:  stats.WorkSessions,
		TotalBreakSessions: stats.BreakSessions,
		TotalWorkTime:      stats.WorkMinutes,
		TotalBreakTime:     stats.BreakMinutes,
		FocusEfficiency:    stats.FocusEfficiency,
		TopTasks:           top,
	})
}
