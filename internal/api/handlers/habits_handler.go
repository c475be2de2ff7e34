package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/anirudhprmar/pushup-t3/internal/api/dto"
	"github.com/anirudhprmar/pushup-t3/internal/api/middleware"
	"github.com/anirudhprmar/pushup-t3/internal/domain/events"
	"github.com/anirudhprmar/pushup-t3/internal/domain/habit"
	"github.com/anirudhprmar/pushup-t3/internal/infrastructure/cache"
	"github.com/anirudhprmar/pushup-t3/pkg/logger"
)

type HabitsHandler struct {
	service habit.Service
	cache   *cache.RedisCache
	logger  *logger.Logger
}

func NewHabitsHandler(service habit.Service, redisCache *cache.RedisCache, log *logger.Logger) *HabitsHandler {
	return &HabitsHandler{service: service, cache: redisCache, logger: log}
}

func (h *HabitsHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, habit.ErrHabitNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, habit.ErrInvalidInput), errors.Is(err, habit.ErrFutureDate):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	default:
		h.logger.Error("habits handler error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}
}

func (h *HabitsHandler) publish(c *gin.Context, eventType string, entityID uuid.UUID) {
	if h.cache == nil {
		return
	}
	userID, _ := middleware.UserID(c)
	h.cache.PublishDashboardEvent(c.Request.Context(), events.DashboardEvent{
		Type:     eventType,
		UserID:   userID.String(),
		EntityID: entityID.String(),
	})
}

func (h *HabitsHandler) Create(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var req dto.CreateHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	newHabit := &habit.Habit{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Why:         req.Why,
		Category:    req.Category,
		Color:       req.Color,
		Kind:        habit.Kind(req.Kind),
		TargetValue: req.TargetValue,
		TargetUnit:  req.TargetUnit,
	}
	if req.GoalID != nil {
		goalID, err := uuid.Parse(*req.GoalID)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid goal id"})
			return
		}
		newHabit.GoalID = &goalID
	}
	if err := h.service.CreateHabit(c.Request.Context(), newHabit); err != nil {
		h.respondError(c, err)
		return
	}

	h.publish(c, events.HabitCreated, newHabit.ID)
	c.JSON(http.StatusCreated, newHabit)
}

func (h *HabitsHandler) List(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	habits, err := h.service.ListHabits(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, habits)
}

func (h *HabitsHandler) Get(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	habitID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid habit id"})
		return
	}

	found, err := h.service.GetHabit(c.Request.Context(), userID, habitID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, found)
}

func (h *HabitsHandler) Update(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	habitID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid habit id"})
		return
	}

	var req dto.UpdateHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	updated := &habit.Habit{
		ID:          habitID,
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Why:         req.Why,
		Category:    req.Category,
		Color:       req.Color,
		TargetValue: req.TargetValue,
		TargetUnit:  req.TargetUnit,
	}
	if err := h.service.UpdateHabit(c.Request.Context(), updated); err != nil {
		h.respondError(c, err)
		return
	}

	h.publish(c, events.HabitUpdated, habitID)
	c.JSON(http.StatusOK, updated)
}

func (h *HabitsHandler) Delete(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	habitID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid habit id"})
		return
	}

	if err := h.service.DeleteHabit(c.Request.Context(), userID, habitID); err != nil {
		h.respondError(c, err)
		return
	}

	h.publish(c, events.HabitDeleted, habitID)
	c.Status(http.StatusNoContent)
}

func (h *HabitsHandler) Start(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	habitID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid habit id"})
		return
	}

	log, err := h.service.StartHabit(c.Request.Context(), userID, habitID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.publish(c, events.HabitLogged, habitID)
	c.JSON(http.StatusOK, log)
}

func (h *HabitsHandler) Complete(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	habitID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid habit id"})
		return
	}

	var req dto.CompleteHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	log, err := h.service.CompleteHabit(c.Request.Context(), userID, habitID, req.Value, req.Note)
	if err != nil {
		h.respondError(c, err)
		return
	}

	middleware.CountHabitLog()
	h.publish(c, events.HabitLogged, habitID)
	c.JSON(http.StatusOK, log)
}

func (h *HabitsHandler) CreateLog(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	habitID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid habit id"})
		return
	}

	var req dto.LogHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	log := &habit.Log{
		HabitID:   habitID,
		UserID:    userID,
		Completed: req.Completed,
		Value:     req.Value,
		Note:      req.Note,
	}
	if req.Date != "" {
		d, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid date"})
			return
		}
		log.Date = datatypes.Date(d)
	}

	if err := h.service.LogHabit(c.Request.Context(), log); err != nil {
		h.respondError(c, err)
		return
	}

	middleware.CountHabitLog()
	h.publish(c, events.HabitLogged, habitID)
	c.JSON(http.StatusOK, log)
}

func (h *HabitsHandler) Logs(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	habitID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid habit id"})
		return
	}

	days := 90
	if raw := c.Query("days"); raw != "" {
		days, err = strconv.Atoi(raw)
		if err != nil || days < 0 {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid days"})
			return
		}
	}

	logs, err := h.service.GetLogs(c.Request.Context(), userID, habitID, days)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

func (h *HabitsHandler) Statistics(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	habitID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid habit id"})
		return
	}

	stats, err := h.service.Statistics(c.Request.Context(), userID, habitID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *HabitsHandler) ListWithStats(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	habits, err := h.service.ListWithStats(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, habits)
}

func (h *HabitsHandler) yearParam(c *gin.Context) (int, bool) {
	year := time.Now().Year()
	if raw := c.Query("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 2000 || parsed > 2200 {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid year"})
			return 0, false
		}
		year = parsed
	}
	return year, true
}

func (h *HabitsHandler) CompletionDays(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	year, ok := h.yearParam(c)
	if !ok {
		return
	}

	days, err := h.service.CompletionDays(c.Request.Context(), userID, year)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"year": year, "completed_day_numbers": days})
}

func (h *HabitsHandler) CompletionDaysDetailed(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	year, ok := h.yearParam(c)
	if !ok {
		return
	}

	days, err := h.service.CompletionDaysDetailed(c.Request.Context(), userID, year)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"year": year, "completed_day_numbers_detailed": days})
}

func (h *HabitsHandler) MonthlyAnalysis(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	trend, err := h.service.MonthlyAnalysis(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, trend)
}

func (h *HabitsHandler) RecentNotes(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	limit := 10
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 100 {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid limit"})
			return
		}
		limit = parsed
	}

	notes, err := h.service.RecentNotes(c.Request.Context(), userID, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, notes)
}

func (h *HabitsHandler) NotCompleted(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	habits, err := h.service.NotCompletedToday(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, habits)
}
