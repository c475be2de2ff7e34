package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/anirudhprmar/pushup-t3/internal/api/dto"
	"github.com/anirudhprmar/pushup-t3/internal/api/middleware"
	"github.com/anirudhprmar/pushup-t3/internal/domain/events"
	"github.com/anirudhprmar/pushup-t3/internal/domain/task"
	"github.com/anirudhprmar/pushup-t3/internal/infrastructure/cache"
	"github.com/anirudhprmar/pushup-t3/pkg/logger"
)

type TasksHandler struct {
	service task.Service
	cache   *cache.RedisCache
	logger  *logger.Logger
}

func NewTasksHandler(service task.Service, redisCache *cache.RedisCache, log *logger.Logger) *TasksHandler {
	return &TasksHandler{service: service, cache: redisCache, logger: log}
}

func (h *TasksHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, task.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, task.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	default:
		h.logger.Error("tasks handler error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}
}

func (h *TasksHandler) publish(c *gin.Context, eventType string, entityID uuid.UUID) {
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

func (h *TasksHandler) Create(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	newTask := &task.Task{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		TargetValue: req.TargetValue,
		TargetUnit:  req.TargetUnit,
		Note:        req.Note,
	}
	if req.GoalID != nil {
		goalID, err := uuid.Parse(*req.GoalID)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid goal id"})
			return
		}
		newTask.GoalID = &goalID
	}
	if req.HabitID != nil {
		habitID, err := uuid.Parse(*req.HabitID)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid habit id"})
			return
		}
		newTask.HabitID = &habitID
	}
	if req.DueDate != nil {
		due, err := time.Parse("2006-01-02", *req.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid due date"})
			return
		}
		d := datatypes.Date(due)
		newTask.DueDate = &d
	}

	if err := h.service.CreateTask(c.Request.Context(), newTask); err != nil {
		h.respondError(c, err)
		return
	}

	h.publish(c, events.TaskCreated, newTask.ID)
	c.JSON(http.StatusCreated, newTask)
}

func (h *TasksHandler) List(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	tasks, err := h.service.ListTasks(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *TasksHandler) Get(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid task id"})
		return
	}

	found, err := h.service.GetTask(c.Request.Context(), userID, taskID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, found)
}

func (h *TasksHandler) Update(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid task id"})
		return
	}

	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	updated := &task.Task{
		ID:          taskID,
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
	}
	if req.DueDate != nil {
		due, err := time.Parse("2006-01-02", *req.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid due date"})
			return
		}
		d := datatypes.Date(due)
		updated.DueDate = &d
	}

	if err := h.service.UpdateTask(c.Request.Context(), updated); err != nil {
		h.respondError(c, err)
		return
	}

	h.publish(c, events.TaskUpdated, taskID)
	c.JSON(http.StatusOK, updated)
}

func (h *TasksHandler) Delete(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid task id"})
		return
	}

	if err := h.service.DeleteTask(c.Request.Context(), userID, taskID); err != nil {
		h.respondError(c, err)
		return
	}

	h.publish(c, events.TaskDeleted, taskID)
	c.Status(http.StatusNoContent)
}

func (h *TasksHandler) Start(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid task id"})
		return
	}

	started, err := h.service.StartTask(c.Request.Context(), userID, taskID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.publish(c, events.TaskUpdated, taskID)
	c.JSON(http.StatusOK, started)
}

func (h *TasksHandler) Complete(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid task id"})
		return
	}

	completed, err := h.service.CompleteTask(c.Request.Context(), userID, taskID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.publish(c, events.TaskCompleted, taskID)
	c.JSON(http.StatusOK, completed)
}
