package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/anirudhprmar/pushup-t3/internal/api/handlers"
)

type TasksRoutes struct {
	handler *handlers.TasksHandler
}

func NewTasksRoutes(handler *handlers.TasksHandler) *TasksRoutes {
	return &TasksRoutes{handler: handler}
}

func (r *TasksRoutes) RegisterRoutes(router *gin.RouterGroup, cached gin.HandlerFunc) {
	tasks := router.Group("/tasks")
	if cached != nil {
		tasks.Use(cached)
	}
	{
		tasks.POST("", r.handler.Create)
		tasks.GET("", r.handler.List)
		tasks.GET("/:id", r.handler.Get)
		tasks.PUT("/:id", r.handler.Update)
		tasks.DELETE("/:id", r.handler.Delete)
		tasks.POST("/:id/start", r.handler.Start)
		tasks.POST("/:id/complete", r.handler.Complete)
	}
}
