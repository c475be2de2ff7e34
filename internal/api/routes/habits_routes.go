package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/anirudhprmar/pushup-t3/internal/api/handlers"
)

type HabitsRoutes struct {
	handler *handlers.HabitsHandler
}

func NewHabitsRoutes(handler *handlers.HabitsHandler) *HabitsRoutes {
	return &HabitsRoutes{handler: handler}
}

func (r *HabitsRoutes) RegisterRoutes(router *gin.RouterGroup, cached gin.HandlerFunc) {
	habits := router.Group("/habits")
	if cached != nil {
		habits.Use(cached)
	}
	{
		habits.POST("", r.handler.Create)
		habits.GET("", r.handler.List)
		habits.GET("/with-stats", r.handler.ListWithStats)
		habits.GET("/completion-days", r.handler.CompletionDays)
		habits.GET("/completion-days/detailed", r.handler.CompletionDaysDetailed)
		habits.GET("/monthly-analysis", r.handler.MonthlyAnalysis)
		habits.GET("/notes/recent", r.handler.RecentNotes)
		habits.GET("/not-completed", r.handler.NotCompleted)

		habits.GET("/:id", r.handler.Get)
		habits.PUT("/:id", r.handler.Update)
		habits.DELETE("/:id", r.handler.Delete)
		habits.POST("/:id/start", r.handler.Start)
		habits.POST("/:id/complete", r.handler.Complete)
		habits.POST("/:id/logs", r.handler.CreateLog)
		habits.GET("/:id/logs", r.handler.Logs)
		habits.GET("/:id/statistics", r.handler.Statistics)
	}
}
