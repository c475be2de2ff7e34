package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/anirudhprmar/pushup-t3/internal/api/handlers"
)

type UsersRoutes struct {
	handler *handlers.UsersHandler
}

func NewUsersRoutes(handler *handlers.UsersHandler) *UsersRoutes {
	return &UsersRoutes{handler: handler}
}

// RegisterPublic mounts the unauthenticated endpoints. The leaderboard
// is public; the user service keeps its own redis cache for it.
func (r *UsersRoutes) RegisterPublic(router *gin.RouterGroup) {
	router.POST("/users/register", r.handler.Register)
	router.GET("/leaderboard", r.handler.Leaderboard)
}

func (r *UsersRoutes) RegisterRoutes(router *gin.RouterGroup, _ gin.HandlerFunc) {
	users := router.Group("/users")
	{
		users.GET("/me", r.handler.Me)
		users.PUT("/me", r.handler.UpdateMe)
	}
}
