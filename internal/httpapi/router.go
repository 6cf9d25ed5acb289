package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ragstackgen/studyhub/internal/common"
	"github.com/ragstackgen/studyhub/internal/httpapi/handlers"
	"github.com/ragstackgen/studyhub/internal/httpapi/middleware"
)

func NewRouter(h *handlers.Handler) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.GET("/ping", h.Ping)

	api := r.Group("/api")

	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)

	authed := api.Group("/")
	authed.Use(middleware.AuthRequired(h.Cfg.JWTSecret))

	authed.GET("/auth/me", h.Me)

	// chat
	authed.GET("/chat/sessions", h.ListChatSessions)
	authed.POST("/chat/sessions", h.CreateChatSession)
	authed.DELETE("/chat/sessions", h.DeleteAllChatSessions)
	authed.DELETE("/chat/sessions/:session_id", h.DeleteChatSession)
	authed.POST("/chat/:session_id/message", h.SendChatMessage)

	// notes
	authed.GET("/notes", h.ListNotes)
	authed.POST("/notes/upload", h.UploadNote)
	authed.DELETE("/notes/:id", h.DeleteNote)

	// github
	authed.POST("/github/connect", h.ConnectGitHub)
	authed.POST("/github/connect-username", h.ConnectGitHubUsername)
	authed.GET("/github/repos", h.ListGitHubRepos)
	authed.POST("/github/analyze/:repo_id", h.AnalyzeGitHubRepo)
	authed.GET("/github/jobs/:job_id", h.GetGitHubJob)

	// placement
	authed.GET("/placement/questions", h.ListPlacementQuestions)
	authed.POST("/placement/questions/:id/bookmark", h.BookmarkPlacementQuestion)

	return r
}
