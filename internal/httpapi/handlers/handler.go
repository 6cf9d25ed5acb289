package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ragstackgen/studyhub/internal/chat"
	"github.com/ragstackgen/studyhub/internal/config"
	"github.com/ragstackgen/studyhub/internal/github"
	"github.com/ragstackgen/studyhub/internal/httpapi/middleware"
	"github.com/ragstackgen/studyhub/internal/notes"
	"github.com/ragstackgen/studyhub/internal/placement"
	"github.com/ragstackgen/studyhub/internal/store/rabbitmq"
	"github.com/ragstackgen/studyhub/internal/store/redisstore"
	"gorm.io/gorm"
)

type Handler struct {
	DB            *gorm.DB
	Cfg           config.Config
	Redis         *redisstore.Store
	Rabbit        *rabbitmq.Publisher
	ChatSvc       *chat.Service
	NotesRepo     *notes.Repo
	GitHubSvc     *github.Service
	PlacementRepo *placement.Repo
}

func (h *Handler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

func userIDFromContext(c *gin.Context) (uint64, bool) {
	v, ok := c.Get(middleware.UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}
