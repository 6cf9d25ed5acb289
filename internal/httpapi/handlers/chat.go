package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ragstackgen/studyhub/internal/common"
	"gorm.io/gorm"
)

func (h *Handler) ListChatSessions(c *gin.Context) {
	uid, okk := userIDFromContext(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	sessions, err := h.ChatSvc.ListSessions(c.Request.Context(), uid)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to list sessions")
		return
	}
	common.OK(c, gin.H{"sessions": sessions})
}

func (h *Handler) CreateChatSession(c *gin.Context) {
	uid, okk := userIDFromContext(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	sess, err := h.ChatSvc.CreateSession(c.Request.Context(), uid)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to create session")
		return
	}
	common.OK(c, gin.H{"session_id": sess.SessionID})
}

func (h *Handler) DeleteAllChatSessions(c *gin.Context) {
	uid, okk := userIDFromContext(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	if err := h.ChatSvc.DeleteAllSessions(c.Request.Context(), uid); err != nil {
		common.Fail(c, http.StatusInternalServerError, 50003, "failed to delete sessions")
		return
	}
	common.OK(c, gin.H{"deleted": true})
}

func (h *Handler) DeleteChatSession(c *gin.Context) {
	uid, okk := userIDFromContext(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	sessionID := c.Param("session_id")
	if sessionID == "" {
		common.Fail(c, http.StatusBadRequest, 10002, "session_id required")
		return
	}

	if err := h.ChatSvc.DeleteSession(c.Request.Context(), uid, sessionID); err != nil {
		if err == gorm.ErrRecordNotFound {
			common.Fail(c, http.StatusNotFound, 40402, "session not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50003, "failed to delete session")
		return
	}
	common.OK(c, gin.H{"deleted": true})
}

type sendMessageReq struct {
	Message string `json:"message" binding:"required"`
}

func (h *Handler) SendChatMessage(c *gin.Context) {
	uid, okk := userIDFromContext(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	sessionID := c.Param("session_id")
	if sessionID == "" {
		common.Fail(c, http.StatusBadRequest, 10002, "session_id required")
		return
	}

	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		common.Fail(c, http.StatusBadRequest, 10001, "message required")
		return
	}

	msg, err := h.ChatSvc.SendMessage(c.Request.Context(), uid, sessionID, strings.TrimSpace(req.Message))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			common.Fail(c, http.StatusNotFound, 40402, "session not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50002, "failed to send message")
		return
	}

	common.OK(c, gin.H{"message": msg})
}
