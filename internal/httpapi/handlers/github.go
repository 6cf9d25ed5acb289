package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ragstackgen/studyhub/internal/common"
	"github.com/ragstackgen/studyhub/internal/models"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type connectTokenReq struct {
	Token string `json:"token" binding:"required"`
}

// ConnectGitHub imports the token owner's repositories. The token is stored
// for later readme fetches but never echoed back.
func (h *Handler) ConnectGitHub(c *gin.Context) {
	uid, okk := userIDFromContext(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req connectTokenReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "token required")
		return
	}

	count, err := h.GitHubSvc.ImportByToken(c.Request.Context(), uid, req.Token)
	if err != nil {
		common.Fail(c, http.StatusBadGateway, 50201, "failed to list repositories from GitHub")
		return
	}

	if err := h.DB.WithContext(c.Request.Context()).Model(&models.User{}).
		Where("id = ?", uid).
		Update("git_hub_token", req.Token).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to store connection")
		return
	}

	_ = h.Redis.InvalidateRepoList(c.Request.Context(), uid)
	common.OK(c, gin.H{"imported": count})
}

type connectUsernameReq struct {
	Username string `json:"username" binding:"required"`
}

func (h *Handler) ConnectGitHubUsername(c *gin.Context) {
	uid, okk := userIDFromContext(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req connectUsernameReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Username) == "" {
		common.Fail(c, http.StatusBadRequest, 10001, "username required")
		return
	}
	username := strings.TrimSpace(req.Username)

	count, err := h.GitHubSvc.ImportByUsername(c.Request.Context(), uid, username)
	if err != nil {
		common.Fail(c, http.StatusBadGateway, 50201, "failed to list repositories from GitHub")
		return
	}

	if err := h.DB.WithContext(c.Request.Context()).Model(&models.User{}).
		Where("id = ?", uid).
		Update("git_hub_username", username).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to store connection")
		return
	}

	_ = h.Redis.InvalidateRepoList(c.Request.Context(), uid)
	common.OK(c, gin.H{"imported": count})
}

// ListGitHubRepos serves from the Redis cache when warm.
func (h *Handler) ListGitHubRepos(c *gin.Context) {
	uid, okk := userIDFromContext(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	ctx := c.Request.Context()

	if cached, err := h.Redis.GetRepoList(ctx, uid); err == nil {
		var repos json.RawMessage = []byte(cached)
		common.OK(c, gin.H{"repos": repos, "cached": true})
		return
	} else if err != redis.Nil {
		log.Printf("repo cache read failed user=%d err=%v", uid, err)
	}

	rows, err := h.GitHubSvc.ListRepos(ctx, uid)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to list repositories")
		return
	}

	if payload, err := json.Marshal(rows); err == nil {
		ttl := time.Duration(h.Cfg.RepoCacheSeconds) * time.Second
		if err := h.Redis.SetRepoList(ctx, uid, string(payload), ttl); err != nil {
			log.Printf("repo cache write failed user=%d err=%v", uid, err)
		}
	}

	common.OK(c, gin.H{"repos": rows, "cached": false})
}

// AnalyzeGitHubRepo queues an asynchronous summary job.
func (h *Handler) AnalyzeGitHubRepo(c *gin.Context) {
	uid, okk := userIDFromContext(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	repoID, err := strconv.ParseUint(c.Param("repo_id"), 10, 64)
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 10006, "invalid repo id")
		return
	}

	job, err := h.GitHubSvc.QueueAnalysis(c.Request.Context(), uid, repoID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			common.Fail(c, http.StatusNotFound, 40403, "repository not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to queue analysis")
		return
	}

	if err := h.Rabbit.PublishJob(c.Request.Context(), job.ID); err != nil {
		log.Printf("publish analysis job failed user=%d job=%s err=%v", uid, job.ID, err)
		common.Fail(c, http.StatusInternalServerError, 50002, "enqueue failed")
		return
	}

	_ = h.Redis.InvalidateRepoList(c.Request.Context(), uid)
	common.OK(c, gin.H{"job_id": job.ID})
}

func (h *Handler) GetGitHubJob(c *gin.Context) {
	uid, okk := userIDFromContext(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	jobID := c.Param("job_id")
	if jobID == "" {
		common.Fail(c, http.StatusBadRequest, 10002, "job_id required")
		return
	}

	j, err := h.GitHubSvc.GetJob(c.Request.Context(), uid, jobID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			common.Fail(c, http.StatusNotFound, 40404, "job not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}
	common.OK(c, gin.H{"job": j})
}
