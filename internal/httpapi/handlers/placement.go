package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ragstackgen/studyhub/internal/common"
	"github.com/ragstackgen/studyhub/internal/placement"
	"gorm.io/gorm"
)

func (h *Handler) ListPlacementQuestions(c *gin.Context) {
	uid, okk := userIDFromContext(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	year, _ := strconv.Atoi(c.Query("year"))
	f := placement.Filters{
		Company:    c.Query("company"),
		Year:       year,
		Difficulty: c.Query("difficulty"),
		Topic:      c.Query("topic"),
	}

	rows, err := h.PlacementRepo.List(c.Request.Context(), uid, f)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to list questions")
		return
	}
	common.OK(c, gin.H{"questions": rows})
}

func (h *Handler) BookmarkPlacementQuestion(c *gin.Context) {
	uid, okk := userIDFromContext(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 10006, "invalid question id")
		return
	}

	bookmarked, err := h.PlacementRepo.ToggleBookmark(c.Request.Context(), uid, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			common.Fail(c, http.StatusNotFound, 40405, "question not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to update bookmark")
		return
	}
	common.OK(c, gin.H{"bookmarked": bookmarked})
}
