package handlers

import (
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ragstackgen/studyhub/internal/common"
	"github.com/ragstackgen/studyhub/internal/notes"
	"gorm.io/gorm"
)

const maxNoteUploadBytes = 5 << 20 // 5 MiB

func (h *Handler) ListNotes(c *gin.Context) {
	uid, okk := userIDFromContext(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	rows, err := h.NotesRepo.List(c.Request.Context(), uid, c.Query("subject"))
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to list notes")
		return
	}
	common.OK(c, gin.H{"notes": rows})
}

// UploadNote accepts a multipart text file plus optional title/subject fields
// and stores the extracted text.
func (h *Handler) UploadNote(c *gin.Context) {
	uid, okk := userIDFromContext(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "file required")
		return
	}
	if fileHeader.Size > maxNoteUploadBytes {
		common.Fail(c, http.StatusBadRequest, 10004, "file too large")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50004, "failed to read upload")
		return
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, maxNoteUploadBytes))
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50004, "failed to read upload")
		return
	}
	content := strings.TrimSpace(string(raw))
	if content == "" {
		common.Fail(c, http.StatusBadRequest, 10005, "file has no extractable text")
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		title = strings.TrimSuffix(fileHeader.Filename, filepath.Ext(fileHeader.Filename))
	}

	note := &notes.Note{
		UserID:   uid,
		Title:    title,
		Subject:  strings.TrimSpace(c.PostForm("subject")),
		FileName: fileHeader.Filename,
		Content:  content,
	}
	if err := h.NotesRepo.Create(c.Request.Context(), note); err != nil {
		common.Fail(c, http.StatusInternalServerError, 50005, "failed to save note")
		return
	}

	common.OK(c, gin.H{"note": note})
}

func (h *Handler) DeleteNote(c *gin.Context) {
	uid, okk := userIDFromContext(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 10006, "invalid note id")
		return
	}

	if err := h.NotesRepo.Delete(c.Request.Context(), uid, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			common.Fail(c, http.StatusNotFound, 40402, "note not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50006, "failed to delete note")
		return
	}
	common.OK(c, gin.H{"deleted": true})
}
