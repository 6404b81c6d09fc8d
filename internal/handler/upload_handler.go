package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/dropss/internal/service"
	"github.com/gin-gonic/gin"
)

// uploadBodySlack covers multipart boundaries and form fields on top of the
// file size limit.
const uploadBodySlack = 1 << 20

type deleteUploadRequest struct {
	URL string `json:"url"`
}

// UploadMedia 处理背景图与背景音乐上传
func (a *API) UploadMedia(c *gin.Context) {
	if limit := a.media.MaxBytes(); limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+uploadBodySlack)
	}

	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, http.StatusBadRequest, "File too large")
			return
		}
		respondError(c, http.StatusBadRequest, "No file provided")
		return
	}

	kind := strings.TrimSpace(c.PostForm("type"))
	if !service.IsMediaKind(kind) {
		respondError(c, http.StatusBadRequest, "Invalid type. Must be music or background")
		return
	}

	src, err := file.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "Could not read uploaded file")
		return
	}
	defer src.Close()

	result, err := a.media.Upload(c.Request.Context(), service.UploadInput{
		OwnerID:     mustUserID(c),
		Kind:        kind,
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Size:        file.Size,
		Content:     src,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMediaInvalidKind):
			respondError(c, http.StatusBadRequest, "Invalid type. Must be music or background")
		case errors.Is(err, service.ErrMediaUnsupportedType):
			respondError(c, http.StatusBadRequest, "Invalid file type for "+kind)
		case errors.Is(err, service.ErrMediaTooLarge):
			respondError(c, http.StatusBadRequest, "File too large")
		case errors.Is(err, service.ErrMediaInvalidImage):
			respondError(c, http.StatusBadRequest, "File is not a valid image")
		default:
			log.Printf("[upload] store failed: %v", err)
			respondError(c, http.StatusInternalServerError, "Upload failed")
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// DeleteMedia 删除调用者上传过的对象
func (a *API) DeleteMedia(c *gin.Context) {
	var payload deleteUploadRequest
	if !bindJSON(c, &payload, "URL is required") {
		return
	}
	if strings.TrimSpace(payload.URL) == "" {
		respondError(c, http.StatusBadRequest, "URL is required")
		return
	}

	err := a.media.Delete(c.Request.Context(), mustUserID(c), payload.URL)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"success": true})
	case errors.Is(err, service.ErrMediaForeignURL):
		respondError(c, http.StatusBadRequest, "Invalid URL")
	case errors.Is(err, service.ErrMediaForbidden):
		respondError(c, http.StatusForbidden, "Forbidden")
	default:
		log.Printf("[upload] delete failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Delete failed",
			"details": err.Error(),
		})
	}
}
