package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"pigeon/internal/api/response"
	"pigeon/internal/apperr"
	filesvc "pigeon/internal/service/file"
)

type MediaHandler struct {
	media *filesvc.Service
}

func NewMediaHandler(media *filesvc.Service) *MediaHandler {
	return &MediaHandler{media: media}
}

// Upload multipart 字段名为 file
func (h *MediaHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, apperr.InvalidArg("file is required"))
		return
	}
	src, err := file.Open()
	if err != nil {
		response.Fail(c, apperr.Wrap(apperr.CodeInvalidArgument, "could not read upload", fmt.Errorf("open upload: %w", err)))
		return
	}
	defer src.Close()

	a, err := h.media.Upload(c.Request.Context(), callerID(c), filesvc.Upload{
		FileName:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Size:        file.Size,
		Body:        src,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "file uploaded", a)
}

func (h *MediaHandler) URL(c *gin.Context) {
	u, err := h.media.PresignedURL(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "url generated", u)
}
