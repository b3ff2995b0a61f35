package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/filmdb/contribution-service/internal/storage"
)

// maxUploadBytes caps photo and poster uploads at 10 MiB.
const maxUploadBytes = 10 << 20

// UploadHandler stores image files and returns the identity that photo and
// poster payloads reference.
type UploadHandler struct {
	Files storage.Provider
}

func NewUploadHandler(p storage.Provider) *UploadHandler {
	if p == nil {
		panic("nil storage provider passed to NewUploadHandler")
	}
	return &UploadHandler{Files: p}
}

var allowedImageExt = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

// Upload handles POST /v1/files with a multipart "file" part.
func (h *UploadHandler) Upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file part required"})
	}
	if fh.Size > maxUploadBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "file too large"})
	}
	ext := strings.ToLower(fh.Filename[strings.LastIndex(fh.Filename, ".")+1:])
	if !allowedImageExt["."+ext] {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unsupported file type"})
	}

	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "open upload failed"})
	}
	defer src.Close()

	stored, err := h.Files.Store(c.Request().Context(), fh.Filename, src)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store upload failed"})
	}
	return c.JSON(http.StatusCreated, stored)
}
