package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/recetario/backend/internal/middleware"
	"github.com/recetario/backend/internal/service"
)

const maxImageSize = 10 << 20 // 10 MiB

// ImageHandler uploads recipe images and returns their URL for use as the
// recipe's imageUrl field.
type ImageHandler struct {
	storage   service.ImageStorage
	validator middleware.TokenValidator
}

// NewImageHandler creates a new ImageHandler. Storage may be nil when image
// uploads are not configured.
func NewImageHandler(storage service.ImageStorage, validator middleware.TokenValidator) *ImageHandler {
	return &ImageHandler{storage: storage, validator: validator}
}

// RegisterRoutes mounts the image routes.
func (h *ImageHandler) RegisterRoutes(router *gin.RouterGroup) {
	images := router.Group("/images")
	images.Use(middleware.AuthMiddleware(h.validator))
	images.POST("", h.UploadImage)
}

// UploadImage stores a multipart image and returns its public URL.
func (h *ImageHandler) UploadImage(c *gin.Context) {
	if h.storage == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image uploads are not configured"})
		return
	}

	header, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	if header.Size > maxImageSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image too large"})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image"})
		return
	}
	defer file.Close()

	url, err := h.storage.Upload(c.Request.Context(), header.Filename, file, header.Header.Get("Content-Type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store image"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url})
}
