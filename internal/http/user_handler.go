package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"contacts-api/internal/service"
	"contacts-api/internal/storage"
)

const avatarMaxFileSize = 5 * 1024 * 1024

var avatarAllowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// UserHandler mantiene dependencias para endpoints del usuario autenticado.
type UserHandler struct {
	logger   *zap.Logger
	userServ *service.UserService
	avatars  storage.AvatarStore
}

// NewUserHandler crea una instancia de UserHandler con dependencias necesarias.
func NewUserHandler(logger *zap.Logger, userServ *service.UserService, avatars storage.AvatarStore) *UserHandler {
	return &UserHandler{
		logger:   logger,
		userServ: userServ,
		avatars:  avatars,
	}
}

// Me maneja GET /api/v1/me.
func (h *UserHandler) Me(c *gin.Context) {
	user, ok := GetAuthUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// UploadAvatar maneja POST /api/v1/users/avatar. Acepta JPEG o PNG hasta 5MB.
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	user, ok := GetAuthUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !avatarAllowedTypes[contentType] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file type, allowed: image/jpeg, image/png"})
		return
	}
	if fileHeader.Size > avatarMaxFileSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file size exceeds the 5MB limit"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("open avatar upload failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not read file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, avatarMaxFileSize+1))
	if err != nil {
		h.logger.Error("read avatar upload failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not read file"})
		return
	}
	if len(data) > avatarMaxFileSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file size exceeds the 5MB limit"})
		return
	}

	avatarURL, err := h.avatars.UploadAvatar(c.Request.Context(), user.ID, contentType, data)
	if err != nil {
		h.logger.Error("avatar upload failed", zap.Error(err), zap.Int64("user_id", user.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not upload avatar"})
		return
	}

	if _, err := h.userServ.UpdateAvatar(c.Request.Context(), user.ID, avatarURL); err != nil {
		h.logger.Error("avatar update failed", zap.Error(err), zap.Int64("user_id", user.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update avatar"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"avatar_url": avatarURL})
}
