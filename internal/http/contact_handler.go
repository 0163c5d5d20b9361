package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"contacts-api/internal/domain"
	"contacts-api/internal/repository"
	"contacts-api/internal/service"
)

// ContactHandler mantiene dependencias para endpoints de contactos.
type ContactHandler struct {
	logger      *zap.Logger
	contactServ *service.ContactService
}

// NewContactHandler crea una instancia de ContactHandler con dependencias necesarias.
func NewContactHandler(logger *zap.Logger, contactServ *service.ContactService) *ContactHandler {
	return &ContactHandler{
		logger:      logger,
		contactServ: contactServ,
	}
}

type contactCreateRequest struct {
	FirstName      string       `json:"first_name" binding:"required"`
	LastName       string       `json:"last_name" binding:"required"`
	Email          string       `json:"email" binding:"required,email"`
	PhoneNumber    string       `json:"phone_number" binding:"required"`
	Birthday       *domain.Date `json:"birthday"`
	AdditionalData string       `json:"additional_data"`
}

type contactUpdateRequest struct {
	FirstName      *string      `json:"first_name"`
	LastName       *string      `json:"last_name"`
	Email          *string      `json:"email"`
	PhoneNumber    *string      `json:"phone_number"`
	Birthday       *domain.Date `json:"birthday"`
	AdditionalData *string      `json:"additional_data"`
}

// Create maneja POST /api/v1/contacts.
func (h *ContactHandler) Create(c *gin.Context) {
	user, ok := GetAuthUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
		return
	}

	var req contactCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create contact request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	contact, err := h.contactServ.Create(c.Request.Context(), user.ID, service.ContactInput{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		PhoneNumber:    req.PhoneNumber,
		Birthday:       req.Birthday,
		AdditionalData: req.AdditionalData,
	})
	if err != nil {
		h.writeContactError(c, err, "create contact failed")
		return
	}

	c.JSON(http.StatusCreated, contact)
}

// List maneja GET /api/v1/contacts. Los query params permiten filtrar por
// first_name, last_name o email (parcial, case-insensitive) y upcoming=true
// devuelve los contactos con cumpleaños en los próximos días.
func (h *ContactHandler) List(c *gin.Context) {
	user, ok := GetAuthUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
		return
	}

	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))
	upcoming := c.Query("upcoming") == "true"

	contacts, err := h.contactServ.List(c.Request.Context(), user.ID, service.ListOptions{
		Skip:  skip,
		Limit: limit,
		Filter: repository.ContactFilter{
			FirstName: c.Query("first_name"),
			LastName:  c.Query("last_name"),
			Email:     c.Query("email"),
		},
		Upcoming: upcoming,
		Days:     days,
	})
	if err != nil {
		h.logger.Error("list contacts failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list contacts"})
		return
	}

	if contacts == nil {
		contacts = []domain.Contact{}
	}
	c.JSON(http.StatusOK, contacts)
}

// Get maneja GET /api/v1/contacts/:id.
func (h *ContactHandler) Get(c *gin.Context) {
	user, ok := GetAuthUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
		return
	}
	contactID, err := parseContactID(c)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "contact not found"})
		return
	}

	contact, err := h.contactServ.Get(c.Request.Context(), contactID, user.ID)
	if err != nil {
		h.writeContactError(c, err, "get contact failed")
		return
	}
	c.JSON(http.StatusOK, contact)
}

// Update maneja PUT /api/v1/contacts/:id.
func (h *ContactHandler) Update(c *gin.Context) {
	user, ok := GetAuthUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
		return
	}
	contactID, err := parseContactID(c)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "contact not found"})
		return
	}

	var req contactUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update contact request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	contact, err := h.contactServ.Update(c.Request.Context(), contactID, user.ID, service.ContactPatch{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		PhoneNumber:    req.PhoneNumber,
		Birthday:       req.Birthday,
		AdditionalData: req.AdditionalData,
	})
	if err != nil {
		h.writeContactError(c, err, "update contact failed")
		return
	}
	c.JSON(http.StatusOK, contact)
}

// Delete maneja DELETE /api/v1/contacts/:id.
func (h *ContactHandler) Delete(c *gin.Context) {
	user, ok := GetAuthUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
		return
	}
	contactID, err := parseContactID(c)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "contact not found"})
		return
	}

	if err := h.contactServ.Delete(c.Request.Context(), contactID, user.ID); err != nil {
		h.writeContactError(c, err, "delete contact failed")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ContactHandler) writeContactError(c *gin.Context, err error, logMsg string) {
	switch {
	case errors.Is(err, service.ErrContactNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "contact not found"})
	case errors.Is(err, service.ErrContactExists):
		c.JSON(http.StatusConflict, gin.H{"error": "contact with this email already exists"})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error(logMsg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected error"})
	}
}

func parseContactID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
