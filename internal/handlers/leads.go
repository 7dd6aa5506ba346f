package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"paylot-backend/internal/database"
	"paylot-backend/internal/models"
	"paylot-backend/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// AlertTimeout bounds delivery of a single new-lead alert.
const AlertTimeout = 15 * time.Second

const storeUnavailable = "database not configured"

// FieldError describes one rejected form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// CreateLead validates and stores a lead form submission
func (h *Handler) CreateLead(c *gin.Context) {
	var input models.LeadInput
	if err := c.ShouldBindJSON(&input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
				"error":  "validation failed",
				"detail": fieldErrors(verrs),
			})
			return
		}
		writeError(c, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if h.store == nil {
		writeError(c, http.StatusServiceUnavailable, storeUnavailable)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	lead := input.ToLead()
	id, err := h.store.InsertLead(ctx, lead)
	if err != nil {
		h.logger.WithError(err).Error("Failed to insert lead")
		writeError(c, http.StatusInternalServerError, "failed to save lead")
		return
	}

	h.logger.WithField("lead_id", id).Info("Lead created")
	go h.alert(lead)

	c.JSON(http.StatusCreated, gin.H{"status": "success", "id": id})
}

// alert notifies about a new lead outside the request lifecycle.
func (h *Handler) alert(lead *models.Lead) {
	ctx, cancel := context.WithTimeout(context.Background(), AlertTimeout)
	defer cancel()

	if err := h.notifier.LeadCreated(ctx, lead); err != nil {
		h.logger.WithError(err).WithField("lead_id", lead.ID.Hex()).Warn("Failed to send lead alert")
	}
}

// ListLeads returns the most recent leads
func (h *Handler) ListLeads(c *gin.Context) {
	limit, err := utils.ParseLimit(c.Query("limit"))
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	if h.store == nil {
		writeError(c, http.StatusServiceUnavailable, storeUnavailable)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	leads, err := h.store.ListLeads(ctx, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list leads")
		writeError(c, http.StatusInternalServerError, "failed to fetch leads")
		return
	}

	c.JSON(http.StatusOK, leads)
}

// GetLead returns a single lead by id
func (h *Handler) GetLead(c *gin.Context) {
	if h.store == nil {
		writeError(c, http.StatusServiceUnavailable, storeUnavailable)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	lead, err := h.store.FindLead(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(c, http.StatusNotFound, "lead not found")
			return
		}
		h.logger.WithError(err).Error("Failed to find lead")
		writeError(c, http.StatusInternalServerError, "failed to fetch lead")
		return
	}

	c.JSON(http.StatusOK, lead)
}

// ExportLeads streams every lead as a CSV attachment
func (h *Handler) ExportLeads(c *gin.Context) {
	if h.store == nil {
		writeError(c, http.StatusServiceUnavailable, storeUnavailable)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	leads, err := h.store.AllLeads(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch leads for export")
		writeError(c, http.StatusInternalServerError, "failed to fetch leads")
		return
	}

	var buffer bytes.Buffer
	if err := utils.GenerateLeadsCSV(leads, &buffer); err != nil {
		h.logger.WithError(err).Error("Failed to generate leads CSV")
		writeError(c, http.StatusInternalServerError, "failed to generate export")
		return
	}

	filename := fmt.Sprintf("leads_%s.csv", h.now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buffer.Bytes())
}

func fieldErrors(verrs validator.ValidationErrors) []FieldError {
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   jsonFieldName(fe.Field()),
			Message: describe(fe),
		})
	}
	return out
}

// jsonFieldName maps a struct field name to its form key.
func jsonFieldName(field string) string {
	switch field {
	case "ExpectedMonthlyVolume":
		return "expected_monthly_volume"
	default:
		return strings.ToLower(field)
	}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
