package handlers

import (
	"context"
	"net/http"
	"time"

	"paylot-backend/internal/config"
	"paylot-backend/internal/dashboard"
	"paylot-backend/internal/models"
	"paylot-backend/internal/notify"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RequestTimeout bounds the store work of one request.
const RequestTimeout = 10 * time.Second

// Store is everything the HTTP layer needs from the lead database.
type Store interface {
	dashboard.Querier

	InsertLead(ctx context.Context, lead *models.Lead) (string, error)
	FindLead(ctx context.Context, id string) (*models.Lead, error)
	ListLeads(ctx context.Context, limit int) ([]models.Lead, error)
	AllLeads(ctx context.Context) ([]models.Lead, error)

	Name() string
	Ping(ctx context.Context) error
	CollectionNames(ctx context.Context) ([]string, error)
}

// Handler serves the lead API. store is nil when no database is configured.
type Handler struct {
	store    Store
	notifier notify.Notifier
	config   *config.Config
	logger   *logrus.Logger
	now      func() time.Time
}

// New creates a new handler. Pass a nil store to run without a database.
func New(store Store, notifier notify.Notifier, cfg *config.Config, logger *logrus.Logger) *Handler {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Handler{
		store:    store,
		notifier: notifier,
		config:   cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// querier returns the store as a dashboard querier, or a nil interface when absent.
func (h *Handler) querier() dashboard.Querier {
	if h.store == nil {
		return nil
	}
	return h.store
}

// Root reports the service is running.
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"name": "PAYLOT", "message": "Forex rebate platform backend is running"})
}

// Hello is a trivial API probe.
func (h *Handler) Hello(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Hello from PAYLOT backend API"})
}

func writeError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), RequestTimeout)
}
