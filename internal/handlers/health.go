package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// maxListedCollections caps the collections reported by the health check.
const maxListedCollections = 10

// HealthResponse reports backend and database status.
type HealthResponse struct {
	Backend          string   `json:"backend"`
	Database         string   `json:"database"`
	DatabaseURL      string   `json:"database_url"`
	DatabaseName     string   `json:"database_name"`
	ConnectionStatus string   `json:"connection_status"`
	Collections      []string `json:"collections"`
	// DatabaseInstance is the name of the connected database, when there is one.
	DatabaseInstance string `json:"database_instance,omitempty"`
}

// Health checks whether the database is configured and reachable
func (h *Handler) Health(c *gin.Context) {
	resp := HealthResponse{
		Backend:          "✅ Running",
		Database:         "❌ Not Available",
		DatabaseURL:      envStatus(h.config.DatabaseURL),
		DatabaseName:     envStatus(h.config.DatabaseName),
		ConnectionStatus: "Not Connected",
		Collections:      []string{},
	}

	if h.store == nil {
		c.JSON(http.StatusOK, resp)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp.DatabaseInstance = h.store.Name()
	if err := h.store.Ping(ctx); err != nil {
		resp.Database = "❌ Error: " + truncate(err.Error(), 50)
		c.JSON(http.StatusOK, resp)
		return
	}

	resp.Database = "✅ Available"
	resp.ConnectionStatus = "Connected"

	collections, err := h.store.CollectionNames(ctx)
	if err != nil {
		resp.Database = "⚠️  Connected but Error: " + truncate(err.Error(), 50)
		c.JSON(http.StatusOK, resp)
		return
	}

	if len(collections) > maxListedCollections {
		collections = collections[:maxListedCollections]
	}
	resp.Collections = collections
	resp.Database = "✅ Connected & Working"

	c.JSON(http.StatusOK, resp)
}

func envStatus(value string) string {
	if value == "" {
		return "❌ Not Set"
	}
	return "✅ Set"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
