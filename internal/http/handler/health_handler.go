package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	statusOK    = "OK"
	statusNotOK = "NOT OK"
)

// HealthHandler reports service and database liveness.
type HealthHandler struct {
	DB *pgxpool.Pool
}

func NewHealthHandler(pool *pgxpool.Pool) *HealthHandler {
	return &HealthHandler{DB: pool}
}

type healthResponse struct {
	AppStatus string `json:"app_status"`
	DBStatus  string `json:"db_status"`
}

// Health always reports the app as up and probes the database with a ping.
func (h *HealthHandler) Health(c *gin.Context) {
	dbStatus := statusNotOK
	if h.DB != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.DB.Ping(ctx); err == nil {
			dbStatus = statusOK
		}
	}

	c.JSON(http.StatusOK, healthResponse{AppStatus: statusOK, DBStatus: dbStatus})
}
