package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/miaobau/promo-api/utils"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// StatusHandlerInterface defines the contract for service status handlers
type StatusHandlerInterface interface {
	Root(c fiber.Ctx) error
	Hello(c fiber.Ctx) error
	TestStore(c fiber.Ctx) error
}

// StatusHandler answers the static status endpoints and the store
// reachability diagnostics.
type StatusHandler struct {
	db *gorm.DB
	rc *redis.Client
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(db *gorm.DB, rc *redis.Client) StatusHandlerInterface {
	return &StatusHandler{db: db, rc: rc}
}

// Root returns the service banner
// @Summary Service Banner
// @Tags Status
// @Produce json
// @Success 200 {object} map[string]string
// @Router / [get]
func (h *StatusHandler) Root(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Hello from the MiaoBau coupon backend!"})
}

// Hello returns the API greeting
// @Summary API Greeting
// @Tags Status
// @Produce json
// @Success 200 {object} map[string]string
// @Router /api/hello [get]
func (h *StatusHandler) Hello(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Hello from the backend API!"})
}

// TestStore reports whether the document store and cache are reachable.
// Always returns 200; reachability problems show up in the payload, not in
// the status code.
// @Summary Store Diagnostics
// @Tags Status
// @Produce json
// @Success 200 {object} map[string]any
// @Router /test [get]
func (h *StatusHandler) TestStore(c fiber.Ctx) error {
	response := fiber.Map{
		"backend":           "running",
		"database":          "not_available",
		"connection_status": "not_connected",
		"tables":            []string{},
		"cache":             "disabled",
		"timestamp":         utils.UTCNowRFC3339(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if h.db != nil {
		response["database"] = "configured"
		sqlDB, err := h.db.DB()
		if err == nil {
			if err := sqlDB.PingContext(ctx); err != nil {
				response["database"] = "error: " + err.Error()
			} else {
				response["database"] = "connected"
				response["connection_status"] = "connected"
				if tables, err := h.db.Migrator().GetTables(); err == nil {
					if len(tables) > 10 {
						tables = tables[:10]
					}
					response["tables"] = tables
				} else {
					response["database"] = "connected_with_errors: " + err.Error()
				}
			}
		} else {
			response["database"] = "error: " + err.Error()
		}
	}

	if h.rc != nil {
		if err := h.rc.Ping(ctx).Err(); err != nil {
			response["cache"] = "error: " + err.Error()
		} else {
			response["cache"] = "connected"
		}
	}

	return c.JSON(response)
}
