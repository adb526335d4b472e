package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/staffdesk/staffdesk/internal/records"
	"github.com/staffdesk/staffdesk/internal/store"
	"github.com/staffdesk/staffdesk/pkg/logger"
)

// RecordsHandler exposes the CRUD surface over the record service.
type RecordsHandler struct {
	svc *records.Service
}

func NewRecordsHandler(svc *records.Service) *RecordsHandler {
	return &RecordsHandler{svc: svc}
}

// Register wires the /api routes. Reads are open; mutating routes go through
// the auth middleware when one is provided (nil when JWT_SECRET is unset,
// e.g. in development).
func (h *RecordsHandler) Register(r *gin.Engine, auth gin.HandlerFunc) {
	api := r.Group("/api")
	api.GET("/employees", h.list(store.ColEmployees))
	api.GET("/attendance", h.list(store.ColAttendance))
	api.GET("/leaves", h.list(store.ColLeaves))
	api.GET("/notifications", h.list(store.ColNotifications))

	mut := api.Group("")
	if auth != nil {
		mut.Use(auth)
	}
	mut.POST("/employees", h.saveEmployee)
	mut.DELETE("/employees/:id", h.deleteEmployee)
	mut.POST("/attendance", h.saveAttendance)
	mut.POST("/leaves", h.saveLeave)
	mut.PUT("/leaves/:id/status", h.updateLeaveStatus)
	mut.POST("/notifications", h.createNotification)
}

func (h *RecordsHandler) list(collection string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, h.svc.List(collection))
	}
}

type saveFunc func(c *gin.Context, rec store.Record) (string, bool, error)

func (h *RecordsHandler) save(c *gin.Context, fn saveFunc) {
	var rec store.Record
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, created, err := fn(c, rec)
	if err != nil {
		writeError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"ok": true, "id": id})
}

func (h *RecordsHandler) saveEmployee(c *gin.Context) {
	h.save(c, func(c *gin.Context, rec store.Record) (string, bool, error) {
		return h.svc.SaveEmployee(c.Request.Context(), rec)
	})
}

func (h *RecordsHandler) deleteEmployee(c *gin.Context) {
	if err := h.svc.DeleteEmployee(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *RecordsHandler) saveAttendance(c *gin.Context) {
	h.save(c, func(c *gin.Context, rec store.Record) (string, bool, error) {
		return h.svc.SaveAttendance(c.Request.Context(), rec)
	})
}

func (h *RecordsHandler) saveLeave(c *gin.Context) {
	h.save(c, func(c *gin.Context, rec store.Record) (string, bool, error) {
		return h.svc.SaveLeave(c.Request.Context(), rec)
	})
}

func (h *RecordsHandler) updateLeaveStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id := c.Param("id")
	if err := h.svc.UpdateLeaveStatus(c.Request.Context(), id, req.Status); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "id": id, "status": req.Status})
}

func (h *RecordsHandler) createNotification(c *gin.Context) {
	h.save(c, func(c *gin.Context, rec store.Record) (string, bool, error) {
		return h.svc.CreateNotification(c.Request.Context(), rec)
	})
}

// writeError maps service errors to HTTP responses. Server-side failures are
// logged with detail but reported generically.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, records.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, records.ErrDuplicateUser):
		c.JSON(http.StatusConflict, gin.H{"error": "user already exists"})
	case errors.Is(err, records.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, records.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		logger.Errorf("request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
