package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"monitord/internal/domain"
	"monitord/internal/scheduler"
)

type MonitorController struct {
	sched *scheduler.Scheduler
}

func NewMonitorController(sched *scheduler.Scheduler) *MonitorController {
	return &MonitorController{sched: sched}
}

// Health handler для проверки работоспособности сервиса
func (m *MonitorController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
	})
}

// StatusAll returns the stored state of every monitored service.
func (m *MonitorController) StatusAll(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"services":  m.sched.StatusAll(),
		"timestamp": time.Now(),
	})
}

// StatusOne returns the stored state of a single service.
func (m *MonitorController) StatusOne(c *gin.Context) {
	name := c.Param("service")

	status, err := m.sched.Status(name)
	if err != nil {
		if errors.Is(err, domain.ErrServiceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "service not found", "service": name})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, status)
}

// Trigger runs a single out-of-cycle probe and returns the fresh verdict.
func (m *MonitorController) Trigger(c *gin.Context) {
	name := c.Param("service")

	verdict, err := m.sched.Trigger(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, domain.ErrServiceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "service not found", "service": name})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, verdict)
}
