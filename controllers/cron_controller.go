package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"gestionempresa/scheduler"
)

var (
	orchestrator *scheduler.Orchestrator
	dispatcher   *scheduler.Dispatcher
)

// InitScheduler hands the running orchestrator and dispatcher to the
// controllers so the admin endpoints can manage them
func InitScheduler(o *scheduler.Orchestrator, d *scheduler.Dispatcher) {
	orchestrator = o
	dispatcher = d
}

// GetCronStatus reports every registered trigger and whether it is running
func GetCronStatus(c *gin.Context) {
	if orchestrator == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "Scheduler not running"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": orchestrator.Status()})
}

// StartCronTrigger resumes a stopped trigger
func StartCronTrigger(c *gin.Context) {
	if orchestrator == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "Scheduler not running"})
		return
	}

	name := c.Param("name")
	if err := orchestrator.Start(name); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Trigger started", "data": gin.H{"name": name}})
}

// StopCronTrigger pauses a trigger without removing it
func StopCronTrigger(c *gin.Context) {
	if orchestrator == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "Scheduler not running"})
		return
	}

	name := c.Param("name")
	if err := orchestrator.Stop(name); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Trigger stopped", "data": gin.H{"name": name}})
}

// RunCronTrigger fires a trigger immediately, synchronously, and reports
// the outcome
func RunCronTrigger(c *gin.Context) {
	if orchestrator == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "Scheduler not running"})
		return
	}

	name := c.Param("name")
	if err := orchestrator.RunNow(name); err != nil {
		if errors.Is(err, scheduler.ErrUnknownTrigger) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": err.Error()})
			return
		}
		log.Printf("Trigger %s manual run failed: %v", name, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Trigger executed", "data": gin.H{"name": name}})
}

// RunChecksNow runs every notification producer plus a dispatch pass and
// returns the per-check counts
func RunChecksNow(c *gin.Context) {
	if dispatcher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "Scheduler not running"})
		return
	}

	results, err := dispatcher.CheckAll()
	if err != nil {
		log.Printf("Manual notification check error: %v", err)
	}
	if results == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Notification checks failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Checks completed", "data": results})
}
