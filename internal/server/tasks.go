package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taskboard/internal/access"
	"taskboard/internal/models"
)

// optionalDate tracks presence for JSON fields that may be cleared with null.
// Dates are accepted as RFC 3339 timestamps or plain YYYY-MM-DD days.
type optionalDate struct {
	Present bool
	Value   *time.Time
}

func (o *optionalDate) UnmarshalJSON(data []byte) error {
	o.Present = true
	if string(bytes.TrimSpace(data)) == "null" {
		o.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		o.Value = nil
		return nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			o.Value = &t
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", s)
}

type taskRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      models.TaskStatus `json:"status"`
	ProjectID   string            `json:"project_id"`
	AssignedTo  string            `json:"assigned_to"`
	Priority    models.Priority   `json:"priority"`
	DueDate     optionalDate      `json:"due_date"`
}

type taskPatchRequest struct {
	Title       *string            `json:"title"`
	Description *string            `json:"description"`
	Status      *models.TaskStatus `json:"status"`
	AssignedTo  *string            `json:"assigned_to"`
	Priority    *models.Priority   `json:"priority"`
	DueDate     optionalDate       `json:"due_date"`
}

type statusRequest struct {
	Status models.TaskStatus `json:"status"`
}

// handleListTasks lists the tasks visible to the caller, optionally for one project.
func (s *Server) handleListTasks(c *gin.Context) {
	projectID := c.Query("project_id")
	if projectID == "" {
		projectID = c.Query("projectId")
	}

	tasks, err := s.svc.Tasks.List(c.Request.Context(), actor(c), access.TaskFilters{ProjectID: projectID})
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"count": len(tasks), "tasks": tasks})
}

// handleMyTasks lists the tasks assigned to the caller.
func (s *Server) handleMyTasks(c *gin.Context) {
	tasks, err := s.svc.Tasks.MyTasks(c.Request.Context(), actor(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"count": len(tasks), "tasks": tasks})
}

// handleGetTask returns a single task.
func (s *Server) handleGetTask(c *gin.Context) {
	task, err := s.svc.Tasks.Get(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"task": task})
}

// handleCreateTask inserts a new task into a project.
func (s *Server) handleCreateTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, err)
		return
	}

	task, err := s.svc.Tasks.Create(c.Request.Context(), actor(c), access.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		ProjectID:   req.ProjectID,
		AssignedTo:  req.AssignedTo,
		Priority:    req.Priority,
		DueDate:     req.DueDate.Value,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"task": task})
}

// handleUpdateTask updates the task fields the caller is allowed to change.
func (s *Server) handleUpdateTask(c *gin.Context) {
	var req taskPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, err)
		return
	}

	patch := access.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		AssignedTo:  req.AssignedTo,
		Priority:    req.Priority,
	}
	if req.DueDate.Present {
		patch.DueDate = req.DueDate.Value
		patch.ClearDueDate = req.DueDate.Value == nil
	}

	task, err := s.svc.Tasks.Update(c.Request.Context(), actor(c), c.Param("id"), patch)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"task": task})
}

// handleUpdateTaskStatus moves a task to another column.
func (s *Server) handleUpdateTaskStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, err)
		return
	}

	task, err := s.svc.Tasks.UpdateStatus(c.Request.Context(), actor(c), c.Param("id"), req.Status)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"task": task})
}

// handleDeleteTask removes a task completely.
func (s *Server) handleDeleteTask(c *gin.Context) {
	if err := s.svc.Tasks.Delete(c.Request.Context(), actor(c), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}
