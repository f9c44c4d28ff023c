package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/access"
)

// handleListProjects returns the projects visible to the caller.
func (s *Server) handleListProjects(c *gin.Context) {
	projects, err := s.svc.Projects.List(c.Request.Context(), actor(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"count": len(projects), "projects": projects})
}

// handleGetProject returns a project together with its tasks.
func (s *Server) handleGetProject(c *gin.Context) {
	details, err := s.svc.Projects.Get(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, details)
}

// handleBoard returns the project tasks grouped by kanban column.
func (s *Server) handleBoard(c *gin.Context) {
	board, err := s.svc.Tasks.Board(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, board)
}

// handleCreateProject creates a new project owned by the caller.
func (s *Server) handleCreateProject(c *gin.Context) {
	var req access.ProjectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, err)
		return
	}

	project, err := s.svc.Projects.Create(c.Request.Context(), actor(c), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"project": project})
}

// handleUpdateProject overwrites the supplied project fields.
func (s *Server) handleUpdateProject(c *gin.Context) {
	var req access.ProjectPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, err)
		return
	}

	project, err := s.svc.Projects.Update(c.Request.Context(), actor(c), c.Param("id"), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"project": project})
}

// handleDeleteProject removes a project and all related tasks.
func (s *Server) handleDeleteProject(c *gin.Context) {
	if err := s.svc.Projects.Delete(c.Request.Context(), actor(c), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}
