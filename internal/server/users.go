package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/access"
)

func (s *Server) handleListUsers(c *gin.Context) {
	users, err := s.svc.Users.List(c.Request.Context(), actor(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"count": len(users), "users": users})
}

func (s *Server) handleGetUser(c *gin.Context) {
	user, err := s.svc.Users.Get(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"user": user})
}

func (s *Server) handleUpdateUser(c *gin.Context) {
	var req access.UserPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, err)
		return
	}
	user, err := s.svc.Users.Update(c.Request.Context(), actor(c), c.Param("id"), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"user": user})
}

func (s *Server) handleDeleteUser(c *gin.Context) {
	if err := s.svc.Users.Delete(c.Request.Context(), actor(c), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}
