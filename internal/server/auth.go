package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/auth"
)

// handleRegister creates a member account and returns a session.
func (s *Server) handleRegister(c *gin.Context) {
	var req auth.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, err)
		return
	}
	session, err := s.svc.Auth.Register(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, session)
}

// handleLogin exchanges credentials for a session token.
func (s *Server) handleLogin(c *gin.Context) {
	var req auth.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, err)
		return
	}
	session, err := s.svc.Auth.Login(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, session)
}

// handleMe returns the acting user.
func (s *Server) handleMe(c *gin.Context) {
	respondSuccess(c, http.StatusOK, gin.H{"user": actor(c)})
}
