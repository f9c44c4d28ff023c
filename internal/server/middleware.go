package server

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"taskboard/internal/domain"
	"taskboard/internal/models"
)

const userKey = "taskboard.user"

// requireAuth resolves the bearer token into the acting user before the handler runs.
func (s *Server) requireAuth(c *gin.Context) {
	token, err := bearerToken(c.GetHeader("Authorization"))
	if err != nil {
		s.respondError(c, domain.Unauthorized(err.Error()))
		return
	}
	u, err := s.svc.Auth.ResolveUser(c.Request.Context(), token)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.Set(userKey, u)
	c.Next()
}

// userFrom returns the user stored by requireAuth.
func userFrom(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return models.User{}, false
	}
	u, ok := v.(models.User)
	return u, ok
}

// actor returns the acting user. Only valid behind requireAuth.
func actor(c *gin.Context) models.User {
	u, _ := userFrom(c)
	return u
}

func bearerToken(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", errors.New("missing authorization header")
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header format")
	}
	return parts[1], nil
}
