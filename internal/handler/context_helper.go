package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/johnnyphung-laccd/calricula/internal/middleware"
	"github.com/johnnyphung-laccd/calricula/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return nil
	}
	return claims
}
