// Package httpapi espone in sola lettura classifica e squadre su HTTP (gin).
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"Futbotchi/service/club/internal/club"
)

// Reader e' la parte del servizio usata dall'API HTTP.
type Reader interface {
	GetRoster(ctx context.Context, userID string) (*club.View, error)
	Leaderboard(ctx context.Context, limit int) ([]club.LeaderboardEntry, error)
}

// MaxLimit e' il massimo di righe restituite dalla classifica.
const MaxLimit = 100

// NewRouter costruisce il router con throttle globale e le rotte pubbliche.
func NewRouter(reader Reader, limiter *rate.Limiter, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), Throttle(limiter))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	api := r.Group("/api")
	{
		api.GET("/leaderboard", Leaderboard(reader, logger))
		api.GET("/teams/:user_id", Team(reader, logger))
	}
	return r
}

// Throttle rifiuta con 429 le richieste oltre il limite globale.
func Throttle(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter != nil && !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}

// Leaderboard: GET /api/leaderboard?limit=N (default 10, massimo MaxLimit).
func Leaderboard(reader Reader, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 10
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
				return
			}
			limit = min(n, MaxLimit)
		}

		entries, err := reader.Leaderboard(c.Request.Context(), limit)
		if err != nil {
			logger.Error("errore classifica", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"teams": entries})
	}
}

// Team: GET /api/teams/:user_id.
func Team(reader Reader, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("user_id")
		view, err := reader.GetRoster(c.Request.Context(), userID)
		switch {
		case errors.Is(err, club.ErrRosterNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "team not found"})
			return
		case errors.Is(err, club.ErrUnauthenticated):
			c.JSON(http.StatusBadRequest, gin.H{"error": "user id is required"})
			return
		case err != nil:
			logger.Error("errore lettura squadra", "user_id", userID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, view)
	}
}
