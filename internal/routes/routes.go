package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/aryatravel/arya/internal/app/domain/chat"
	"github.com/aryatravel/arya/internal/app/domain/travel"
	"github.com/aryatravel/arya/internal/app/llm"
	"github.com/aryatravel/arya/internal/app/middleware"
	"github.com/aryatravel/arya/internal/pkg/config"
	"github.com/aryatravel/arya/internal/pkg/llmlogging"
)

// Setup wires the domain services and registers the API routes.
func Setup(r *gin.Engine, dbPool *pgxpool.Pool, cfg *config.Config, log *zap.Logger) error {
	repo := chat.NewRepositoryImpl(dbPool, log)
	auditLogger := llmlogging.NewLogger(log, repo)

	aiClient, err := llm.NewClient(context.Background(), cfg.Gemini)
	if err != nil {
		return err
	}

	placesService := travel.NewService(aiClient, auditLogger, log)
	chatService := chat.NewService(aiClient, repo, placesService, auditLogger, cfg.TripMaxDays, log)
	chatHandlers := chat.NewHandlers(chatService, repo, log)

	r.GET("/health", func(c *gin.Context) {
		status := "healthy"
		code := http.StatusOK

		pool := middleware.GetDBFromContext(c)
		if pool == nil {
			pool = dbPool
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "time": time.Now().UTC()})
	})

	api := r.Group("/api")
	{
		api.POST("/chat", chatHandlers.HandleChat)

		api.GET("/chats", chatHandlers.ListChats)
		api.GET("/chats/:id", chatHandlers.GetChat)
		api.PATCH("/chats/:id/title", chatHandlers.UpdateChatTitle)
		api.POST("/chats/:id/reset", chatHandlers.ResetChat)
		api.DELETE("/chats/:id", chatHandlers.DeleteChat)

		api.GET("/itineraries", chatHandlers.ListItineraries)
		api.GET("/itineraries/:id", chatHandlers.GetItinerary)
		api.DELETE("/itineraries/:id", chatHandlers.DeleteItinerary)
	}

	return nil
}
