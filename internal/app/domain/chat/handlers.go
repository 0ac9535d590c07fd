package chat

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aryatravel/arya/internal/app/models"
)

// Handlers exposes the chat and itinerary API over Gin.
type Handlers struct {
	service *Service
	repo    Repository
	logger  *zap.Logger
}

func NewHandlers(service *Service, repo Repository, logger *zap.Logger) *Handlers {
	return &Handlers{
		service: service,
		repo:    repo,
		logger:  logger,
	}
}

type chatRequest struct {
	Message string `json:"message" binding:"required"`
	ChatID  string `json:"chatId"`
}

// HandleChat processes one user message, running the full conversational
// pipeline. POST /api/chat
func (h *Handlers) HandleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "message is required"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "message is required"})
		return
	}

	chatID := uuid.Nil
	if req.ChatID != "" {
		parsed, err := uuid.Parse(req.ChatID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid chat id"})
			return
		}
		chatID = parsed
	}

	result, err := h.service.ProcessTurn(c.Request.Context(), chatID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "chat not found"})
		case errors.Is(err, models.ErrGenerationInFlight):
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": "itinerary generation already in progress"})
		default:
			h.logger.Error("Chat turn failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to process message"})
		}
		return
	}

	response := gin.H{
		"success":  true,
		"chatId":   result.ChatID,
		"state":    result.State,
		"messages": result.Messages,
	}
	// Mirror the single-message field clients read for plain turns.
	if len(result.Messages) > 0 {
		response["message"] = result.Messages[len(result.Messages)-1].Content
	}
	if result.Itinerary != nil {
		response["itinerary"] = result.Itinerary
	}
	if result.TravelData != nil {
		response["travelData"] = result.TravelData
	}
	c.JSON(http.StatusOK, response)
}

// ListChats returns all stored conversations. GET /api/chats
func (h *Handlers) ListChats(c *gin.Context) {
	chats, err := h.repo.ListChats(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list chats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to list chats"})
		return
	}
	if chats == nil {
		chats = []models.Chat{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "chats": chats})
}

// GetChat returns one conversation with its messages. GET /api/chats/:id
func (h *Handlers) GetChat(c *gin.Context) {
	chatID, ok := parseIDParam(c)
	if !ok {
		return
	}
	chat, err := h.repo.GetChat(c.Request.Context(), chatID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "chat not found"})
			return
		}
		h.logger.Error("Failed to get chat", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to get chat"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "chat": chat})
}

type titleRequest struct {
	Title string `json:"title" binding:"required"`
}

// UpdateChatTitle renames a conversation. PATCH /api/chats/:id/title
func (h *Handlers) UpdateChatTitle(c *gin.Context) {
	chatID, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req titleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "title is required"})
		return
	}
	if err := h.repo.UpdateChatTitle(c.Request.Context(), chatID, req.Title); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "chat not found"})
			return
		}
		h.logger.Error("Failed to update chat title", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to update chat"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteChat removes a conversation and its session. DELETE /api/chats/:id
func (h *Handlers) DeleteChat(c *gin.Context) {
	chatID, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.repo.DeleteChat(c.Request.Context(), chatID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "chat not found"})
			return
		}
		h.logger.Error("Failed to delete chat", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to delete chat"})
		return
	}
	h.service.sessions.Remove(chatID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ResetChat starts over: drops collected details and the working itinerary.
// POST /api/chats/:id/reset
func (h *Handlers) ResetChat(c *gin.Context) {
	chatID, ok := parseIDParam(c)
	if !ok {
		return
	}
	h.service.StartNewConversation(chatID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListItineraries returns all saved itineraries. GET /api/itineraries
func (h *Handlers) ListItineraries(c *gin.Context) {
	itineraries, err := h.repo.ListItineraries(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list itineraries", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to list itineraries"})
		return
	}
	if itineraries == nil {
		itineraries = []models.SavedItinerary{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "itineraries": itineraries})
}

// GetItinerary returns one saved itinerary. GET /api/itineraries/:id
func (h *Handlers) GetItinerary(c *gin.Context) {
	itineraryID, ok := parseIDParam(c)
	if !ok {
		return
	}
	saved, err := h.repo.GetItinerary(c.Request.Context(), itineraryID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "itinerary not found"})
			return
		}
		h.logger.Error("Failed to get itinerary", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to get itinerary"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "itinerary": saved})
}

// DeleteItinerary removes a saved itinerary. DELETE /api/itineraries/:id
func (h *Handlers) DeleteItinerary(c *gin.Context) {
	itineraryID, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.repo.DeleteItinerary(c.Request.Context(), itineraryID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "itinerary not found"})
			return
		}
		h.logger.Error("Failed to delete itinerary", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to delete itinerary"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}
