package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/aryatravel/arya/internal/app/domain/tripplan"
	"github.com/aryatravel/arya/internal/app/domain/travel"
	"github.com/aryatravel/arya/internal/app/llm"
	"github.com/aryatravel/arya/internal/app/models"
	"github.com/aryatravel/arya/internal/app/observability/metrics"
	"github.com/aryatravel/arya/internal/pkg/llmlogging"
)

// Generator produces one text completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (llm.Result, error)
}

// TurnResult is everything one processed user message produced.
type TurnResult struct {
	ChatID     uuid.UUID                 `json:"chatId"`
	State      SessionState              `json:"state"`
	Messages   []models.ChatMessage      `json:"messages"`
	Itinerary  *models.ItineraryDocument `json:"itinerary,omitempty"`
	TravelData *models.TravelData        `json:"travelData,omitempty"`
}

// Service orchestrates the conversation: slot extraction per turn, the
// conversational model call, and, once the model signals readiness, the
// full generate-parse-enrich-persist sequence.
type Service struct {
	logger    *zap.Logger
	generator Generator
	repo      Repository
	places    travel.Provider
	llmLogger *llmlogging.Logger

	extractor  *tripplan.Extractor
	reconciler *tripplan.Reconciler
	sessions   *SessionStore

	maxDays int
}

func NewService(generator Generator, repo Repository, places travel.Provider, llmLogger *llmlogging.Logger, maxDays int, logger *zap.Logger) *Service {
	extractor := tripplan.NewExtractor()
	if maxDays <= 0 {
		maxDays = tripplan.DefaultDayCap
	}
	return &Service{
		logger:     logger,
		generator:  generator,
		repo:       repo,
		places:     places,
		llmLogger:  llmLogger,
		extractor:  extractor,
		reconciler: tripplan.NewReconciler(extractor),
		sessions:   NewSessionStore(),
		maxDays:    maxDays,
	}
}

// ProcessTurn handles one user message for a chat. A zero chatID starts a
// new conversation. The returned messages are the assistant messages this
// turn appended, in order.
func (s *Service) ProcessTurn(ctx context.Context, chatID uuid.UUID, userMessage string) (*TurnResult, error) {
	ctx, span := otel.Tracer("ChatService").Start(ctx, "ProcessTurn")
	defer span.End()

	metrics.RecordChatTurn(ctx)

	session, err := s.loadSession(ctx, chatID, userMessage)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("chat.id", session.ChatID.String()))

	userMsg, err := s.repo.AddMessage(ctx, session.ChatID, models.RoleUser, userMessage)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	session.mu.Lock()
	session.Messages = append(session.Messages, *userMsg)
	candidate := s.extractor.Extract(userMessage, session.Slots)
	session.Slots = tripplan.Merge(session.Slots, candidate)
	history := append([]models.ChatMessage(nil), session.Messages...)
	slots := session.Slots
	session.mu.Unlock()

	responseText, err := s.converse(ctx, session.ChatID, history[:len(history)-1], slots, userMessage)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Conversation call failed")
		return nil, err
	}

	result := &TurnResult{ChatID: session.ChatID}

	if !tripplan.HasTripReadyMarker(responseText) {
		msg, err := s.appendAssistant(ctx, session, responseText)
		if err != nil {
			return nil, err
		}
		result.Messages = append(result.Messages, *msg)
		result.State = session.state()
		return result, nil
	}

	// The model signaled readiness. The raw key/value block plus the
	// collected slots plus a history rescan become the resolved request.
	raw := tripplan.ParseTripReady(responseText)
	resolved := s.reconciler.Resolve(raw, slots, history)
	span.SetAttributes(attribute.String("trip.destination", resolved.Destination))

	if tripplan.Confirmed(resolved) {
		msg, err := s.appendAssistant(ctx, session, confirmationMessage(resolved))
		if err != nil {
			return nil, err
		}
		result.Messages = append(result.Messages, *msg)
	} else {
		s.logger.Warn("Generating with default trip fields",
			zap.String("destination", resolved.Destination),
			zap.String("duration", resolved.Duration))
	}

	session.mu.Lock()
	session.State = StateReadyToGenerate
	session.mu.Unlock()

	doc, data, err := s.generateItinerary(ctx, session, resolved)
	if err != nil {
		if errors.Is(err, models.ErrGenerationInFlight) || errors.Is(err, models.ErrSessionReset) {
			return nil, err
		}
		span.RecordError(err)
		metrics.RecordGenerationFailure(ctx)
		msg, appendErr := s.appendAssistant(ctx, session, failureMessage)
		if appendErr != nil {
			return nil, appendErr
		}
		result.Messages = append(result.Messages, *msg)
		result.State = session.state()
		return result, nil
	}

	msg, err := s.appendAssistant(ctx, session, readyMessage)
	if err != nil {
		return nil, err
	}
	result.Messages = append(result.Messages, *msg)
	result.State = session.state()
	result.Itinerary = doc
	if len(data.Hotels) > 0 || len(data.Restaurants) > 0 {
		result.TravelData = &data
	}
	span.SetStatus(codes.Ok, "Itinerary generated")
	return result, nil
}

// loadSession returns the session for the chat, creating the chat row for a
// zero ID and rebuilding in-memory state from persisted history when the
// process has no session yet.
func (s *Service) loadSession(ctx context.Context, chatID uuid.UUID, firstMessage string) (*Session, error) {
	if chatID == uuid.Nil {
		chat, err := s.repo.CreateChat(ctx, chatTitle(firstMessage))
		if err != nil {
			return nil, err
		}
		session, _ := s.sessions.GetOrCreate(chat.ID)
		return session, nil
	}

	session, existed := s.sessions.GetOrCreate(chatID)
	if existed {
		return session, nil
	}

	chat, err := s.repo.GetChat(ctx, chatID)
	if err != nil {
		s.sessions.Remove(chatID)
		return nil, err
	}

	// Rebuild slots by rescanning the persisted user messages with the
	// same rules a live conversation uses.
	session.mu.Lock()
	session.Messages = chat.Messages
	for _, msg := range chat.Messages {
		if msg.Role != models.RoleUser {
			continue
		}
		candidate := s.extractor.Extract(msg.Content, session.Slots)
		session.Slots = tripplan.Merge(session.Slots, candidate)
	}
	session.mu.Unlock()
	return session, nil
}

// StartNewConversation resets a chat's session state. Collected slots and
// the working itinerary are dropped; persisted history remains.
func (s *Service) StartNewConversation(chatID uuid.UUID) {
	if session := s.sessions.Get(chatID); session != nil {
		session.reset()
	}
}

// SessionFor exposes the session for read access by handlers.
func (s *Service) SessionFor(chatID uuid.UUID) *Session {
	return s.sessions.Get(chatID)
}

func (s *Service) converse(ctx context.Context, chatID uuid.UUID, history []models.ChatMessage, slots models.TripSlots, userMessage string) (string, error) {
	prompt := buildConversationPrompt(history, slots, userMessage)

	startTime := time.Now()
	llmResult, err := s.generator.Generate(ctx, prompt)
	latencyMs := time.Since(startTime).Milliseconds()
	metrics.RecordLLMLatency(ctx, "conversation", latencyMs)

	if err != nil {
		s.logInteraction(ctx, chatID, "conversation", prompt, llm.Result{}, err.Error(), latencyMs)
		return "", fmt.Errorf("conversation call failed: %w", err)
	}
	s.logInteraction(ctx, chatID, "conversation", prompt, llmResult, "", latencyMs)
	return llmResult.Text, nil
}

// generateItinerary runs the structured generation pipeline. At most one
// generation runs per session; a second trigger while one is in flight
// returns ErrGenerationInFlight.
func (s *Service) generateItinerary(ctx context.Context, session *Session, resolved models.ResolvedTripRequest) (*models.ItineraryDocument, models.TravelData, error) {
	gen, ok := session.beginGeneration()
	if !ok {
		return nil, models.TravelData{}, models.ErrGenerationInFlight
	}

	days := tripplan.NormalizeDuration(resolved.Duration, s.maxDays)
	prompt := buildItineraryPrompt(resolved, days)

	startTime := time.Now()
	llmResult, err := s.generator.Generate(ctx, prompt)
	latencyMs := time.Since(startTime).Milliseconds()
	metrics.RecordLLMLatency(ctx, "itinerary", latencyMs)

	if err != nil {
		s.logInteraction(ctx, session.ChatID, "itinerary", prompt, llm.Result{}, err.Error(), latencyMs)
		session.completeGeneration(gen, nil, models.TravelData{})
		return nil, models.TravelData{}, fmt.Errorf("itinerary call failed: %w", err)
	}
	s.logInteraction(ctx, session.ChatID, "itinerary", prompt, llmResult, "", latencyMs)

	doc, err := tripplan.ParseItineraryResponse(llmResult.Text, resolved, days, s.logger)
	if err != nil {
		session.completeGeneration(gen, nil, models.TravelData{})
		return nil, models.TravelData{}, err
	}

	// Place data is best effort. Without it the itinerary ships with the
	// model's free-text suggestions.
	var data models.TravelData
	if s.places != nil {
		data, err = s.places.GetTravelData(ctx, session.ChatID, resolved.Destination)
		if err != nil {
			s.logger.Warn("Proceeding without place enrichment",
				zap.String("destination", resolved.Destination),
				zap.Error(err))
		}
	}
	doc.Hotels = data.Hotels
	doc.Restaurants = data.Restaurants
	if !tripplan.EnrichItinerary(doc.Itinerary, data) {
		metrics.RecordEnrichmentSkipped(ctx)
	}

	if _, err := s.repo.SaveItinerary(ctx, session.ChatID, *doc); err != nil {
		// The generated document still reaches the user; losing the
		// persisted copy is logged, not fatal.
		s.logger.Error("Failed to persist itinerary",
			zap.String("chat_id", session.ChatID.String()),
			zap.Error(err))
	}

	if !session.completeGeneration(gen, doc, data) {
		s.logger.Info("Discarding itinerary from a reset conversation",
			zap.String("chat_id", session.ChatID.String()))
		return nil, models.TravelData{}, models.ErrSessionReset
	}
	metrics.RecordGeneration(ctx)
	return doc, data, nil
}

func (s *Service) appendAssistant(ctx context.Context, session *Session, content string) (*models.ChatMessage, error) {
	msg, err := s.repo.AddMessage(ctx, session.ChatID, models.RoleAssistant, content)
	if err != nil {
		return nil, err
	}
	session.mu.Lock()
	session.Messages = append(session.Messages, *msg)
	session.mu.Unlock()
	return msg, nil
}

func (s *Service) logInteraction(ctx context.Context, chatID uuid.UUID, intent, prompt string, result llm.Result, errorMessage string, latencyMs int64) {
	if s.llmLogger == nil {
		return
	}
	statusCode := 200
	if errorMessage != "" {
		statusCode = 500
	}
	s.llmLogger.LogInteractionAsync(ctx, llmlogging.LoggingConfig{
		ChatID:    chatID,
		Intent:    intent,
		Prompt:    prompt,
		ModelName: result.ModelName,
		Provider:  "google",
	}, llmlogging.LLMResponse{
		ResponseText:     result.Text,
		PromptTokens:     result.PromptTokens,
		CompletionTokens: result.CompletionTokens,
		TotalTokens:      result.TotalTokens,
		StatusCode:       statusCode,
		ErrorMessage:     errorMessage,
	}, latencyMs)
}

// chatTitle derives a listing title from the first user message.
func chatTitle(message string) string {
	const maxTitle = 60
	runes := []rune(message)
	if len(runes) <= maxTitle {
		return message
	}
	return string(runes[:maxTitle]) + "…"
}
