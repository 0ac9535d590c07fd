package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/aryatravel/arya/internal/app/models"
	"github.com/aryatravel/arya/internal/app/observability/metrics"
)

var _ Repository = (*RepositoryImpl)(nil)

// Repository is the persistence contract for chats, their messages, the
// itineraries they produce, and the LLM audit trail.
type Repository interface {
	CreateChat(ctx context.Context, title string) (*models.Chat, error)
	GetChat(ctx context.Context, chatID uuid.UUID) (*models.Chat, error)
	ListChats(ctx context.Context) ([]models.Chat, error)
	UpdateChatTitle(ctx context.Context, chatID uuid.UUID, title string) error
	DeleteChat(ctx context.Context, chatID uuid.UUID) error

	AddMessage(ctx context.Context, chatID uuid.UUID, role, content string) (*models.ChatMessage, error)

	SaveItinerary(ctx context.Context, chatID uuid.UUID, doc models.ItineraryDocument) (*models.SavedItinerary, error)
	GetItinerary(ctx context.Context, itineraryID uuid.UUID) (*models.SavedItinerary, error)
	ListItineraries(ctx context.Context) ([]models.SavedItinerary, error)
	DeleteItinerary(ctx context.Context, itineraryID uuid.UUID) error

	SaveInteraction(ctx context.Context, interaction models.LlmInteraction) (uuid.UUID, error)
}

type RepositoryImpl struct {
	logger *zap.Logger
	pgpool *pgxpool.Pool
}

func NewRepositoryImpl(pgpool *pgxpool.Pool, logger *zap.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *RepositoryImpl) CreateChat(ctx context.Context, title string) (*models.Chat, error) {
	ctx, span := otel.Tracer("ChatRepo").Start(ctx, "CreateChat", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "chats"),
	))
	defer span.End()

	var chat models.Chat
	query := `
        INSERT INTO chats (title, created_at, updated_at)
        VALUES ($1, Now(), Now())
        RETURNING id, title, created_at, updated_at`

	err := r.pgpool.QueryRow(ctx, query, title).Scan(
		&chat.ID,
		&chat.Title,
		&chat.CreatedAt,
		&chat.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		metrics.RecordDBQueryError(ctx, "chats")
		span.SetStatus(codes.Error, "Insert failed")
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}
	return &chat, nil
}

func (r *RepositoryImpl) GetChat(ctx context.Context, chatID uuid.UUID) (*models.Chat, error) {
	ctx, span := otel.Tracer("ChatRepo").Start(ctx, "GetChat", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "chats"),
	))
	defer span.End()

	var chat models.Chat
	query := `SELECT id, title, created_at, updated_at FROM chats WHERE id = $1`
	err := r.pgpool.QueryRow(ctx, query, chatID).Scan(&chat.ID, &chat.Title, &chat.CreatedAt, &chat.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		span.RecordError(err)
		metrics.RecordDBQueryError(ctx, "chats")
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}

	messages, err := r.getMessages(ctx, chatID)
	if err != nil {
		span.RecordError(err)
		metrics.RecordDBQueryError(ctx, "chat_messages")
		return nil, err
	}
	chat.Messages = messages
	return &chat, nil
}

func (r *RepositoryImpl) getMessages(ctx context.Context, chatID uuid.UUID) ([]models.ChatMessage, error) {
	query := `
        SELECT id, role, content, created_at
        FROM chat_messages
        WHERE chat_id = $1
        ORDER BY created_at ASC, id ASC`

	rows, err := r.pgpool.Query(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.Role, &m.Content, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (r *RepositoryImpl) ListChats(ctx context.Context) ([]models.Chat, error) {
	ctx, span := otel.Tracer("ChatRepo").Start(ctx, "ListChats", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "chats"),
	))
	defer span.End()

	query := `SELECT id, title, created_at, updated_at FROM chats ORDER BY updated_at DESC`
	rows, err := r.pgpool.Query(ctx, query)
	if err != nil {
		span.RecordError(err)
		metrics.RecordDBQueryError(ctx, "chats")
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	defer rows.Close()

	var chats []models.Chat
	for rows.Next() {
		var chat models.Chat
		if err := rows.Scan(&chat.ID, &chat.Title, &chat.CreatedAt, &chat.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat: %w", err)
		}
		chats = append(chats, chat)
	}
	return chats, rows.Err()
}

func (r *RepositoryImpl) UpdateChatTitle(ctx context.Context, chatID uuid.UUID, title string) error {
	ctx, span := otel.Tracer("ChatRepo").Start(ctx, "UpdateChatTitle", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "chats"),
	))
	defer span.End()

	tag, err := r.pgpool.Exec(ctx, `UPDATE chats SET title = $1, updated_at = Now() WHERE id = $2`, title, chatID)
	if err != nil {
		span.RecordError(err)
		metrics.RecordDBQueryError(ctx, "chats")
		return fmt.Errorf("failed to update chat title: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *RepositoryImpl) DeleteChat(ctx context.Context, chatID uuid.UUID) error {
	ctx, span := otel.Tracer("ChatRepo").Start(ctx, "DeleteChat", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "DELETE"),
		attribute.String("db.sql.table", "chats"),
	))
	defer span.End()

	tag, err := r.pgpool.Exec(ctx, `DELETE FROM chats WHERE id = $1`, chatID)
	if err != nil {
		span.RecordError(err)
		metrics.RecordDBQueryError(ctx, "chats")
		return fmt.Errorf("failed to delete chat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *RepositoryImpl) AddMessage(ctx context.Context, chatID uuid.UUID, role, content string) (*models.ChatMessage, error) {
	ctx, span := otel.Tracer("ChatRepo").Start(ctx, "AddMessage", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "chat_messages"),
	))
	defer span.End()

	var m models.ChatMessage
	query := `
        INSERT INTO chat_messages (chat_id, role, content, created_at)
        VALUES ($1, $2, $3, Now())
        RETURNING id, role, content, created_at`

	err := r.pgpool.QueryRow(ctx, query, chatID, role, content).Scan(&m.ID, &m.Role, &m.Content, &m.Timestamp)
	if err != nil {
		span.RecordError(err)
		metrics.RecordDBQueryError(ctx, "chat_messages")
		span.SetStatus(codes.Error, "Insert failed")
		return nil, fmt.Errorf("failed to add message: %w", err)
	}

	// Touch the parent chat so listing orders by recency.
	if _, err := r.pgpool.Exec(ctx, `UPDATE chats SET updated_at = Now() WHERE id = $1`, chatID); err != nil {
		r.logger.Warn("Failed to touch chat timestamp", zap.String("chat_id", chatID.String()), zap.Error(err))
	}
	return &m, nil
}

func (r *RepositoryImpl) SaveItinerary(ctx context.Context, chatID uuid.UUID, doc models.ItineraryDocument) (*models.SavedItinerary, error) {
	ctx, span := otel.Tracer("ChatRepo").Start(ctx, "SaveItinerary", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "itineraries"),
	))
	defer span.End()

	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal itinerary: %w", err)
	}

	saved := models.SavedItinerary{ChatID: chatID, Document: doc}
	query := `
        INSERT INTO itineraries (chat_id, document, created_at)
        VALUES ($1, $2, Now())
        RETURNING id, created_at`

	if err := r.pgpool.QueryRow(ctx, query, chatID, payload).Scan(&saved.ID, &saved.CreatedAt); err != nil {
		span.RecordError(err)
		metrics.RecordDBQueryError(ctx, "itineraries")
		span.SetStatus(codes.Error, "Insert failed")
		return nil, fmt.Errorf("failed to save itinerary: %w", err)
	}
	return &saved, nil
}

func (r *RepositoryImpl) GetItinerary(ctx context.Context, itineraryID uuid.UUID) (*models.SavedItinerary, error) {
	ctx, span := otel.Tracer("ChatRepo").Start(ctx, "GetItinerary", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "itineraries"),
	))
	defer span.End()

	var saved models.SavedItinerary
	var payload []byte
	query := `SELECT id, chat_id, document, created_at FROM itineraries WHERE id = $1`
	err := r.pgpool.QueryRow(ctx, query, itineraryID).Scan(&saved.ID, &saved.ChatID, &payload, &saved.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		span.RecordError(err)
		metrics.RecordDBQueryError(ctx, "itineraries")
		return nil, fmt.Errorf("failed to get itinerary: %w", err)
	}
	if err := json.Unmarshal(payload, &saved.Document); err != nil {
		return nil, fmt.Errorf("failed to unmarshal itinerary: %w", err)
	}
	return &saved, nil
}

func (r *RepositoryImpl) ListItineraries(ctx context.Context) ([]models.SavedItinerary, error) {
	ctx, span := otel.Tracer("ChatRepo").Start(ctx, "ListItineraries", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "itineraries"),
	))
	defer span.End()

	query := `SELECT id, chat_id, document, created_at FROM itineraries ORDER BY created_at DESC`
	rows, err := r.pgpool.Query(ctx, query)
	if err != nil {
		span.RecordError(err)
		metrics.RecordDBQueryError(ctx, "itineraries")
		return nil, fmt.Errorf("failed to list itineraries: %w", err)
	}
	defer rows.Close()

	var itineraries []models.SavedItinerary
	for rows.Next() {
		var saved models.SavedItinerary
		var payload []byte
		if err := rows.Scan(&saved.ID, &saved.ChatID, &payload, &saved.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan itinerary: %w", err)
		}
		if err := json.Unmarshal(payload, &saved.Document); err != nil {
			r.logger.Warn("Skipping itinerary with unreadable document",
				zap.String("itinerary_id", saved.ID.String()), zap.Error(err))
			continue
		}
		itineraries = append(itineraries, saved)
	}
	return itineraries, rows.Err()
}

func (r *RepositoryImpl) DeleteItinerary(ctx context.Context, itineraryID uuid.UUID) error {
	ctx, span := otel.Tracer("ChatRepo").Start(ctx, "DeleteItinerary", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "DELETE"),
		attribute.String("db.sql.table", "itineraries"),
	))
	defer span.End()

	tag, err := r.pgpool.Exec(ctx, `DELETE FROM itineraries WHERE id = $1`, itineraryID)
	if err != nil {
		span.RecordError(err)
		metrics.RecordDBQueryError(ctx, "itineraries")
		return fmt.Errorf("failed to delete itinerary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *RepositoryImpl) SaveInteraction(ctx context.Context, interaction models.LlmInteraction) (uuid.UUID, error) {
	ctx, span := otel.Tracer("ChatRepo").Start(ctx, "SaveInteraction", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "llm_interactions"),
	))
	defer span.End()

	var id uuid.UUID
	query := `
        INSERT INTO llm_interactions
            (chat_id, intent, prompt, response_text, model_used,
             prompt_tokens, completion_tokens, total_tokens, latency_ms, cost_usd, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, Now())
        RETURNING id`

	err := r.pgpool.QueryRow(ctx, query,
		interaction.ChatID,
		interaction.Intent,
		interaction.Prompt,
		interaction.ResponseText,
		interaction.ModelUsed,
		interaction.PromptTokens,
		interaction.CompletionTokens,
		interaction.TotalTokens,
		interaction.LatencyMs,
		interaction.CostUSD,
	).Scan(&id)
	if err != nil {
		span.RecordError(err)
		metrics.RecordDBQueryError(ctx, "llm_interactions")
		span.SetStatus(codes.Error, "Insert failed")
		return uuid.Nil, fmt.Errorf("failed to save llm interaction: %w", err)
	}
	return id, nil
}
