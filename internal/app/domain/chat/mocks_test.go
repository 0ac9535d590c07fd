package chat

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/aryatravel/arya/internal/app/llm"
	"github.com/aryatravel/arya/internal/app/models"
)

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (llm.Result, error) {
	args := m.Called(ctx, prompt)
	return args.Get(0).(llm.Result), args.Error(1)
}

type MockPlacesProvider struct {
	mock.Mock
}

func (m *MockPlacesProvider) GetTravelData(ctx context.Context, chatID uuid.UUID, destination string) (models.TravelData, error) {
	args := m.Called(ctx, chatID, destination)
	return args.Get(0).(models.TravelData), args.Error(1)
}

// fakeRepository is an in-memory Repository; the tests care about recorded
// state, not SQL.
type fakeRepository struct {
	chats       map[uuid.UUID]*models.Chat
	itineraries []models.SavedItinerary
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{chats: make(map[uuid.UUID]*models.Chat)}
}

func (f *fakeRepository) CreateChat(_ context.Context, title string) (*models.Chat, error) {
	chat := &models.Chat{ID: uuid.New(), Title: title, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	f.chats[chat.ID] = chat
	return chat, nil
}

func (f *fakeRepository) GetChat(_ context.Context, chatID uuid.UUID) (*models.Chat, error) {
	chat, ok := f.chats[chatID]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *chat
	return &copied, nil
}

func (f *fakeRepository) ListChats(context.Context) ([]models.Chat, error) {
	var chats []models.Chat
	for _, chat := range f.chats {
		chats = append(chats, *chat)
	}
	return chats, nil
}

func (f *fakeRepository) UpdateChatTitle(_ context.Context, chatID uuid.UUID, title string) error {
	chat, ok := f.chats[chatID]
	if !ok {
		return models.ErrNotFound
	}
	chat.Title = title
	return nil
}

func (f *fakeRepository) DeleteChat(_ context.Context, chatID uuid.UUID) error {
	if _, ok := f.chats[chatID]; !ok {
		return models.ErrNotFound
	}
	delete(f.chats, chatID)
	return nil
}

func (f *fakeRepository) AddMessage(_ context.Context, chatID uuid.UUID, role, content string) (*models.ChatMessage, error) {
	chat, ok := f.chats[chatID]
	if !ok {
		return nil, models.ErrNotFound
	}
	msg := models.ChatMessage{ID: uuid.New(), Role: role, Content: content, Timestamp: time.Now()}
	chat.Messages = append(chat.Messages, msg)
	return &msg, nil
}

func (f *fakeRepository) SaveItinerary(_ context.Context, chatID uuid.UUID, doc models.ItineraryDocument) (*models.SavedItinerary, error) {
	saved := models.SavedItinerary{ID: uuid.New(), ChatID: chatID, Document: doc, CreatedAt: time.Now()}
	f.itineraries = append(f.itineraries, saved)
	return &saved, nil
}

func (f *fakeRepository) GetItinerary(_ context.Context, itineraryID uuid.UUID) (*models.SavedItinerary, error) {
	for _, saved := range f.itineraries {
		if saved.ID == itineraryID {
			return &saved, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeRepository) ListItineraries(context.Context) ([]models.SavedItinerary, error) {
	return f.itineraries, nil
}

func (f *fakeRepository) DeleteItinerary(_ context.Context, itineraryID uuid.UUID) error {
	for i, saved := range f.itineraries {
		if saved.ID == itineraryID {
			f.itineraries = append(f.itineraries[:i], f.itineraries[i+1:]...)
			return nil
		}
	}
	return models.ErrNotFound
}

func (f *fakeRepository) SaveInteraction(_ context.Context, interaction models.LlmInteraction) (uuid.UUID, error) {
	return uuid.New(), nil
}

var _ Repository = (*fakeRepository)(nil)
