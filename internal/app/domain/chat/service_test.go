package chat

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aryatravel/arya/internal/app/llm"
	"github.com/aryatravel/arya/internal/app/models"
)

const tripReadyResponse = `Perfect, I have everything I need!

TRIP_READY:
Destination: Paris
Origin: Madrid
Duration: 3 days
Travelers: 2 people (couple)
Purpose: culture
Dates: 1 June`

const itineraryResponse = "```json" + `
{
  "destination": "Paris",
  "itinerary": [
    {"day": 1, "title": "Arrival", "activities": [{"name": "Louvre"}]},
    {"day": 2, "title": "Museums"},
    {"day": 3}
  ],
  "tips": ["Buy a metro pass"]
}
` + "```"

func newTestService(gen Generator, repo Repository, places *MockPlacesProvider) *Service {
	if places == nil {
		return NewService(gen, repo, nil, nil, 7, zap.NewNop())
	}
	return NewService(gen, repo, places, nil, 7, zap.NewNop())
}

func TestProcessTurnPlainConversation(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(llm.Result{Text: "Sounds exciting! Where would you like to go?"}, nil).Once()

	repo := newFakeRepository()
	svc := newTestService(gen, repo, nil)

	result, err := svc.ProcessTurn(context.Background(), uuid.Nil, "I want to plan a trip")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, result.ChatID)
	assert.Equal(t, StateCollectingInfo, result.State)
	require.Len(t, result.Messages, 1)
	assert.Equal(t, models.RoleAssistant, result.Messages[0].Role)
	assert.Contains(t, result.Messages[0].Content, "Where would you like to go?")
	assert.Nil(t, result.Itinerary)

	// Both turns were persisted.
	chat, err := repo.GetChat(context.Background(), result.ChatID)
	require.NoError(t, err)
	require.Len(t, chat.Messages, 2)
	assert.Equal(t, models.RoleUser, chat.Messages[0].Role)
}

func TestProcessTurnAccumulatesSlots(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(llm.Result{Text: "Got it!"}, nil)

	repo := newFakeRepository()
	svc := newTestService(gen, repo, nil)

	result, err := svc.ProcessTurn(context.Background(), uuid.Nil, "I want to go to Paris")
	require.NoError(t, err)

	_, err = svc.ProcessTurn(context.Background(), result.ChatID, "from Madrid, for 5 days")
	require.NoError(t, err)

	session := svc.SessionFor(result.ChatID)
	require.NotNil(t, session)
	assert.Equal(t, "Paris", session.Slots.Destination)
	assert.Equal(t, "Madrid", session.Slots.Origin)
	assert.Equal(t, "5 days", session.Slots.Duration)
}

func TestProcessTurnGeneratesItinerary(t *testing.T) {
	gen := new(MockGenerator)
	// First call is the conversational turn, second the structured one.
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return !strings.Contains(p, "day-by-day")
	})).Return(llm.Result{Text: tripReadyResponse}, nil).Once()
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "day-by-day")
	})).Return(llm.Result{Text: itineraryResponse}, nil).Once()

	places := new(MockPlacesProvider)
	places.On("GetTravelData", mock.Anything, mock.Anything, "Paris").Return(models.TravelData{
		Hotels:      []models.Place{{Name: "Hotel Lutetia"}},
		Restaurants: []models.Place{{Name: "Septime"}},
	}, nil).Once()

	repo := newFakeRepository()
	svc := newTestService(gen, repo, places)

	result, err := svc.ProcessTurn(context.Background(), uuid.Nil, "Paris from Madrid for 3 days in June, museums, with my wife")
	require.NoError(t, err)

	assert.Equal(t, StatePresented, result.State)
	require.NotNil(t, result.Itinerary)
	require.Len(t, result.Itinerary.Itinerary, 3)

	// Confirmation then the ready announcement.
	require.Len(t, result.Messages, 2)
	assert.Contains(t, result.Messages[0].Content, "3 days trip to Paris")
	assert.Contains(t, result.Messages[1].Content, "itinerary is ready")

	// Enrichment applied real place data cyclically.
	assert.Equal(t, "Hotel Lutetia", result.Itinerary.Itinerary[0].Accommodation.Name())
	assert.Equal(t, "Septime", result.Itinerary.Itinerary[2].Dining.Name())
	assert.Equal(t, []models.Place{{Name: "Hotel Lutetia"}}, result.Itinerary.Hotels)

	// The document was persisted.
	require.Len(t, repo.itineraries, 1)
	assert.Equal(t, result.ChatID, repo.itineraries[0].ChatID)

	gen.AssertExpectations(t)
	places.AssertExpectations(t)
}

func TestProcessTurnGenerationFailurePreservesSlots(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return !strings.Contains(p, "day-by-day")
	})).Return(llm.Result{Text: tripReadyResponse}, nil).Once()
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "day-by-day")
	})).Return(llm.Result{Text: "Sorry, something went wrong, no JSON here."}, nil).Once()

	repo := newFakeRepository()
	svc := newTestService(gen, repo, nil)

	result, err := svc.ProcessTurn(context.Background(), uuid.Nil, "Paris from Madrid for 3 days in June with my wife, museums please")
	require.NoError(t, err)

	assert.Equal(t, StateGenerationFailed, result.State)
	assert.Nil(t, result.Itinerary)
	last := result.Messages[len(result.Messages)-1]
	assert.Contains(t, last.Content, "details are saved")

	// Collected details survive the failure for a retry.
	session := svc.SessionFor(result.ChatID)
	require.NotNil(t, session)
	assert.Equal(t, "Paris", session.Slots.Destination)
	assert.Equal(t, "3 days", session.Slots.Duration)
	assert.Empty(t, repo.itineraries)
}

func TestProcessTurnEmptyItineraryIsFailure(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return !strings.Contains(p, "day-by-day")
	})).Return(llm.Result{Text: tripReadyResponse}, nil).Once()
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "day-by-day")
	})).Return(llm.Result{Text: `{"destination": "Paris", "itinerary": []}`}, nil).Once()

	repo := newFakeRepository()
	svc := newTestService(gen, repo, nil)

	result, err := svc.ProcessTurn(context.Background(), uuid.Nil, "Paris for 3 days")
	require.NoError(t, err)

	assert.Equal(t, StateGenerationFailed, result.State)
	assert.Nil(t, result.Itinerary)
}

func TestProcessTurnPlacesFailureIsNonFatal(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return !strings.Contains(p, "day-by-day")
	})).Return(llm.Result{Text: tripReadyResponse}, nil).Once()
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "day-by-day")
	})).Return(llm.Result{Text: itineraryResponse}, nil).Once()

	places := new(MockPlacesProvider)
	places.On("GetTravelData", mock.Anything, mock.Anything, "Paris").
		Return(models.TravelData{}, assert.AnError).Once()

	repo := newFakeRepository()
	svc := newTestService(gen, repo, places)

	result, err := svc.ProcessTurn(context.Background(), uuid.Nil, "Paris for 3 days")
	require.NoError(t, err)

	assert.Equal(t, StatePresented, result.State)
	require.NotNil(t, result.Itinerary)
	assert.Empty(t, result.Itinerary.Hotels)
	assert.Nil(t, result.TravelData)
}

func TestProcessTurnUnknownChat(t *testing.T) {
	gen := new(MockGenerator)
	svc := newTestService(gen, newFakeRepository(), nil)

	_, err := svc.ProcessTurn(context.Background(), uuid.New(), "hello")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestProcessTurnRebuildsSessionFromHistory(t *testing.T) {
	repo := newFakeRepository()
	chat, err := repo.CreateChat(context.Background(), "Paris trip")
	require.NoError(t, err)
	_, err = repo.AddMessage(context.Background(), chat.ID, models.RoleUser, "I want to go to Paris from Madrid")
	require.NoError(t, err)
	_, err = repo.AddMessage(context.Background(), chat.ID, models.RoleAssistant, "Great! For how long?")
	require.NoError(t, err)

	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(llm.Result{Text: "Noted!"}, nil).Once()

	svc := newTestService(gen, repo, nil)
	result, err := svc.ProcessTurn(context.Background(), chat.ID, "make it 4 days")
	require.NoError(t, err)

	session := svc.SessionFor(result.ChatID)
	require.NotNil(t, session)
	assert.Equal(t, "Paris", session.Slots.Destination)
	assert.Equal(t, "Madrid", session.Slots.Origin)
	assert.Equal(t, "4 days", session.Slots.Duration)
}

func TestStartNewConversationResetsSession(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(llm.Result{Text: "Okay!"}, nil)

	repo := newFakeRepository()
	svc := newTestService(gen, repo, nil)

	result, err := svc.ProcessTurn(context.Background(), uuid.Nil, "Paris for 5 days")
	require.NoError(t, err)

	svc.StartNewConversation(result.ChatID)

	session := svc.SessionFor(result.ChatID)
	require.NotNil(t, session)
	assert.Equal(t, models.TripSlots{}, session.Slots)
	assert.Nil(t, session.Itinerary)
	assert.Equal(t, StateCollectingInfo, session.State)
}

func TestSessionGenerationGuard(t *testing.T) {
	s := newSession(uuid.New())

	gen, ok := s.beginGeneration()
	require.True(t, ok)
	assert.Equal(t, StateGenerating, s.State)

	// A second generation cannot start while one is in flight.
	_, ok = s.beginGeneration()
	assert.False(t, ok)

	doc := &models.ItineraryDocument{Itinerary: []models.DayPlan{{Day: 1}}}
	applied := s.completeGeneration(gen, doc, models.TravelData{})
	assert.True(t, applied)
	assert.Equal(t, StatePresented, s.State)
	assert.Same(t, doc, s.Itinerary)
}

func TestSessionStaleGenerationDiscarded(t *testing.T) {
	s := newSession(uuid.New())

	gen, ok := s.beginGeneration()
	require.True(t, ok)

	// Reset while the generation is running.
	s.reset()

	doc := &models.ItineraryDocument{Itinerary: []models.DayPlan{{Day: 1}}}
	applied := s.completeGeneration(gen, doc, models.TravelData{})

	assert.False(t, applied)
	assert.Nil(t, s.Itinerary)
	assert.Equal(t, StateCollectingInfo, s.State)

	// The session is free for a fresh generation afterwards.
	_, ok = s.beginGeneration()
	assert.True(t, ok)
}
