package chat

import (
	"sync"

	"github.com/google/uuid"

	"github.com/aryatravel/arya/internal/app/models"
)

// SessionState tracks where a conversation is in its lifecycle.
type SessionState string

const (
	StateCollectingInfo   SessionState = "collecting_info"
	StateReadyToGenerate  SessionState = "ready_to_generate"
	StateGenerating       SessionState = "generating"
	StatePresented        SessionState = "presented"
	StateGenerationFailed SessionState = "generation_failed"
)

// Session is the in-memory state of one conversation. The chat history and
// itinerary are also persisted; the session carries the working copy plus
// the accumulated slots, which exist only for the life of the process.
//
// All mutations go through the methods below; the mutex covers concurrent
// turns hitting the same chat.
type Session struct {
	mu sync.Mutex

	ChatID     uuid.UUID
	State      SessionState
	Slots      models.TripSlots
	Messages   []models.ChatMessage
	Itinerary  *models.ItineraryDocument
	TravelData models.TravelData

	// generation increments on every reset. An in-flight generation
	// compares its snapshot against the current value before applying its
	// result, so output from before a reset is discarded.
	generation int
	inFlight   bool
}

func newSession(chatID uuid.UUID) *Session {
	return &Session{
		ChatID: chatID,
		State:  StateCollectingInfo,
	}
}

// beginGeneration marks the session as generating. It fails when another
// generation is already running for this session.
func (s *Session) beginGeneration() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return 0, false
	}
	s.inFlight = true
	s.State = StateGenerating
	return s.generation, true
}

// completeGeneration applies a finished generation. A result from before a
// reset is dropped and the session left as the reset put it.
func (s *Session) completeGeneration(gen int, doc *models.ItineraryDocument, data models.TravelData) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	if gen != s.generation {
		return false
	}
	if doc == nil {
		s.State = StateGenerationFailed
		return true
	}
	s.Itinerary = doc
	s.TravelData = data
	s.State = StatePresented
	return true
}

func (s *Session) state() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.State
}

// reset clears the conversation state for a fresh start. The generation
// counter advances so any in-flight generation output is discarded.
func (s *Session) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Slots = models.TripSlots{}
	s.Messages = nil
	s.Itinerary = nil
	s.TravelData = models.TravelData{}
	s.State = StateCollectingInfo
	s.generation++
}

// SessionStore keeps the active sessions by chat ID.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[uuid.UUID]*Session),
	}
}

// GetOrCreate returns the session for a chat, creating it on first use.
// The second return reports whether the session already existed.
func (st *SessionStore) GetOrCreate(chatID uuid.UUID) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.sessions[chatID]; ok {
		return s, true
	}
	s := newSession(chatID)
	st.sessions[chatID] = s
	return s, false
}

// Get returns the session for a chat, or nil.
func (st *SessionStore) Get(chatID uuid.UUID) *Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.sessions[chatID]
}

// Remove drops a session, typically when its chat is deleted.
func (st *SessionStore) Remove(chatID uuid.UUID) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, chatID)
}
