package models

import "errors"

// Domain specific errors for chat and itinerary generation.
var (
	ErrNotFound = errors.New("requested item not found")

	// ErrMalformedResponse means no parseable JSON object could be located
	// in a generation response. Retryable; collected slots are preserved.
	ErrMalformedResponse = errors.New("no itinerary JSON found in response")

	// ErrEmptyItinerary means the JSON parsed but contained no day entries.
	// Same user-visible treatment as ErrMalformedResponse.
	ErrEmptyItinerary = errors.New("itinerary contains no days")

	// ErrGenerationInFlight means a generation is already running for the
	// conversation; a new turn cannot start until it settles.
	ErrGenerationInFlight = errors.New("itinerary generation already in progress")

	// ErrSessionReset means the conversation was reset while a generation
	// was running; the generated document was discarded.
	ErrSessionReset = errors.New("conversation was reset during generation")
)
