package tripplan

import (
	"strings"

	"github.com/aryatravel/arya/internal/app/models"
)

// Fallback defaults substituted when no source yields a value. A request
// still carrying the destination or duration default is not "confirmed".
const (
	DefaultDestination = "the destination"
	DefaultOrigin      = "your location"
	DefaultDuration    = "5 days"
	DefaultTravelers   = "1 person"
	DefaultPurpose     = "leisure"
	DefaultDates       = "flexible dates"
)

// rawKeyAliases maps each slot to the normalized keys it may appear under in
// a TRIP_READY block, in preference order.
var rawKeyAliases = map[string][]string{
	"destination": {"destination", "location"},
	"origin":      {"origin"},
	"travelers":   {"travelers", "travellers"},
	"dates":       {"dates", "date"},
	"duration":    {"duration", "days"},
	"purpose":     {"purpose", "focus"},
}

// Reconciler merges a raw TRIP_READY record with the accumulated trip slots
// and applies last-resort fallbacks so every field of the resolved request
// has a value.
type Reconciler struct {
	extractor *Extractor
}

func NewReconciler(extractor *Extractor) *Reconciler {
	return &Reconciler{extractor: extractor}
}

// Resolve picks, per field: the raw TRIP_READY value, else the collected
// slot, else a whole-conversation rescan with the extraction rules, else the
// fixed default literal.
func (r *Reconciler) Resolve(raw map[string]string, slots models.TripSlots, history []models.ChatMessage) models.ResolvedTripRequest {
	rescanned := r.rescanHistory(slots, history)

	resolve := func(slot, fallback string) string {
		for _, key := range rawKeyAliases[slot] {
			if v := raw[key]; v != "" {
				return v
			}
		}
		if v := slotValue(slots, slot); v != "" {
			return v
		}
		if v := slotValue(rescanned, slot); v != "" {
			return v
		}
		return fallback
	}

	return models.ResolvedTripRequest{
		Destination: resolve("destination", DefaultDestination),
		Origin:      resolve("origin", DefaultOrigin),
		Duration:    resolve("duration", DefaultDuration),
		Travelers:   resolve("travelers", DefaultTravelers),
		Purpose:     resolve("purpose", DefaultPurpose),
		Dates:       resolve("dates", DefaultDates),
	}
}

// rescanHistory reruns the slot rules over the concatenated user side of the
// conversation, filling only slots still empty. Broader scope than the
// per-turn extraction, same rules.
func (r *Reconciler) rescanHistory(slots models.TripSlots, history []models.ChatMessage) models.TripSlots {
	if r.extractor == nil || len(history) == 0 {
		return models.TripSlots{}
	}
	var b strings.Builder
	for _, msg := range history {
		if msg.Role != models.RoleUser {
			continue
		}
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}
	return r.extractor.Extract(b.String(), slots)
}

// Confirmed reports whether the resolved request carries real values for
// destination and duration. When false, the orchestrator still proceeds to
// generation with defaults but skips the celebratory confirmation message.
func Confirmed(req models.ResolvedTripRequest) bool {
	return req.Destination != DefaultDestination && req.Duration != DefaultDuration
}
