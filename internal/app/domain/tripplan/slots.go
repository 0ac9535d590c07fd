package tripplan

import "github.com/aryatravel/arya/internal/app/models"

// SlotNames lists the six trip slots in canonical order.
var SlotNames = []string{"destination", "origin", "travelers", "dates", "duration", "purpose"}

// Merge folds a candidate partial-slot set into the accumulated slots.
// First-write-wins per slot: a filled slot is never overwritten, so merging
// the same candidate twice is a no-op.
func Merge(current, candidate models.TripSlots) models.TripSlots {
	merged := current
	for _, slot := range SlotNames {
		if slotValue(merged, slot) != "" {
			continue
		}
		if v := slotValue(candidate, slot); v != "" {
			setSlot(&merged, slot, v)
		}
	}
	return merged
}

// IsComplete reports whether every slot has been filled.
func IsComplete(s models.TripSlots) bool {
	return len(MissingFields(s)) == 0
}

// MissingFields returns the names of slots still unset, in canonical order.
// The orchestrator uses this to decide whether to keep asking questions.
func MissingFields(s models.TripSlots) []string {
	var missing []string
	for _, slot := range SlotNames {
		if slotValue(s, slot) == "" {
			missing = append(missing, slot)
		}
	}
	return missing
}
