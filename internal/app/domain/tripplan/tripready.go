package tripplan

import (
	"strings"
)

// TripReadyMarker is the sentinel token the upstream LLM embeds in a reply
// once enough information exists to generate a full itinerary. The marker is
// never localized; only the surrounding natural-language text is.
const TripReadyMarker = "TRIP_READY"

// HasTripReadyMarker reports whether an assistant response contains the
// completion marker.
func HasTripReadyMarker(response string) bool {
	return strings.Contains(response, TripReadyMarker)
}

// ParseTripReady extracts the key:value block that accompanies a TRIP_READY
// marker. Keys are lowercased and stripped to alphanumerics; values are
// trimmed. Lines without a colon, and lines whose value is empty or part of
// the marker itself, are skipped. Duplicate keys overwrite (last wins),
// unlike the collected-info store.
func ParseTripReady(response string) map[string]string {
	info := make(map[string]string)
	for _, line := range strings.Split(response, "\n") {
		key, rest, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		value := strings.TrimSpace(rest)
		cleanKey := normalizeKey(key)
		if cleanKey == "" || value == "" || strings.Contains(value, TripReadyMarker) {
			continue
		}
		info[cleanKey] = value
	}
	return info
}

func normalizeKey(key string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(key)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
