package tripplan

import (
	"github.com/aryatravel/arya/internal/app/models"
)

// EnrichItinerary fills each day's accommodation and dining with real place
// data, assigned cyclically so multi-day trips rotate through the available
// options. Entries that already carry a named place are left alone, which
// makes re-enrichment of a stored itinerary a no-op.
//
// Returns true when at least one list of places was applied. With no place
// data at all the itinerary is returned untouched and the caller may surface
// the miss as a non-fatal condition.
func EnrichItinerary(days []models.DayPlan, data models.TravelData) bool {
	if len(data.Hotels) == 0 && len(data.Restaurants) == 0 {
		return false
	}
	for i := range days {
		if len(data.Hotels) > 0 && days[i].Accommodation.Name() == "" {
			hotel := data.Hotels[i%len(data.Hotels)]
			days[i].Accommodation = models.PlaceOrText{Place: &hotel}
		}
		if len(data.Restaurants) > 0 && days[i].Dining.Name() == "" {
			restaurant := data.Restaurants[i%len(data.Restaurants)]
			days[i].Dining = models.PlaceOrText{Place: &restaurant}
		}
	}
	return true
}
