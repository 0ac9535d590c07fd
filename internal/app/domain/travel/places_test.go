package travel

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aryatravel/arya/internal/app/llm"
)

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (llm.Result, error) {
	args := m.Called(ctx, prompt)
	return args.Get(0).(llm.Result), args.Error(1)
}

const travelDataJSON = `{
	"hotels": [{"name": "Hotel Lutetia", "rating": 4.7}],
	"restaurants": [{"name": "Septime", "rating": 4.6}]
}`

func TestGetTravelData(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(llm.Result{Text: travelDataJSON}, nil).Once()

	svc := NewService(gen, nil, zap.NewNop())
	data, err := svc.GetTravelData(context.Background(), uuid.New(), "Paris")

	require.NoError(t, err)
	require.Len(t, data.Hotels, 1)
	assert.Equal(t, "Hotel Lutetia", data.Hotels[0].Name)
	require.Len(t, data.Restaurants, 1)
	assert.Equal(t, "Septime", data.Restaurants[0].Name)
	gen.AssertExpectations(t)
}

func TestGetTravelDataCachesPerDestination(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(llm.Result{Text: travelDataJSON}, nil).Once()

	svc := NewService(gen, nil, zap.NewNop())

	_, err := svc.GetTravelData(context.Background(), uuid.New(), "Paris")
	require.NoError(t, err)

	// Second call, case-insensitive destination, must not hit the model.
	data, err := svc.GetTravelData(context.Background(), uuid.New(), "  paris ")
	require.NoError(t, err)
	assert.Equal(t, "Hotel Lutetia", data.Hotels[0].Name)

	gen.AssertNumberOfCalls(t, "Generate", 1)
}

func TestGetTravelDataGeneratorError(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(llm.Result{}, errors.New("quota exceeded"))

	svc := NewService(gen, nil, zap.NewNop())
	_, err := svc.GetTravelData(context.Background(), uuid.New(), "Paris")

	assert.Error(t, err)
}

func TestGetTravelDataUnparseableResponseNotCached(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(llm.Result{Text: "I cannot help with that."}, nil)

	svc := NewService(gen, nil, zap.NewNop())

	_, err := svc.GetTravelData(context.Background(), uuid.New(), "Paris")
	assert.Error(t, err)

	_, err = svc.GetTravelData(context.Background(), uuid.New(), "Paris")
	assert.Error(t, err)
	gen.AssertNumberOfCalls(t, "Generate", 2)
}

func TestParseTravelDataResponseShapes(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"direct object", travelDataJSON},
		{"markdown fenced", "```json\n" + travelDataJSON + "\n```"},
		{"data wrapper", `{"data": ` + travelDataJSON + `}`},
		{"alternate keys", `{"accommodations": [{"name": "Hotel Lutetia"}], "dining": [{"name": "Septime"}]}`},
		{"surrounding prose", "Here you go: " + travelDataJSON + " enjoy!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := parseTravelDataResponse(tt.response)
			require.NoError(t, err)
			assert.Equal(t, "Hotel Lutetia", data.Hotels[0].Name)
		})
	}
}

func TestParseTravelDataResponseFailures(t *testing.T) {
	for _, response := range []string{"", "no json here", `{"hotels": [], "restaurants": []}`} {
		_, err := parseTravelDataResponse(response)
		assert.Error(t, err, response)
	}
}

func TestParseTravelDataResponseKeepsPlaceFields(t *testing.T) {
	response := `{"hotels": [{"name": "Le Bristol", "rating": 4.8, "address": "112 Rue du Faubourg", "googleMapsUrl": "https://maps.google.com/?q=Le+Bristol"}], "restaurants": []}`

	data, err := parseTravelDataResponse(response)
	require.NoError(t, err)

	hotel := data.Hotels[0]
	assert.Equal(t, "Le Bristol", hotel.Name)
	assert.Equal(t, 4.8, hotel.Rating)
	assert.Equal(t, "112 Rue du Faubourg", hotel.Address)
	assert.Equal(t, "https://maps.google.com/?q=Le+Bristol", hotel.GoogleMapsURL)
}

var _ Provider = (*Service)(nil)
