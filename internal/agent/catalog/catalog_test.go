package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanpawarit/tripcomposer/internal/agent/graph/tools"
	"github.com/tanpawarit/tripcomposer/internal/agent/model"
)

func TestLookupDestinations(t *testing.T) {
	c := New()
	ctx := context.Background()

	got, err := c.LookupDestinations(ctx, model.DestinationQuery{Query: "ANTAL", Limit: 10})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "AYT", got[0].Code)

	got, err = c.LookupDestinations(ctx, model.DestinationQuery{CountryCode: "tr", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSearchHotelsPricesStay(t *testing.T) {
	c := New()
	res, err := c.SearchHotels(context.Background(), model.HotelSearchRequest{
		HotelCode:    "AYT-SEA-01",
		CheckInDate:  "2026-07-01",
		CheckOutDate: "2026-07-08",
		Rooms:        1,
		Adults:       2,
		Currency:     "EUR",
	})
	require.NoError(t, err)
	require.Len(t, res.Hotels, 1)
	assert.Equal(t, "EUR", res.Hotels[0].Currency)
	assert.InDelta(t, 145*7*0.92, res.Hotels[0].MinPrice, 0.01)
	assert.Equal(t, 1, res.PropertyCount)
}

func TestSearchHotelsByDestination(t *testing.T) {
	c := New()
	res, err := c.SearchHotels(context.Background(), model.HotelSearchRequest{
		DestinationCode: "AYT",
		CheckInDate:     "2026-07-01",
		CheckOutDate:    "2026-07-03",
		Rooms:           1,
		Adults:          3,
		Currency:        "XYZ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Antalya", res.Destination)
	assert.Len(t, res.Hotels, 3)
	assert.Equal(t, "USD", res.Hotels[0].Currency)
	// third adult pays the supplement
	assert.InDelta(t, (145+145*0.35)*2, res.Hotels[0].MinPrice, 0.01)

	_, err = c.SearchHotels(context.Background(), model.HotelSearchRequest{DestinationCode: "AYT", CheckInDate: "2026-07-03", CheckOutDate: "2026-07-01"})
	assert.Error(t, err)
}

func TestSearchTransfers(t *testing.T) {
	c := New()
	got, err := c.SearchTransfers(context.Background(), model.TransferSearchRequest{DestinationCode: "AYT", TransferType: "private", PaxCount: 4})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "TR-AYT-02", got[0].ID)
	assert.Equal(t, "USD", got[0].Currency)

	got, err = c.SearchTransfers(context.Background(), model.TransferSearchRequest{DestinationName: "sultanahmet", PaxCount: 2})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "TR-IST-01", got[0].ID)
}

func TestSearchFlightsDeterministic(t *testing.T) {
	c := New()
	req := model.FlightSearchRequest{Origin: "AYT", Destination: "GYD", DepartureDate: "2026-07-01", ReturnDate: "2026-07-08", CabinClass: "economy", Adults: 2}

	a, err := c.SearchFlights(context.Background(), req)
	require.NoError(t, err)
	b, err := c.SearchFlights(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, a.Offers, 3)
	assert.Equal(t, a.Offers[0].ID, b.Offers[0].ID)
	assert.NotEqual(t, a.Offers[0].ID, a.Offers[1].ID)
	assert.InDelta(t, 210*2*2, a.Offers[0].TotalPrice, 0.01)
	assert.Len(t, a.Offers[0].ReturnSegments, 1)
	assert.Equal(t, "GYD", a.Offers[0].Segments[0].Destination)

	none, err := c.SearchFlights(context.Background(), model.FlightSearchRequest{Origin: "AYT", Destination: "JFK", DepartureDate: "2026-07-01"})
	require.NoError(t, err)
	assert.True(t, none.Mock)
	assert.Empty(t, none.Offers)
}

func TestQuoteInsurance(t *testing.T) {
	c := New()
	q, err := c.QuoteInsurance(context.Background(), model.InsuranceQuoteRequest{
		StartDate:     "2026-07-01",
		EndDate:       "2026-07-08",
		Days:          8,
		TerritoryCode: "TR",
		Travelers: []model.InsuranceTraveler{
			{ID: "a", BirthDate: "1990-03-10"},
			{ID: "b", Age: 8},
			{ID: "c", Age: 70},
		},
	})
	require.NoError(t, err)
	require.Len(t, q.Premiums, 3)
	assert.InDelta(t, 1.4*8*0.8, q.Premiums[0].Premium, 0.01)
	assert.InDelta(t, 0.9*8*0.8, q.Premiums[1].Premium, 0.01)
	assert.InDelta(t, q.Premiums[0].Premium+q.Premiums[1].Premium+q.Premiums[2].Premium, q.TotalPremium, 0.01)
	require.NotNil(t, q.DiscountedSum)
	assert.Equal(t, "USD", q.Currency)

	_, err = c.QuoteInsurance(context.Background(), model.InsuranceQuoteRequest{Days: 0})
	assert.Error(t, err)
}

func TestLatencyHonorsContext(t *testing.T) {
	c := New(WithLatency(time.Second))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := c.SearchExcursions(ctx, 5)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCatalogBehindDispatcher(t *testing.T) {
	c := New()
	d := tools.NewDispatcher(tools.Collaborators{
		Destinations: c, Hotels: c, Transfers: c, Excursions: c, Flights: c, Insurance: c,
	})
	trip := model.TripContext{DestinationCode: "IST", CheckInDate: "2026-07-01", CheckOutDate: "2026-07-05", Adults: 2}

	results := d.Dispatch(context.Background(), []model.ToolCall{
		{ID: "1", Name: tools.ToolSearchHotels, Arguments: `{}`},
		{ID: "2", Name: tools.ToolSearchExcursions, Arguments: `{"query":"bosphorus"}`},
		{ID: "3", Name: tools.ToolSearchFlights, Arguments: `{"origin":"GYD","destination":"IST","departureDate":"2026-07-01"}`},
	}, trip)

	require.Len(t, results, 3)
	for _, r := range results {
		assert.True(t, r.OK, r.Error)
	}
	hotels := results[0].Data.(*model.HotelsPayload)
	assert.Len(t, hotels.Hotels, 2)
	excursions := results[1].Data.(*model.ExcursionsPayload)
	require.Len(t, excursions.Excursions, 1)
	assert.Equal(t, "EX-003", excursions.Excursions[0].ID)
}
