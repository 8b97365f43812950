package tools

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanpawarit/tripcomposer/internal/agent/model"
	logx "github.com/tanpawarit/tripcomposer/pkg/logger"
)

func init() { logx.Silence() }

func ptr[T any](v T) *T { return &v }

type fakeHotels struct {
	delay time.Duration
	err   error
	got   model.HotelSearchRequest
}

func (f *fakeHotels) SearchHotels(ctx context.Context, req model.HotelSearchRequest) (*model.HotelSearchResult, error) {
	f.got = req
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &model.HotelSearchResult{
		Destination:   "Antalya",
		PropertyCount: 1,
		Hotels:        []model.HotelOffer{{Code: "H1", Name: "Sea Breeze", MinPrice: 1000, Currency: "USD"}},
	}, nil
}

type fakeTransfers struct{ delay time.Duration }

func (f *fakeTransfers) SearchTransfers(context.Context, model.TransferSearchRequest) ([]model.TransferRate, error) {
	time.Sleep(f.delay)
	return []model.TransferRate{{ID: "T1", Type: "private", VehicleName: "Sedan", OneWayPrice: ptr(40.0), Currency: "USD"}}, nil
}

type fakeExcursions struct{}

func (fakeExcursions) SearchExcursions(_ context.Context, limit int) (*model.ExcursionSearchResult, error) {
	return &model.ExcursionSearchResult{
		Excursions: []model.Excursion{
			{ID: "E1", Name: "Old Town Walk", City: "Antalya", AdultPrice: ptr(30.0), Currency: "USD"},
			{ID: "E2", Name: "Boat Trip", City: "Kemer", AdultPrice: ptr(80.0), Currency: "USD"},
			{ID: "E3", Name: "Düden Waterfalls", City: "Antalya", AdultPrice: ptr(25.0), Currency: "USD"},
		},
		Fee: 2,
	}, nil
}

type panicFlights struct{}

func (panicFlights) SearchFlights(context.Context, model.FlightSearchRequest) (*model.FlightSearchResult, error) {
	panic("boom")
}

type fakeFlights struct{ got model.FlightSearchRequest }

func (f *fakeFlights) SearchFlights(_ context.Context, req model.FlightSearchRequest) (*model.FlightSearchResult, error) {
	f.got = req
	return &model.FlightSearchResult{Currency: req.Currency}, nil
}

type fakeInsurance struct{ got model.InsuranceQuoteRequest }

func (f *fakeInsurance) QuoteInsurance(_ context.Context, req model.InsuranceQuoteRequest) (*model.InsuranceQuote, error) {
	f.got = req
	return &model.InsuranceQuote{TotalPremium: 24, Currency: "EUR"}, nil
}

var trip = model.TripContext{
	DestinationCode: "AYT",
	DestinationName: "Antalya",
	OriginCode:      "GYD",
	CheckInDate:     "2026-07-01",
	CheckOutDate:    "2026-07-08",
	Adults:          2,
	Children:        1,
	Currency:        "usd",
}

func TestParseArgs(t *testing.T) {
	assert.Equal(t, Args{}, ParseArgs(""))
	assert.Equal(t, Args{}, ParseArgs("{not json"))
	assert.Equal(t, Args{}, ParseArgs(`[1,2]`))
	assert.Equal(t, Args{}, ParseArgs(`null`))

	a := ParseArgs(`{"limit":"7","price":12.5,"code":" ayt ","date":"2026-02-30","cur":"eur","list":["a"," ",3]}`)
	n, ok := a.Int("limit")
	assert.True(t, ok)
	assert.Equal(t, 7, n)
	f, ok := a.Float("price")
	assert.True(t, ok)
	assert.Equal(t, 12.5, f)
	assert.Equal(t, "AYT", a.Upper("code"))
	assert.Equal(t, "", a.Date("date"))
	assert.Equal(t, "EUR", a.Currency("cur"))
	assert.Equal(t, []string{"a"}, a.StringSlice("list"))
	assert.Equal(t, 3, a.PositiveInt("missing", 0, 3))
}

func TestRegistry(t *testing.T) {
	infos := ToolInfos()
	require.Len(t, infos, 6)
	assert.Equal(t, []string{
		ToolLookupDestinations, ToolSearchHotels, ToolSearchTransfers,
		ToolSearchExcursions, ToolSearchFlights, ToolQuoteInsurance,
	}, Names())

	specs := FunctionSpecs()
	require.Len(t, specs, 6)
	hotels := specs[1]
	assert.Equal(t, ToolSearchHotels, hotels.Name)
	assert.Equal(t, "object", hotels.Parameters["type"])
	assert.Equal(t, []string{"checkInDate", "checkOutDate"}, hotels.Parameters["required"])

	insurance := specs[5].Parameters["properties"].(map[string]any)["travelers"].(map[string]any)
	assert.Equal(t, "array", insurance["type"])
	assert.Equal(t, "object", insurance["items"].(map[string]any)["type"])
}

func TestDispatchPreservesOrder(t *testing.T) {
	d := NewDispatcher(Collaborators{
		Hotels:     &fakeHotels{delay: 60 * time.Millisecond},
		Transfers:  &fakeTransfers{delay: 30 * time.Millisecond},
		Excursions: fakeExcursions{},
	}, WithMaxParallel(3))

	calls := []model.ToolCall{
		{ID: "c1", Name: ToolSearchHotels, Arguments: `{}`},
		{ID: "c2", Name: ToolSearchTransfers, Arguments: `{}`},
		{ID: "c3", Name: ToolSearchExcursions, Arguments: `{"query":"antalya"}`},
	}
	results := d.Dispatch(context.Background(), calls, trip)
	require.Len(t, results, 3)
	for i, r := range results {
		assert.True(t, r.OK, "call %d: %s", i, r.Error)
		assert.Equal(t, calls[i].Name, r.Tool)
	}
	assert.IsType(t, &model.HotelsPayload{}, results[0].Data)
	assert.IsType(t, &model.TransfersPayload{}, results[1].Data)

	exc := results[2].Data.(*model.ExcursionsPayload)
	assert.Equal(t, 2, exc.Count)
	assert.Equal(t, 2.0, exc.Fee)
}

func TestDispatchRunsConcurrently(t *testing.T) {
	var inflight, peak atomic.Int32
	blocking := hotelFunc(func(ctx context.Context, req model.HotelSearchRequest) (*model.HotelSearchResult, error) {
		n := inflight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(40 * time.Millisecond)
		inflight.Add(-1)
		return &model.HotelSearchResult{}, nil
	})
	d := NewDispatcher(Collaborators{Hotels: blocking})
	calls := []model.ToolCall{
		{ID: "a", Name: ToolSearchHotels}, {ID: "b", Name: ToolSearchHotels}, {ID: "c", Name: ToolSearchHotels},
	}
	d.Dispatch(context.Background(), calls, trip)
	assert.Equal(t, int32(3), peak.Load())
}

type hotelFunc func(ctx context.Context, req model.HotelSearchRequest) (*model.HotelSearchResult, error)

func (f hotelFunc) SearchHotels(ctx context.Context, req model.HotelSearchRequest) (*model.HotelSearchResult, error) {
	return f(ctx, req)
}

func TestExecuteNeverFails(t *testing.T) {
	d := NewDispatcher(Collaborators{
		Hotels:  &fakeHotels{err: errors.New("upstream 500: secret token xyz")},
		Flights: panicFlights{},
	})
	ctx := context.Background()

	unknown := d.Execute(ctx, model.ToolCall{ID: "1", Name: "book_everything"}, trip)
	assert.False(t, unknown.OK)
	assert.Contains(t, unknown.Error, "unknown tool")

	failed := d.Execute(ctx, model.ToolCall{ID: "2", Name: ToolSearchHotels}, trip)
	assert.False(t, failed.OK)
	assert.Equal(t, msgSearchFailed, failed.Error)
	assert.NotContains(t, failed.Error, "secret")

	panicked := d.Execute(ctx, model.ToolCall{ID: "3", Name: ToolSearchFlights}, trip)
	assert.False(t, panicked.OK)
	assert.Equal(t, msgSearchFailed, panicked.Error)

	missing := d.Execute(ctx, model.ToolCall{ID: "4", Name: ToolQuoteInsurance}, trip)
	assert.False(t, missing.OK)
	assert.Equal(t, msgUnavailable, missing.Error)
}

func TestSearchHotelsValidation(t *testing.T) {
	hotels := &fakeHotels{}
	d := NewDispatcher(Collaborators{Hotels: hotels})
	ctx := context.Background()

	res := d.Execute(ctx, model.ToolCall{Name: ToolSearchHotels, Arguments: `{"destinationCode":"AYT"}`}, model.TripContext{})
	assert.False(t, res.OK)
	assert.Contains(t, res.Error, "checkInDate")

	res = d.Execute(ctx, model.ToolCall{Name: ToolSearchHotels, Arguments: `{"destinationCode":"AYT","checkInDate":"2026-07-05","checkOutDate":"2026-07-05"}`}, model.TripContext{})
	assert.False(t, res.OK)
	assert.Contains(t, res.Error, "after")

	res = d.Execute(ctx, model.ToolCall{Name: ToolSearchHotels, Arguments: `garbage`}, trip)
	require.True(t, res.OK, res.Error)
	assert.Equal(t, "AYT", hotels.got.DestinationCode)
	assert.Equal(t, "2026-07-01", hotels.got.CheckInDate)
	assert.Equal(t, "2026-07-08", hotels.got.CheckOutDate)
	assert.Equal(t, 1, hotels.got.Rooms)
	assert.Equal(t, 2, hotels.got.Adults)
	assert.Equal(t, 1, hotels.got.Children)
	assert.Equal(t, "USD", hotels.got.Currency)
}

func TestSearchFlightsValidation(t *testing.T) {
	d := NewDispatcher(Collaborators{Flights: panicFlights{}})
	res := d.Execute(context.Background(), model.ToolCall{Name: ToolSearchFlights, Arguments: `{"origin":"Baku","destination":"AYT"}`}, model.TripContext{})
	assert.False(t, res.OK)
	assert.Contains(t, res.Error, "IATA")
}

func TestSearchFlightsReturnDate(t *testing.T) {
	flights := &fakeFlights{}
	d := NewDispatcher(Collaborators{Flights: flights})
	ctx := context.Background()
	call := func(args string, tc model.TripContext) model.ToolResult {
		return d.Execute(ctx, model.ToolCall{Name: ToolSearchFlights, Arguments: args}, tc)
	}

	res := call(`{"origin":"GYD","destination":"AYT","departureDate":"2026-07-08","returnDate":"2026-07-01"}`, model.TripContext{})
	assert.False(t, res.OK)
	assert.Contains(t, res.Error, "returnDate")

	res = call(`{"origin":"GYD","destination":"AYT","departureDate":"2026-07-08","returnDate":"2026-07-08"}`, model.TripContext{})
	require.True(t, res.OK, res.Error)
	assert.Equal(t, "2026-07-08", flights.got.ReturnDate)

	res = call(`{"origin":"GYD","destination":"AYT","departureDate":"2026-07-10"}`, model.TripContext{CheckOutDate: "2026-07-08"})
	require.True(t, res.OK, res.Error)
	assert.Empty(t, flights.got.ReturnDate)
}

func TestQuoteInsuranceDefaults(t *testing.T) {
	ins := &fakeInsurance{}
	d := NewDispatcher(Collaborators{Insurance: ins})
	res := d.Execute(context.Background(), model.ToolCall{Name: ToolQuoteInsurance, Arguments: `{"riskAmount":"30000","riskCurrency":"eur"}`}, trip)
	require.True(t, res.OK, res.Error)

	assert.Equal(t, 8, ins.got.Days)
	assert.Equal(t, "EUR", ins.got.RiskCurrency)
	require.NotNil(t, ins.got.RiskAmount)
	assert.Equal(t, 30000.0, *ins.got.RiskAmount)
	require.Len(t, ins.got.Travelers, 3)
	assert.Equal(t, "traveler-3", ins.got.Travelers[2].ID)

	payload := res.Data.(*model.InsurancePayload)
	assert.Equal(t, 24.0, payload.Quote.TotalPremium)
}

func TestExecuteCancelled(t *testing.T) {
	d := NewDispatcher(Collaborators{Hotels: &fakeHotels{delay: time.Second}})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	res := d.Execute(ctx, model.ToolCall{Name: ToolSearchHotels}, trip)
	assert.False(t, res.OK)
	assert.Equal(t, msgCancelled, res.Error)
}

func TestRateLimiterHonorsContext(t *testing.T) {
	d := NewDispatcher(Collaborators{Excursions: fakeExcursions{}}, WithRateLimit(0.001, 1))
	ctx := context.Background()
	assert.True(t, d.Execute(ctx, model.ToolCall{Name: ToolSearchExcursions}, trip).OK)

	short, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	res := d.Execute(short, model.ToolCall{Name: ToolSearchExcursions}, trip)
	assert.False(t, res.OK)
	assert.Equal(t, msgCancelled, res.Error)
}
