// Package catalog is a deterministic in-memory implementation of the trip collaborators.
// It backs the demo runner and end-to-end tests.
package catalog

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/text/cases"

	"github.com/tanpawarit/tripcomposer/internal/agent/model"
)

// offerNamespace seeds deterministic offer ids.
var offerNamespace = uuid.MustParse("6f1c2d4e-8a7b-4c3d-9e2f-1a0b5c6d7e8f")

type Catalog struct {
	latency time.Duration
}

type Option func(*Catalog)

// WithLatency delays every call, honoring ctx, to mimic remote suppliers.
func WithLatency(d time.Duration) Option {
	return func(c *Catalog) { c.latency = d }
}

func New(opts ...Option) *Catalog {
	c := &Catalog{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Catalog) wait(ctx context.Context) error {
	if c.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(c.latency)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ===================================
// Destinations
// ===================================

func (c *Catalog) LookupDestinations(ctx context.Context, req model.DestinationQuery) ([]model.Destination, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	fold := cases.Fold()
	q := fold.String(strings.TrimSpace(req.Query))
	found := lo.Filter(MockDestinations, func(d model.Destination, _ int) bool {
		if req.CountryCode != "" && !strings.EqualFold(d.CountryCode, req.CountryCode) {
			return false
		}
		return q == "" || strings.Contains(fold.String(d.Name), q) || fold.String(d.Code) == q
	})
	if req.Limit > 0 {
		found = lo.Subset(found, 0, uint(req.Limit))
	}
	return found, nil
}

// ===================================
// Hotels
// ===================================

func (c *Catalog) SearchHotels(ctx context.Context, req model.HotelSearchRequest) (*model.HotelSearchResult, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	nights, ok := model.DaysBetween(req.CheckInDate, req.CheckOutDate)
	if !ok || nights < 1 {
		return nil, fmt.Errorf("invalid stay %s..%s", req.CheckInDate, req.CheckOutDate)
	}
	currency, rate := resolveCurrency(req.Currency)
	rooms := max(req.Rooms, 1)

	matches := lo.Filter(MockHotels, func(h mockHotel, _ int) bool {
		if req.HotelCode != "" {
			return strings.EqualFold(h.Code, req.HotelCode)
		}
		return strings.EqualFold(h.Destination, req.DestinationCode)
	})

	hotels := lo.Map(matches, func(h mockHotel, _ int) model.HotelOffer {
		// guests beyond two per room pay a 35% supplement
		extra := math.Max(0, float64(req.Adults+req.Children-2*rooms))
		total := (h.NightlyUSD*float64(rooms) + h.NightlyUSD*0.35*extra) * float64(nights)
		return model.HotelOffer{
			Code:     h.Code,
			Name:     h.Name,
			City:     h.City,
			Rating:   h.Rating,
			MinPrice: round2(total * rate),
			Currency: currency,
		}
	})

	destination := strings.ToUpper(req.DestinationCode)
	if d, found := lo.Find(MockDestinations, func(d model.Destination) bool { return d.Code == destination }); found {
		destination = d.Name
	}
	return &model.HotelSearchResult{
		Destination:   destination,
		PropertyCount: len(hotels),
		Hotels:        hotels,
	}, nil
}

// ===================================
// Transfers
// ===================================

func (c *Catalog) SearchTransfers(ctx context.Context, req model.TransferSearchRequest) ([]model.TransferRate, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	fold := cases.Fold()
	name := fold.String(strings.TrimSpace(req.DestinationName))
	found := lo.Filter(MockTransfers, func(t model.TransferRate, _ int) bool {
		switch {
		case req.DestinationCode != "":
			if !strings.EqualFold(transferCities[t.ID], req.DestinationCode) {
				return false
			}
		case name != "":
			if !strings.Contains(fold.String(t.Destination), name) && !strings.Contains(fold.String(t.Origin), name) {
				return false
			}
		}
		if req.TransferType != "" && t.Type != req.TransferType {
			return false
		}
		return req.PaxCount >= t.PaxMin && req.PaxCount <= t.PaxMax
	})

	return lo.Map(found, func(t model.TransferRate, _ int) model.TransferRate {
		t.Currency = "USD"
		if req.TravelDate != "" {
			t.ValidFrom = req.TravelDate
			t.ValidTo = req.TravelDate
		}
		return t
	}), nil
}

// ===================================
// Excursions
// ===================================

func (c *Catalog) SearchExcursions(ctx context.Context, limit int) (*model.ExcursionSearchResult, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	list := MockExcursions
	if limit > 0 {
		list = lo.Subset(list, 0, uint(limit))
	}
	return &model.ExcursionSearchResult{
		Excursions: lo.Map(list, func(e model.Excursion, _ int) model.Excursion {
			e.Currency = "USD"
			return e
		}),
		Fee: excursionFeeUSD,
	}, nil
}

// ===================================
// Flights
// ===================================

func (c *Catalog) SearchFlights(ctx context.Context, req model.FlightSearchRequest) (*model.FlightSearchResult, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	currency, rate := resolveCurrency(req.Currency)
	base, ok := routeFare(req.Origin, req.Destination)
	if !ok {
		return &model.FlightSearchResult{Currency: currency, Offers: []model.FlightOffer{}, Mock: true}, nil
	}

	cabin := cabinFactor[req.CabinClass]
	if cabin == 0 {
		cabin = 1
	}
	pax := float64(max(req.Adults, 1)) + 0.75*float64(req.Children)
	legs := 1.0
	if req.ReturnDate != "" {
		legs = 2
	}

	offers := lo.Map(mockCarriers, func(cr mockCarrier, i int) model.FlightOffer {
		key := fmt.Sprintf("%s|%s|%s|%s|%s|%s", cr.Code, req.Origin, req.Destination, req.DepartureDate, req.ReturnDate, req.CabinClass)
		offer := model.FlightOffer{
			ID:         uuid.NewSHA1(offerNamespace, []byte(key)).String(),
			TotalPrice: round2(base * cr.Factor * cabin * pax * legs * rate),
			Currency:   currency,
			Segments:   []model.FlightSegment{segment(cr.Code, i, req.Origin, req.Destination, req.DepartureDate)},
		}
		if req.ReturnDate != "" {
			offer.ReturnSegments = []model.FlightSegment{segment(cr.Code, i+10, req.Destination, req.Origin, req.ReturnDate)}
		}
		return offer
	})
	return &model.FlightSearchResult{Currency: currency, Offers: offers}, nil
}

func routeFare(origin, destination string) (float64, bool) {
	if f, ok := mockFares[[2]string{origin, destination}]; ok {
		return f, true
	}
	f, ok := mockFares[[2]string{destination, origin}]
	return f, ok
}

func segment(carrier string, n int, origin, destination, date string) model.FlightSegment {
	dep := fmt.Sprintf("%sT%02d:30:00", date, 6+3*(n%5))
	arr := fmt.Sprintf("%sT%02d:45:00", date, 9+3*(n%5))
	return model.FlightSegment{
		Carrier:       carrier,
		FlightNumber:  fmt.Sprintf("%s%d", carrier, 100+n*7),
		Origin:        origin,
		Destination:   destination,
		DepartureTime: dep,
		ArrivalTime:   arr,
	}
}

// ===================================
// Insurance
// ===================================

func (c *Catalog) QuoteInsurance(ctx context.Context, req model.InsuranceQuoteRequest) (*model.InsuranceQuote, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	if req.Days < 1 {
		return nil, fmt.Errorf("insurance needs at least one day, got %d", req.Days)
	}
	currency, rate := resolveCurrency(req.RiskCurrency)
	territory := territoryFactor[strings.ToUpper(req.TerritoryCode)]
	if territory == 0 {
		territory = 1
	}

	premiums := lo.Map(req.Travelers, func(t model.InsuranceTraveler, _ int) model.TravelerPremium {
		age := travelerAge(t, req.StartDate)
		return model.TravelerPremium{
			TravelerID: t.ID,
			Premium:    round2(dailyRate(age) * float64(req.Days) * territory * rate),
		}
	})
	total := round2(lo.SumBy(premiums, func(p model.TravelerPremium) float64 { return p.Premium }))

	quote := &model.InsuranceQuote{
		TotalPremium: total,
		Currency:     currency,
		Premiums:     premiums,
	}
	if req.RiskAmount != nil {
		sum := *req.RiskAmount
		quote.Sum = &sum
	}
	if len(premiums) >= 3 {
		discounted := round2(total * 0.9)
		quote.DiscountedSum = &discounted
	}
	return quote, nil
}

func travelerAge(t model.InsuranceTraveler, on string) int {
	if t.Age > 0 {
		return t.Age
	}
	born, err := time.Parse(model.DateLayout, t.BirthDate)
	if err != nil {
		return 30
	}
	at, err := time.Parse(model.DateLayout, on)
	if err != nil {
		at = time.Now()
	}
	age := at.Year() - born.Year()
	if at.YearDay() < born.YearDay() {
		age--
	}
	return max(age, 0)
}

func dailyRate(age int) float64 {
	for _, band := range insuranceDailyUSD {
		if age <= band.MaxAge {
			return band.Rate
		}
	}
	return insuranceDailyUSD[len(insuranceDailyUSD)-1].Rate
}

// resolveCurrency falls back to USD for currencies without a demo rate.
func resolveCurrency(code string) (string, float64) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if rate, ok := fxFromUSD[code]; ok {
		return code, rate
	}
	return "USD", 1
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

var (
	_ model.DestinationDirectory = (*Catalog)(nil)
	_ model.HotelSearcher        = (*Catalog)(nil)
	_ model.TransferSearcher     = (*Catalog)(nil)
	_ model.ExcursionSearcher    = (*Catalog)(nil)
	_ model.FlightSearcher       = (*Catalog)(nil)
	_ model.InsuranceQuoter      = (*Catalog)(nil)
)
