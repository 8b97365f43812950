package tools

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/cases"

	"github.com/tanpawarit/tripcomposer/internal/agent/model"
)

// Result caps bound how much of a collaborator response is fed back to the model.
const (
	maxHotelResults       = 10
	maxTransferResults    = 15
	maxFlightResults      = 10
	defaultExcursionLimit = 20
	maxExcursionLimit     = 50
	defaultDestinations   = 10
	maxDestinations       = 25
	maxInsuranceTravelers = 10
)

var (
	iataPattern = regexp.MustCompile(`^[A-Z]{3}$`)

	transferTypes = []string{"private", "shared", "vip"}
	cabinClasses  = []string{"economy", "premium_economy", "business", "first"}
)

// errServiceUnavailable marks a tool whose collaborator is not configured.
var errServiceUnavailable = errors.New("service unavailable")

// invalidArgsError carries a validation message that is safe to show to the model.
type invalidArgsError struct{ msg string }

func (e *invalidArgsError) Error() string { return e.msg }

func invalid(format string, args ...any) error {
	return &invalidArgsError{msg: fmt.Sprintf(format, args...)}
}

type executor func(ctx context.Context, args Args, trip model.TripContext) (any, error)

func (d *Dispatcher) executors() map[string]executor {
	return map[string]executor{
		ToolLookupDestinations: d.lookupDestinations,
		ToolSearchHotels:       d.searchHotels,
		ToolSearchTransfers:    d.searchTransfers,
		ToolSearchExcursions:   d.searchExcursions,
		ToolSearchFlights:      d.searchFlights,
		ToolQuoteInsurance:     d.quoteInsurance,
	}
}

// ===================================
// lookup_destinations
// ===================================

func (d *Dispatcher) lookupDestinations(ctx context.Context, args Args, trip model.TripContext) (any, error) {
	if d.collab.Destinations == nil {
		return nil, errServiceUnavailable
	}
	q := model.DestinationQuery{
		Query:       args.String("query"),
		CountryCode: args.Upper("countryCode"),
	}
	limit, _ := args.Int("limit")
	q.Limit = clampLimit(limit, defaultDestinations, maxDestinations)

	found, err := d.collab.Destinations.LookupDestinations(ctx, q)
	if err != nil {
		return nil, err
	}
	found = lo.Subset(found, 0, uint(q.Limit))
	return &model.DestinationsPayload{Search: q, Destinations: found, Count: len(found)}, nil
}

// ===================================
// search_hotels
// ===================================

func (d *Dispatcher) searchHotels(ctx context.Context, args Args, trip model.TripContext) (any, error) {
	if d.collab.Hotels == nil {
		return nil, errServiceUnavailable
	}
	req := model.HotelSearchRequest{
		DestinationCode: firstNonEmpty(args.Upper("destinationCode"), strings.ToUpper(trip.DestinationCode)),
		HotelCode:       args.String("hotelCode"),
		CheckInDate:     firstNonEmpty(args.Date("checkInDate"), model.NormalizeDate(trip.CheckInDate)),
		CheckOutDate:    firstNonEmpty(args.Date("checkOutDate"), model.NormalizeDate(trip.CheckOutDate)),
		Rooms:           args.PositiveInt("roomCount", trip.Rooms, 1),
		Adults:          args.PositiveInt("adults", trip.Adults, 2),
		Children:        args.NonNegativeInt("children", trip.Children),
		Currency:        firstNonEmpty(args.Currency("currency"), model.NormalizeCurrency(trip.Currency)),
	}
	if req.DestinationCode == "" && req.HotelCode == "" {
		return nil, invalid("destinationCode or hotelCode is required")
	}
	if req.CheckInDate == "" || req.CheckOutDate == "" {
		return nil, invalid("checkInDate and checkOutDate are required in YYYY-MM-DD format")
	}
	if nights, ok := model.DaysBetween(req.CheckInDate, req.CheckOutDate); !ok || nights < 1 {
		return nil, invalid("checkOutDate must be after checkInDate")
	}

	res, err := d.collab.Hotels.SearchHotels(ctx, req)
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = &model.HotelSearchResult{}
	}
	return &model.HotelsPayload{
		Search:        req,
		Destination:   res.Destination,
		PropertyCount: res.PropertyCount,
		Hotels:        lo.Subset(res.Hotels, 0, maxHotelResults),
	}, nil
}

// ===================================
// search_transfers
// ===================================

func (d *Dispatcher) searchTransfers(ctx context.Context, args Args, trip model.TripContext) (any, error) {
	if d.collab.Transfers == nil {
		return nil, errServiceUnavailable
	}
	transferType := strings.ToLower(args.String("transferType"))
	if !lo.Contains(transferTypes, transferType) {
		transferType = ""
	}
	req := model.TransferSearchRequest{
		DestinationCode: firstNonEmpty(args.Upper("destinationLocationCode"), strings.ToUpper(trip.DestinationCode)),
		DestinationName: firstNonEmpty(args.String("destinationName"), trip.DestinationName),
		TransferType:    transferType,
		PaxCount:        args.PositiveInt("paxCount", trip.Adults+trip.Children, 1),
		TravelDate:      firstNonEmpty(args.Date("travelDate"), model.NormalizeDate(trip.CheckInDate)),
	}
	if req.DestinationCode == "" && req.DestinationName == "" {
		return nil, invalid("destinationLocationCode or destinationName is required")
	}

	rates, err := d.collab.Transfers.SearchTransfers(ctx, req)
	if err != nil {
		return nil, err
	}
	rates = lo.Subset(rates, 0, maxTransferResults)
	return &model.TransfersPayload{Search: req, Transfers: rates, Count: len(rates)}, nil
}

// ===================================
// search_excursions
// ===================================

func (d *Dispatcher) searchExcursions(ctx context.Context, args Args, _ model.TripContext) (any, error) {
	if d.collab.Excursions == nil {
		return nil, errServiceUnavailable
	}
	limit, _ := args.Int("limit")
	search := model.ExcursionSearch{
		Query: args.String("query"),
		Limit: clampLimit(limit, defaultExcursionLimit, maxExcursionLimit),
	}
	if maxPrice, ok := args.Float("maxPrice"); ok && maxPrice > 0 {
		search.MaxPrice = &maxPrice
	}

	// Fetch the widest page; query and price filters apply locally.
	res, err := d.collab.Excursions.SearchExcursions(ctx, maxExcursionLimit)
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = &model.ExcursionSearchResult{}
	}

	fold := cases.Fold()
	needle := fold.String(search.Query)
	matched := lo.Filter(res.Excursions, func(e model.Excursion, _ int) bool {
		if needle != "" {
			haystack := fold.String(e.Name + " " + e.City + " " + e.Description)
			if !strings.Contains(haystack, needle) {
				return false
			}
		}
		if search.MaxPrice != nil && e.AdultPrice != nil && *e.AdultPrice > *search.MaxPrice {
			return false
		}
		return true
	})
	matched = lo.Subset(matched, 0, uint(search.Limit))

	return &model.ExcursionsPayload{Search: search, Excursions: matched, Fee: res.Fee, Count: len(matched)}, nil
}

// ===================================
// search_flights
// ===================================

func (d *Dispatcher) searchFlights(ctx context.Context, args Args, trip model.TripContext) (any, error) {
	if d.collab.Flights == nil {
		return nil, errServiceUnavailable
	}
	cabin := strings.ToLower(args.String("cabinClass"))
	if !lo.Contains(cabinClasses, cabin) {
		cabin = "economy"
	}
	req := model.FlightSearchRequest{
		Origin:        firstNonEmpty(args.Upper("origin"), strings.ToUpper(strings.TrimSpace(trip.OriginCode))),
		Destination:   firstNonEmpty(args.Upper("destination"), strings.ToUpper(strings.TrimSpace(trip.DestinationCode))),
		DepartureDate: firstNonEmpty(args.Date("departureDate"), model.NormalizeDate(trip.CheckInDate)),
		ReturnDate:    firstNonEmpty(args.Date("returnDate"), model.NormalizeDate(trip.CheckOutDate)),
		CabinClass:    cabin,
		Adults:        args.PositiveInt("adults", trip.Adults, 1),
		Children:      args.NonNegativeInt("children", trip.Children),
		Currency:      firstNonEmpty(args.Currency("currency"), model.NormalizeCurrency(trip.Currency)),
	}
	if !iataPattern.MatchString(req.Origin) || !iataPattern.MatchString(req.Destination) {
		return nil, invalid("origin and destination must be 3-letter IATA codes")
	}
	if req.Origin == req.Destination {
		return nil, invalid("origin and destination must differ")
	}
	if req.DepartureDate == "" {
		return nil, invalid("departureDate is required in YYYY-MM-DD format")
	}
	if req.ReturnDate != "" {
		if _, ok := model.DaysBetween(req.DepartureDate, req.ReturnDate); !ok {
			if args.Date("returnDate") != "" {
				return nil, invalid("returnDate must not be before departureDate")
			}
			// a stale check-out date from the trip context only drops the return leg
			req.ReturnDate = ""
		}
	}

	res, err := d.collab.Flights.SearchFlights(ctx, req)
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = &model.FlightSearchResult{}
	}
	return &model.FlightsPayload{
		Search:   req,
		Currency: res.Currency,
		Offers:   lo.Subset(res.Offers, 0, maxFlightResults),
		Mock:     res.Mock,
	}, nil
}

// ===================================
// quote_insurance
// ===================================

func (d *Dispatcher) quoteInsurance(ctx context.Context, args Args, trip model.TripContext) (any, error) {
	if d.collab.Insurance == nil {
		return nil, errServiceUnavailable
	}
	req := model.InsuranceQuoteRequest{
		StartDate:     firstNonEmpty(args.Date("startDate"), model.NormalizeDate(trip.CheckInDate)),
		EndDate:       firstNonEmpty(args.Date("endDate"), model.NormalizeDate(trip.CheckOutDate)),
		TerritoryCode: args.Upper("territoryCode"),
		RiskCurrency:  args.Currency("riskCurrency"),
		RiskLabel:     args.String("riskLabel"),
		Subrisks:      args.StringSlice("subrisks"),
	}
	if req.StartDate == "" || req.EndDate == "" {
		return nil, invalid("startDate and endDate are required in YYYY-MM-DD format")
	}
	span, ok := model.DaysBetween(req.StartDate, req.EndDate)
	if !ok {
		return nil, invalid("endDate must not be before startDate")
	}
	req.Days = args.PositiveInt("days", span+1)
	if amount, ok := args.Float("riskAmount"); ok && amount > 0 {
		req.RiskAmount = &amount
	}
	req.Travelers = insuranceTravelers(args, trip)

	quote, err := d.collab.Insurance.QuoteInsurance(ctx, req)
	if err != nil {
		return nil, err
	}
	if quote == nil {
		return nil, errors.New("empty insurance quote")
	}
	return &model.InsurancePayload{Search: req, Quote: *quote}, nil
}

func insuranceTravelers(args Args, trip model.TripContext) []model.InsuranceTraveler {
	var travelers []model.InsuranceTraveler
	for i, t := range lo.Subset(args.Objects("travelers"), 0, maxInsuranceTravelers) {
		traveler := model.InsuranceTraveler{
			ID:        fmt.Sprintf("traveler-%d", i+1),
			BirthDate: t.Date("birthDate"),
		}
		if age, ok := t.Int("age"); ok && age >= 0 && age < 130 {
			traveler.Age = age
		}
		travelers = append(travelers, traveler)
	}
	if len(travelers) > 0 {
		return travelers
	}

	count := trip.Adults + trip.Children
	if count <= 0 {
		count = 1
	}
	count = min(count, maxInsuranceTravelers)
	travelers = make([]model.InsuranceTraveler, 0, count)
	for i := 0; i < count; i++ {
		travelers = append(travelers, model.InsuranceTraveler{ID: fmt.Sprintf("traveler-%d", i+1)})
	}
	return travelers
}
