package evidence

import (
	"math"

	"github.com/tanpawarit/tripcomposer/internal/agent/model"
)

// Ledger accumulates priced facts from successful tool results for one orchestration call.
// It is not safe for concurrent use; the loop records results after each round joins.
type Ledger struct {
	evidence model.PriceEvidence
}

func NewLedger() *Ledger {
	return &Ledger{}
}

// Snapshot returns a copy of the accumulated evidence.
func (l *Ledger) Snapshot() model.PriceEvidence {
	return model.PriceEvidence{
		Hotels:     append([]model.HotelEvidence(nil), l.evidence.Hotels...),
		Transfers:  append([]model.TransferEvidence(nil), l.evidence.Transfers...),
		Flights:    append([]model.FlightEvidence(nil), l.evidence.Flights...),
		Excursions: append([]model.ExcursionEvidence(nil), l.evidence.Excursions...),
		Insurance:  append([]model.InsuranceEvidence(nil), l.evidence.Insurance...),
	}
}

// Len is the number of recorded entries.
func (l *Ledger) Len() int { return l.evidence.Len() }

// Record extracts priced facts from a tool result. Failed results and payloads
// without prices are ignored. It returns the number of entries appended.
func (l *Ledger) Record(result model.ToolResult) int {
	if !result.OK || result.Data == nil {
		return 0
	}
	before := l.evidence.Len()
	switch p := result.Data.(type) {
	case *model.HotelsPayload:
		l.recordHotels(p)
	case *model.TransfersPayload:
		l.recordTransfers(p)
	case *model.FlightsPayload:
		l.recordFlights(p)
	case *model.ExcursionsPayload:
		l.recordExcursions(p)
	case *model.InsurancePayload:
		l.recordInsurance(p)
	}
	return l.evidence.Len() - before
}

func (l *Ledger) recordHotels(p *model.HotelsPayload) {
	for _, h := range p.Hotels {
		currency := model.NormalizeCurrency(h.Currency)
		if h.Code == "" || !validAmount(h.MinPrice) || currency == "" {
			continue
		}
		l.evidence.Hotels = append(l.evidence.Hotels, model.HotelEvidence{
			Code:     h.Code,
			Name:     h.Name,
			Price:    h.MinPrice,
			Currency: currency,
		})
	}
}

func (l *Ledger) recordTransfers(p *model.TransfersPayload) {
	for _, t := range p.Transfers {
		currency := model.NormalizeCurrency(t.Currency)
		oneWay, ret := validPtr(t.OneWayPrice), validPtr(t.ReturnPrice)
		if currency == "" || (oneWay == nil && ret == nil) {
			continue
		}
		l.evidence.Transfers = append(l.evidence.Transfers, model.TransferEvidence{
			ID:          t.ID,
			Type:        t.Type,
			VehicleName: t.VehicleName,
			OneWay:      oneWay,
			Return:      ret,
			Currency:    currency,
		})
	}
}

func (l *Ledger) recordFlights(p *model.FlightsPayload) {
	for _, o := range p.Offers {
		currency := model.NormalizeCurrency(o.Currency)
		if currency == "" {
			currency = model.NormalizeCurrency(p.Currency)
		}
		if !validAmount(o.TotalPrice) || currency == "" {
			continue
		}
		origin, destination := p.Search.Origin, p.Search.Destination
		if len(o.Segments) > 0 {
			origin = firstNonEmpty(o.Segments[0].Origin, origin)
			destination = firstNonEmpty(o.Segments[len(o.Segments)-1].Destination, destination)
		}
		l.evidence.Flights = append(l.evidence.Flights, model.FlightEvidence{
			ID:            o.ID,
			TotalPrice:    o.TotalPrice,
			Currency:      currency,
			Origin:        origin,
			Destination:   destination,
			DepartureDate: p.Search.DepartureDate,
			ReturnDate:    p.Search.ReturnDate,
		})
	}
}

func (l *Ledger) recordExcursions(p *model.ExcursionsPayload) {
	for _, e := range p.Excursions {
		currency := model.NormalizeCurrency(e.Currency)
		adult, child := validPtr(e.AdultPrice), validPtr(e.ChildPrice)
		if e.ID == "" || currency == "" || (adult == nil && child == nil) {
			continue
		}
		l.evidence.Excursions = append(l.evidence.Excursions, model.ExcursionEvidence{
			ID:         e.ID,
			Name:       e.Name,
			AdultPrice: adult,
			ChildPrice: child,
			Currency:   currency,
		})
	}
}

func (l *Ledger) recordInsurance(p *model.InsurancePayload) {
	currency := model.NormalizeCurrency(p.Quote.Currency)
	if !validAmount(p.Quote.TotalPremium) || currency == "" {
		return
	}
	s := p.Search
	var risk *float64
	if s.RiskAmount != nil {
		v := *s.RiskAmount
		risk = &v
	}
	l.evidence.Insurance = append(l.evidence.Insurance, model.InsuranceEvidence{
		TotalPremium:  p.Quote.TotalPremium,
		Currency:      currency,
		StartDate:     s.StartDate,
		EndDate:       s.EndDate,
		Days:          s.Days,
		TerritoryCode: s.TerritoryCode,
		RiskAmount:    risk,
		RiskCurrency:  s.RiskCurrency,
		TravelerCount: len(s.Travelers),
	})
}

func validAmount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

func validPtr(v *float64) *float64 {
	if v == nil || !validAmount(*v) {
		return nil
	}
	out := *v
	return &out
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
