package audit

import (
	"math"
	"strings"

	"golang.org/x/text/cases"

	"github.com/tanpawarit/tripcomposer/internal/agent/model"
)

// AmountsClose reports |a-b| <= max(3, |b|*3%).
func AmountsClose(a, b float64) bool {
	return math.Abs(a-b) <= math.Max(3, math.Abs(b)*0.03)
}

func sameCurrency(a, b string) bool {
	na, nb := model.NormalizeCurrency(a), model.NormalizeCurrency(b)
	return na != "" && na == nb
}

// priceAgrees checks a claimed price against an evidence amount.
func priceAgrees(price float64, currency string, evAmount float64, evCurrency string) bool {
	return sameCurrency(currency, evCurrency) && AmountsClose(price, evAmount)
}

func foldKey(s string) string {
	return cases.Fold().String(strings.Join(strings.Fields(s), " "))
}

// fuzzyNameMatch compares case and whitespace normalized names by substring in either direction.
func fuzzyNameMatch(claimed, evidence string) bool {
	a, b := foldKey(claimed), foldKey(evidence)
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func sameID(claimed *string, evidence string) bool {
	return claimed != nil && evidence != "" && strings.TrimSpace(*claimed) == strings.TrimSpace(evidence)
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func hotelCandidates(d *model.HotelDraft, ev []model.HotelEvidence) []model.HotelEvidence {
	if d.HotelCode != nil {
		code := foldKey(*d.HotelCode)
		var byCode []model.HotelEvidence
		for _, h := range ev {
			if foldKey(h.Code) == code {
				byCode = append(byCode, h)
			}
		}
		if len(byCode) > 0 {
			return byCode
		}
	}
	var byName []model.HotelEvidence
	for _, h := range ev {
		if fuzzyNameMatch(str(d.HotelName), h.Name) {
			byName = append(byName, h)
		}
	}
	return byName
}

func transferCandidates(d *model.TransferDraft, ev []model.TransferEvidence) []model.TransferEvidence {
	var byID []model.TransferEvidence
	for _, t := range ev {
		if sameID(d.SelectionID, t.ID) {
			byID = append(byID, t)
		}
	}
	if len(byID) > 0 {
		return byID
	}
	var byName []model.TransferEvidence
	for _, t := range ev {
		if fuzzyNameMatch(str(d.VehicleName), t.VehicleName) {
			byName = append(byName, t)
		}
	}
	return byName
}

func flightCandidates(d *model.FlightDraft, ev []model.FlightEvidence) []model.FlightEvidence {
	var byID []model.FlightEvidence
	for _, f := range ev {
		if sameID(d.SelectionID, f.ID) {
			byID = append(byID, f)
		}
	}
	if len(byID) > 0 {
		return byID
	}
	if d.Origin == nil || d.Destination == nil || d.DepartureDate == nil {
		return nil
	}
	var byRoute []model.FlightEvidence
	for _, f := range ev {
		if strings.EqualFold(*d.Origin, f.Origin) &&
			strings.EqualFold(*d.Destination, f.Destination) &&
			*d.DepartureDate == f.DepartureDate {
			byRoute = append(byRoute, f)
		}
	}
	return byRoute
}

func excursionCandidates(item model.ExcursionItem, ev []model.ExcursionEvidence) []model.ExcursionEvidence {
	var out []model.ExcursionEvidence
	for _, e := range ev {
		if sameID(item.ID, e.ID) {
			out = append(out, e)
		}
	}
	return out
}

// closestInsurance scores each quote on the coverage terms and returns the best one.
// Ties resolve to the earliest entry, so no signal at all selects the first quote.
func closestInsurance(d *model.InsuranceDraft, ev []model.InsuranceEvidence) (model.InsuranceEvidence, bool) {
	if len(ev) == 0 {
		return model.InsuranceEvidence{}, false
	}
	best, bestScore := 0, -1
	for i, q := range ev {
		score := 0
		if d.StartDate != nil && *d.StartDate == q.StartDate {
			score++
		}
		if d.EndDate != nil && *d.EndDate == q.EndDate {
			score++
		}
		if d.Days != nil && *d.Days == q.Days {
			score++
		}
		if d.RiskAmount != nil && q.RiskAmount != nil && AmountsClose(*d.RiskAmount, *q.RiskAmount) {
			score++
		}
		if d.RiskCurrency != nil && sameCurrency(*d.RiskCurrency, q.RiskCurrency) {
			score++
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return ev[best], true
}
