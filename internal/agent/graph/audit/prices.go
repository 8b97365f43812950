package audit

import (
	"time"

	"github.com/tanpawarit/tripcomposer/internal/agent/model"
)

// AuditPrices reconciles every priced field of every option against the evidence ledger.
// Unverifiable amounts are nulled and reported; descriptive fields are never touched.
// The input reply is not modified, and auditing the output again yields no new issues.
func AuditPrices(reply model.AssistantReply, ev model.PriceEvidence) (model.AssistantReply, model.PriceAudit) {
	out := cloneReply(reply)
	a := &auditor{ev: ev, issues: []model.PriceAuditIssue{}}
	for i := range out.PackageOptions {
		a.auditOption(&out.PackageOptions[i])
	}

	status := model.AuditPass
	if len(a.issues) > 0 {
		status = model.AuditFail
	}
	return out, model.PriceAudit{
		Status:    status,
		Issues:    a.issues,
		CheckedAt: time.Now().UTC(),
	}
}

type auditor struct {
	ev     model.PriceEvidence
	issues []model.PriceAuditIssue
}

// verifiedTotals sums verified amounts per currency within one option.
type verifiedTotals map[string]float64

func (v verifiedTotals) add(amount float64, currency string) {
	v[model.NormalizeCurrency(currency)] += amount
}

func (a *auditor) reject(optionID, service, reason string, amount *float64, currency *string) {
	issue := model.PriceAuditIssue{OptionID: optionID, Service: service, Reason: reason}
	if amount != nil {
		v := *amount
		issue.ProvidedAmount = &v
	}
	if currency != nil {
		c := *currency
		issue.ProvidedCurrency = &c
	}
	a.issues = append(a.issues, issue)
}

func (a *auditor) auditOption(opt *model.PackageOption) {
	verified := verifiedTotals{}
	d := &opt.Draft

	if h := d.Hotel; h != nil && h.Price != nil {
		ok := false
		for _, c := range hotelCandidates(h, a.ev.Hotels) {
			if priceAgrees(*h.Price, str(h.Currency), c.Price, c.Currency) {
				ok = true
				break
			}
		}
		if ok {
			verified.add(*h.Price, *h.Currency)
		} else {
			a.reject(opt.ID, model.ServiceHotel, model.ReasonUnverifiedHotelPrice, h.Price, h.Currency)
			h.Price, h.Currency = nil, nil
		}
	}

	if t := d.Transfer; t != nil && t.Price != nil {
		ok := false
		for _, c := range transferCandidates(t, a.ev.Transfers) {
			if (c.OneWay != nil && priceAgrees(*t.Price, str(t.Currency), *c.OneWay, c.Currency)) ||
				(c.Return != nil && priceAgrees(*t.Price, str(t.Currency), *c.Return, c.Currency)) {
				ok = true
				break
			}
		}
		if ok {
			verified.add(*t.Price, *t.Currency)
		} else {
			a.reject(opt.ID, model.ServiceTransfer, model.ReasonUnverifiedTransferPrice, t.Price, t.Currency)
			t.Price, t.Currency = nil, nil
		}
	}

	if f := d.Flight; f != nil && f.Price != nil {
		ok := false
		for _, c := range flightCandidates(f, a.ev.Flights) {
			if priceAgrees(*f.Price, str(f.Currency), c.TotalPrice, c.Currency) {
				ok = true
				break
			}
		}
		if ok {
			verified.add(*f.Price, *f.Currency)
		} else {
			a.reject(opt.ID, model.ServiceFlight, model.ReasonUnverifiedFlightPrice, f.Price, f.Currency)
			f.Price, f.Currency = nil, nil
		}
	}

	if e := d.Excursion; e != nil {
		a.auditExcursion(opt.ID, e, verified)
	}

	if in := d.Insurance; in != nil && in.Price != nil {
		ok := false
		if q, found := closestInsurance(in, a.ev.Insurance); found {
			ok = priceAgrees(*in.Price, str(in.Currency), q.TotalPremium, q.Currency)
		}
		if ok {
			verified.add(*in.Price, *in.Currency)
		} else {
			a.reject(opt.ID, model.ServiceInsurance, model.ReasonUnverifiedInsurancePrice, in.Price, in.Currency)
			in.Price, in.Currency = nil, nil
		}
	}

	if total := &opt.ApproxTotal; total.Amount != nil {
		currency := model.NormalizeCurrency(str(total.Currency))
		sum, found := verified[currency]
		if currency == "" || !found || !AmountsClose(*total.Amount, sum) {
			a.reject(opt.ID, model.ServiceApproxTotal, model.ReasonApproxTotalMismatch, total.Amount, total.Currency)
			total.Amount = nil
		}
	}
}

// auditExcursion verifies each item, then the total against the verified items.
// A verified total contributes to the option sum; otherwise the verified items do.
func (a *auditor) auditExcursion(optionID string, e *model.ExcursionDraft, verified verifiedTotals) {
	items := verifiedTotals{}
	for i := range e.Items {
		item := &e.Items[i]
		if item.Price == nil {
			continue
		}
		currency := item.Currency
		if currency == nil {
			currency = e.Currency
		}
		ok := false
		for _, c := range excursionCandidates(*item, a.ev.Excursions) {
			if (c.AdultPrice != nil && priceAgrees(*item.Price, str(currency), *c.AdultPrice, c.Currency)) ||
				(c.ChildPrice != nil && priceAgrees(*item.Price, str(currency), *c.ChildPrice, c.Currency)) {
				ok = true
				break
			}
		}
		if ok {
			items.add(*item.Price, *currency)
		} else {
			a.reject(optionID, model.ServiceExcursion, model.ReasonUnverifiedExcursionItem, item.Price, currency)
			item.Price, item.Currency = nil, nil
		}
	}

	if e.Total == nil {
		for currency, amount := range items {
			verified[currency] += amount
		}
		return
	}
	if len(items) == 0 {
		a.reject(optionID, model.ServiceExcursion, model.ReasonExcursionTotalNoEvidence, e.Total, e.Currency)
		e.Total = nil
		return
	}
	currency := model.NormalizeCurrency(str(e.Currency))
	sum, found := items[currency]
	if currency == "" || !found || !AmountsClose(*e.Total, sum) {
		a.reject(optionID, model.ServiceExcursion, model.ReasonExcursionTotalMismatch, e.Total, e.Currency)
		e.Total = nil
		for c, amount := range items {
			verified[c] += amount
		}
		return
	}
	verified.add(*e.Total, currency)
}
