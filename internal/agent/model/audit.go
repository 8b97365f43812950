package model

import "time"

type AuditStatus string

const (
	AuditPass AuditStatus = "pass"
	AuditFail AuditStatus = "fail"
)

// Audit issue reason codes.
const (
	ReasonUnverifiedHotelPrice     = "unverified_hotel_price_removed"
	ReasonUnverifiedTransferPrice  = "unverified_transfer_price_removed"
	ReasonUnverifiedFlightPrice    = "unverified_flight_price_removed"
	ReasonUnverifiedExcursionItem  = "unverified_excursion_item_price_removed"
	ReasonExcursionTotalNoEvidence = "excursion_total_without_item_evidence_removed"
	ReasonExcursionTotalMismatch   = "excursion_total_mismatch_with_verified_items_removed"
	ReasonUnverifiedInsurancePrice = "unverified_insurance_price_removed"
	ReasonApproxTotalMismatch      = "approx_total_removed_mismatch_with_verified_prices"
)

// ServiceApproxTotal tags issues raised against an option's approximate total.
const ServiceApproxTotal = "approx_total"

type PriceAuditIssue struct {
	OptionID         string   `json:"optionId"`
	Service          string   `json:"service"`
	Reason           string   `json:"reason"`
	ProvidedAmount   *float64 `json:"providedAmount"`
	ProvidedCurrency *string  `json:"providedCurrency"`
}

type PriceAudit struct {
	Status    AuditStatus       `json:"status"`
	Issues    []PriceAuditIssue `json:"issues"`
	CheckedAt time.Time         `json:"checkedAt"`
}
