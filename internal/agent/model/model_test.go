package model

import (
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
)

func TestUsageAdd(t *testing.T) {
	var u Usage
	cost := u.Add(&schema.TokenUsage{PromptTokens: 1_000_000, CompletionTokens: 1_000_000, TotalTokens: 2_000_000}, "gemini-2.5-flash")

	assert.InDelta(t, 2.80, cost, 1e-9)
	assert.Equal(t, 2_000_000, u.TotalTokens)
	assert.InDelta(t, 2.80, u.CostUSD, 1e-9)

	assert.Zero(t, u.Add(nil, "gemini-2.5-flash"))
	assert.Zero(t, u.Add(&schema.TokenUsage{PromptTokens: 10}, "unknown-model"))
	assert.Equal(t, 1_000_010, u.PromptTokens)
}

func TestServiceFlagsEnabled(t *testing.T) {
	flags := AllServicesEnabled()
	flags.Flight = false

	assert.True(t, flags.Enabled(ServiceHotel))
	assert.False(t, flags.Enabled(ServiceFlight))
	assert.True(t, flags.Enabled("spa"))
}

func TestPackageDraftHasSelection(t *testing.T) {
	assert.False(t, PackageDraft{}.HasSelection())
	assert.False(t, PackageDraft{Hotel: &HotelDraft{}}.HasSelection())
	assert.True(t, PackageDraft{Hotel: &HotelDraft{}, Flight: &FlightDraft{Selected: true}}.HasSelection())
	assert.Equal(t, []string{ServiceHotel, ServiceFlight}, PackageDraft{Hotel: &HotelDraft{}, Flight: &FlightDraft{}}.Services())
}

func TestNormalizeDate(t *testing.T) {
	assert.Equal(t, "2026-02-28", NormalizeDate(" 2026-02-28 "))
	assert.Equal(t, "", NormalizeDate("2026-02-30"))
	assert.Equal(t, "", NormalizeDate("2026-2-28"))
	assert.Equal(t, "", NormalizeDate("28.02.2026"))
}

func TestNormalizeCurrency(t *testing.T) {
	assert.Equal(t, "USD", NormalizeCurrency(" usd "))
	assert.Equal(t, "", NormalizeCurrency("US$"))
	assert.Equal(t, "", NormalizeCurrency("EURO"))
	assert.True(t, IsCurrencyCode("AZN"))
	assert.False(t, IsCurrencyCode("azn"))
}

func TestDaysBetween(t *testing.T) {
	d, ok := DaysBetween("2026-07-01", "2026-07-08")
	assert.True(t, ok)
	assert.Equal(t, 7, d)

	_, ok = DaysBetween("2026-07-08", "2026-07-01")
	assert.False(t, ok)
}
