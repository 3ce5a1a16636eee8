package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSideOf(t *testing.T) {
	m := &Match{FounderID: "f1", BuilderID: "b1"}

	assert.Equal(t, "founder", m.SideOf("f1"))
	assert.Equal(t, "builder", m.SideOf("b1"))
	assert.Equal(t, "", m.SideOf("someone-else"))
}

func TestValidAction(t *testing.T) {
	assert.True(t, ValidAction(ActionLike))
	assert.True(t, ValidAction(ActionSkip))
	assert.True(t, ValidAction(ActionSave))
	assert.False(t, ValidAction(MatchAction("POKE")))
	assert.False(t, ValidAction(MatchAction("")))
}

func TestBuilderSnapshot_PaidOnly(t *testing.T) {
	b := &BuilderSnapshot{CompOpenness: []CompOpenness{CompPaidOnly}}
	assert.True(t, b.PaidOnly())

	b.CompOpenness = append(b.CompOpenness, CompEquityStipend)
	assert.False(t, b.PaidOnly(), "any other openness disarms the deal-breaker")

	b.CompOpenness = nil
	assert.False(t, b.PaidOnly())
}

func TestOpeningSnapshot_OfferClass(t *testing.T) {
	equityOnly := &OpeningSnapshot{EquityMax: 5, CashMax: 0}
	assert.True(t, equityOnly.OffersEquityOnly())
	assert.False(t, equityOnly.OffersCashOnly())

	cashOnly := &OpeningSnapshot{EquityMax: 0, CashMax: 4000}
	assert.False(t, cashOnly.OffersEquityOnly())
	assert.True(t, cashOnly.OffersCashOnly())

	mixed := &OpeningSnapshot{EquityMax: 2, CashMax: 1000}
	assert.False(t, mixed.OffersEquityOnly())
	assert.False(t, mixed.OffersCashOnly())
}
