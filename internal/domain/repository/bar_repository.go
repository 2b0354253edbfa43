package repository

import (
	"context"

	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/models"
)

// BarOrder selects the ordering of bars returned by a BarRepository.
type BarOrder string

const (
	NewestFirst BarOrder = "newest"
	OldestFirst BarOrder = "oldest"
)

// ParseBarOrder returns NewestFirst for anything other than "oldest".
func ParseBarOrder(s string) BarOrder {
	if BarOrder(s) == OldestFirst {
		return OldestFirst
	}
	return NewestFirst
}

// BarRepository returns up to count most recent bars for a symbol.
// Returning fewer than count bars is not an error.
type BarRepository interface {
	FetchBars(ctx context.Context, symbol string, count int, order BarOrder) ([]models.Bar, error)
}
