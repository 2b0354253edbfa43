package repository

import (
	"context"

	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/models"
	domrepo "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/repository"
)

// EmptySentimentSource backs a sentiment kind that has no configured backend.
// Every asset summarizes to the neutral default.
type EmptySentimentSource struct{}

var _ domrepo.SentimentSource = EmptySentimentSource{}

func (EmptySentimentSource) FetchSentimentItems(context.Context, string) ([]models.SentimentItem, error) {
	return nil, nil
}
