package repository

import (
	"context"
	"fmt"

	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/domain"
)

// ListPromotions returns promotions newest first by createdAt.
func (r *Repository) ListPromotions(ctx context.Context) ([]domain.PromotionRecord, error) {
	docs, err := r.Promotions.ListByCreated(ctx)
	if err != nil {
		return nil, fmt.Errorf("list promotions: %w", err)
	}
	out := make([]domain.PromotionRecord, len(docs))
	for i, doc := range docs {
		out[i] = domain.PromotionFromDocument(doc)
	}
	return out, nil
}

// GetArticle fetches one article by id.
func (r *Repository) GetArticle(ctx context.Context, id string) (domain.ArticleRecord, error) {
	doc, err := r.Articles.GetByID(ctx, id)
	if err != nil {
		return domain.ArticleRecord{}, err
	}
	return domain.ArticleFromDocument(doc), nil
}
