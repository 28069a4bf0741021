package search

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/pkg/logging"
)

type Store interface {
	SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error)
	ProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

// Service queries the index when one is configured and falls back to SQL
// when it is absent or failing.
type Service struct {
	Index Index
	Store Store
}

func (s *Service) Search(ctx context.Context, rawQ string, offset, limit int) (int64, []models.Product, error) {
	q := strings.TrimSpace(rawQ)
	if q == "" {
		return 0, []models.Product{}, nil
	}

	if s.Index != nil {
		total, ids, err := s.Index.SearchIDs(ctx, q, offset, limit)
		if err == nil {
			items, err := s.Store.ProductsByIDs(ctx, ids)
			if err != nil {
				return 0, nil, err
			}
			return total, activeOnly(items), nil
		}
		logging.FromContext(ctx).Warn("search_index_error", "reason", "falling back to sql", "error", err)
	}

	return s.Store.SearchProducts(ctx, q, offset, limit)
}

// Reindex pushes p to the index. Best effort.
func (s *Service) Reindex(ctx context.Context, p *models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("search_index_error", "product_id", p.ID, "error", err)
	}
}

func activeOnly(items []models.Product) []models.Product {
	out := items[:0]
	for _, p := range items {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out
}
