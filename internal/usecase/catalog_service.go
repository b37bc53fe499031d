package usecase

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"printshop-backend/internal/domain"
)

type CatalogRepo interface {
	ListActive(ctx context.Context) ([]domain.ServiceOption, error)
	Upsert(ctx context.Context, opt *domain.ServiceOption) error
	Deactivate(ctx context.Context, id string) error
}

type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

const catalogCacheKey = "printshop:catalog:active"

// CatalogService serves catalog snapshots to the quoting and ordering flows
// and owns staff pricing management. The cache is optional; all cache
// failures fall through to the repository.
type CatalogService struct {
	Repo     CatalogRepo
	Cache    Cache
	CacheTTL time.Duration
	Logger   *zap.Logger
}

func (s *CatalogService) ListActive(ctx context.Context) ([]domain.ServiceOption, error) {
	if s.Cache != nil {
		if raw, err := s.Cache.Get(ctx, catalogCacheKey); err == nil && raw != "" {
			var opts []domain.ServiceOption
			if err := json.Unmarshal([]byte(raw), &opts); err == nil {
				return opts, nil
			}
		}
	}
	opts, err := s.Repo.ListActive(ctx)
	if err != nil {
		return nil, upstream("list catalog", err)
	}
	if s.Cache != nil {
		if raw, err := json.Marshal(opts); err == nil {
			if err := s.Cache.Set(ctx, catalogCacheKey, string(raw), s.CacheTTL); err != nil {
				s.Logger.Warn("catalog cache write failed", zap.Error(err))
			}
		}
	}
	return opts, nil
}

func (s *CatalogService) Upsert(ctx context.Context, opt *domain.ServiceOption) error {
	if opt.ID == "" {
		return ValidationError("service option id required")
	}
	if opt.Name == "" {
		return ValidationError("service option name required")
	}
	if opt.UnitPrice < 0 {
		return ValidationError("unit price must not be negative")
	}
	switch opt.Category {
	case domain.CategoryPaper, domain.CategoryFinishing, domain.CategorySizeAddon, domain.CategoryColorAddon:
	default:
		return ValidationError("unknown category " + string(opt.Category))
	}
	if err := s.Repo.Upsert(ctx, opt); err != nil {
		return upstream("upsert service option", err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) Deactivate(ctx context.Context, id string) error {
	if err := s.Repo.Deactivate(ctx, id); err != nil {
		return upstream("deactivate service option", err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Del(ctx, catalogCacheKey); err != nil {
		s.Logger.Warn("catalog cache invalidation failed", zap.Error(err))
	}
}
