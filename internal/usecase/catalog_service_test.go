package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"printshop-backend/internal/domain"
	"printshop-backend/internal/infrastructure/repo"
)

type fakeCache struct {
	m    map[string]string
	sets int
	dels int
}

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	return c.m[key], nil
}

func (c *fakeCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.m[key] = value
	c.sets++
	return nil
}

func (c *fakeCache) Del(_ context.Context, key string) error {
	delete(c.m, key)
	c.dels++
	return nil
}

func newCatalogService() (*CatalogService, *fakeCache) {
	c := &fakeCache{m: map[string]string{}}
	return &CatalogService{
		Repo:     repo.NewMemoryCatalogRepo(),
		Cache:    c,
		CacheTTL: time.Minute,
		Logger:   zap.NewNop(),
	}, c
}

func TestCatalogUpsertAndList(t *testing.T) {
	svc, _ := newCatalogService()
	ctx := context.Background()

	require.NoError(t, svc.Upsert(ctx, &domain.ServiceOption{ID: "svc-a4", Name: "Standard A4", Category: domain.CategoryPaper, UnitPrice: 500, Active: true}))
	require.NoError(t, svc.Upsert(ctx, &domain.ServiceOption{ID: "svc-color", Name: "Color", Category: domain.CategoryColorAddon, UnitPrice: 1000, Active: true}))

	opts, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, opts, 2)
	// Cheapest first, matching the ordering the shop pages rely on.
	assert.Equal(t, "svc-a4", opts[0].ID)
}

func TestCatalogValidation(t *testing.T) {
	svc, _ := newCatalogService()
	ctx := context.Background()
	var verr ValidationError

	err := svc.Upsert(ctx, &domain.ServiceOption{Name: "no id", Category: domain.CategoryPaper})
	require.ErrorAs(t, err, &verr)

	err = svc.Upsert(ctx, &domain.ServiceOption{ID: "x", Name: "bad cat", Category: "lamination?"})
	require.ErrorAs(t, err, &verr)

	err = svc.Upsert(ctx, &domain.ServiceOption{ID: "x", Name: "neg", Category: domain.CategoryPaper, UnitPrice: -5})
	require.ErrorAs(t, err, &verr)
}

func TestCatalogCaching(t *testing.T) {
	svc, c := newCatalogService()
	ctx := context.Background()

	require.NoError(t, svc.Upsert(ctx, &domain.ServiceOption{ID: "svc-a4", Name: "Standard A4", Category: domain.CategoryPaper, UnitPrice: 500, Active: true}))

	_, err := svc.ListActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, c.sets)

	// Second read is served from cache; no new write happens.
	_, err = svc.ListActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, c.sets)

	// A catalog write invalidates the snapshot.
	require.NoError(t, svc.Deactivate(ctx, "svc-a4"))
	assert.GreaterOrEqual(t, c.dels, 2)

	opts, err := svc.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, opts)
}

func TestCatalogWithoutCache(t *testing.T) {
	svc := &CatalogService{Repo: repo.NewMemoryCatalogRepo(), Logger: zap.NewNop()}
	ctx := context.Background()

	require.NoError(t, svc.Upsert(ctx, &domain.ServiceOption{ID: "svc-a4", Name: "Standard A4", Category: domain.CategoryPaper, UnitPrice: 500, Active: true}))
	opts, err := svc.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, opts, 1)
}
