package repo

import (
	"context"
	"sort"
	"sync"

	"printshop-backend/internal/domain"
)

// Memory repos back tests and dev mode. They store copies so callers never
// alias persisted state.

type MemoryOrderRepo struct {
	mu sync.RWMutex
	m  map[string]*domain.Order
}

func NewMemoryOrderRepo() *MemoryOrderRepo {
	return &MemoryOrderRepo{m: make(map[string]*domain.Order)}
}

func (r *MemoryOrderRepo) Put(_ context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *o
	cp.Items = append([]domain.OrderLineItem(nil), o.Items...)
	r.m[o.OrderID] = &cp
	return nil
}

func (r *MemoryOrderRepo) Get(_ context.Context, id string) (*domain.Order, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.m[id]
	if !ok {
		return nil, false, nil
	}
	cp := *o
	cp.Items = append([]domain.OrderLineItem(nil), o.Items...)
	return &cp, true, nil
}

func (r *MemoryOrderRepo) List(_ context.Context, page, pageSize int) ([]domain.Order, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]domain.Order, 0, len(r.m))
	for _, o := range r.m {
		all = append(all, *o)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := len(all)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (r *MemoryOrderRepo) ListByCustomer(_ context.Context, customerID string) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Order
	for _, o := range r.m {
		if o.CustomerID == customerID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryOrderRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, id)
	return nil
}

type MemoryPaymentRepo struct {
	mu sync.RWMutex
	m  map[string]*domain.PaymentAttempt
}

func NewMemoryPaymentRepo() *MemoryPaymentRepo {
	return &MemoryPaymentRepo{m: make(map[string]*domain.PaymentAttempt)}
}

func (r *MemoryPaymentRepo) Append(_ context.Context, a *domain.PaymentAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.m[a.AttemptID] = &cp
	return nil
}

func (r *MemoryPaymentRepo) Get(_ context.Context, id string) (*domain.PaymentAttempt, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.m[id]
	if !ok {
		return nil, false, nil
	}
	cp := *a
	return &cp, true, nil
}

func (r *MemoryPaymentRepo) ListByOrder(_ context.Context, orderID string) ([]domain.PaymentAttempt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.PaymentAttempt
	for _, a := range r.m {
		if a.OrderID == orderID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out, nil
}

func (r *MemoryPaymentRepo) Update(_ context.Context, a *domain.PaymentAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.m[a.AttemptID] = &cp
	return nil
}

type MemoryCatalogRepo struct {
	mu sync.RWMutex
	m  map[string]*domain.ServiceOption
}

func NewMemoryCatalogRepo() *MemoryCatalogRepo {
	return &MemoryCatalogRepo{m: make(map[string]*domain.ServiceOption)}
}

func (r *MemoryCatalogRepo) ListActive(_ context.Context) ([]domain.ServiceOption, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.ServiceOption
	for _, opt := range r.m {
		if opt.Active {
			out = append(out, *opt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UnitPrice < out[j].UnitPrice })
	return out, nil
}

func (r *MemoryCatalogRepo) Upsert(_ context.Context, opt *domain.ServiceOption) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *opt
	r.m[opt.ID] = &cp
	return nil
}

func (r *MemoryCatalogRepo) Deactivate(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if opt, ok := r.m[id]; ok {
		opt.Active = false
	}
	return nil
}
