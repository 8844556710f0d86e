// Package memory is an in-process Repository for tests and local
// development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/michaelprosario/career-catalyst/internal/errors"
	"github.com/michaelprosario/career-catalyst/internal/models"
	"github.com/michaelprosario/career-catalyst/internal/repository"
)

type Repository struct {
	mu      sync.RWMutex
	records map[string]*models.UserOpportunity
	now     func() time.Time
}

type Option func(*Repository)

func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		r.now = now
	}
}

func New(opts ...Option) *Repository {
	r := &Repository{
		records: make(map[string]*models.UserOpportunity),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ repository.Repository = (*Repository)(nil)

func (r *Repository) GetByID(ctx context.Context, id string) (*models.UserOpportunity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.records[id]
	if !ok {
		return nil, nil
	}
	return o.Clone(), nil
}

func (r *Repository) GetByUserID(ctx context.Context, userID string) ([]*models.UserOpportunity, error) {
	return r.filter(ctx, func(o *models.UserOpportunity) bool {
		return o.UserID == userID
	})
}

func (r *Repository) GetByUserAndStatus(ctx context.Context, userID string, status models.ApplicationStatus) ([]*models.UserOpportunity, error) {
	return r.filter(ctx, func(o *models.UserOpportunity) bool {
		return o.UserID == userID && o.ApplicationStatus == status
	})
}

func (r *Repository) GetByType(ctx context.Context, t models.OpportunityType) ([]*models.UserOpportunity, error) {
	return r.filter(ctx, func(o *models.UserOpportunity) bool {
		return o.Type == t
	})
}

func (r *Repository) GetActive(ctx context.Context) ([]*models.UserOpportunity, error) {
	now := r.now()
	return r.filter(ctx, func(o *models.UserOpportunity) bool {
		return o.IsActive(now)
	})
}

func (r *Repository) Search(ctx context.Context, criteria repository.SearchCriteria) ([]*models.UserOpportunity, error) {
	return r.filter(ctx, func(o *models.UserOpportunity) bool {
		return repository.Matches(criteria, o)
	})
}

func (r *Repository) Save(ctx context.Context, o *models.UserOpportunity) (*models.UserOpportunity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if o == nil {
		return nil, errors.InvalidInput("user opportunity cannot be nil", nil)
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[o.ID]; exists {
		return nil, errors.DuplicateKey(fmt.Sprintf("user opportunity with ID %s already exists", o.ID), nil)
	}
	if r.listingTakenLocked(o) {
		return nil, errors.DuplicateKey("user opportunity with the same title and company already exists for this user", nil)
	}

	r.records[o.ID] = o.Clone()
	return o.Clone(), nil
}

func (r *Repository) Update(ctx context.Context, o *models.UserOpportunity) (*models.UserOpportunity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if o == nil {
		return nil, errors.InvalidInput("user opportunity cannot be nil", nil)
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[o.ID]; !exists {
		return nil, errors.NotFound(fmt.Sprintf("User opportunity with ID %s not found", o.ID), nil)
	}
	if r.listingTakenLocked(o) {
		return nil, errors.DuplicateKey("user opportunity with the same title and company already exists for this user", nil)
	}

	r.records[o.ID] = o.Clone()
	return o.Clone(), nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[id]; !exists {
		return errors.NotFound(fmt.Sprintf("User opportunity with ID %s not found", id), nil)
	}
	delete(r.records, id)
	return nil
}

// listingTakenLocked mirrors the unique (user_id, title, company) index of
// the persistent backends. Caller holds r.mu.
func (r *Repository) listingTakenLocked(o *models.UserOpportunity) bool {
	for id, existing := range r.records {
		if id != o.ID && existing.SameListing(o) {
			return true
		}
	}
	return false
}

func (r *Repository) filter(ctx context.Context, keep func(*models.UserOpportunity) bool) ([]*models.UserOpportunity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.UserOpportunity, 0)
	for _, o := range r.records {
		if keep(o) {
			out = append(out, o.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
