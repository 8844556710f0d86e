// Package postgres stores user opportunities in a PostgreSQL table through
// GORM.
package postgres

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/michaelprosario/career-catalyst/common/telemetry"
	"github.com/michaelprosario/career-catalyst/internal/errors"
	"github.com/michaelprosario/career-catalyst/internal/models"
	"github.com/michaelprosario/career-catalyst/internal/repository"
)

var tracer = telemetry.GetTracer("career-catalyst/repository/postgres")

type Repository struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

type Option func(*Repository)

func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		r.now = now
	}
}

func New(db *gorm.DB, logger *zap.Logger, opts ...Option) *Repository {
	r := &Repository{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ repository.Repository = (*Repository)(nil)

// Migrate creates or alters the table and its indexes.
func (r *Repository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&record{}); err != nil {
		return errors.Internal("migrating user_opportunities table", err)
	}
	r.logger.Info("migrated user_opportunities table")
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*models.UserOpportunity, error) {
	ctx, span := tracer.Start(ctx, "GetByID")
	defer span.End()
	span.SetAttributes(telemetry.String("opportunity.id", id))

	var rec record
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&rec).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		telemetry.Fail(span, err)
		return nil, errors.Internal("finding user opportunity", err)
	}
	o, err := rec.toModel()
	if err != nil {
		return nil, errors.Internal(fmt.Sprintf("decoding user opportunity %s", id), err)
	}
	return o, nil
}

func (r *Repository) GetByUserID(ctx context.Context, userID string) ([]*models.UserOpportunity, error) {
	return r.find(ctx, "GetByUserID", func(q *gorm.DB) *gorm.DB {
		return q.Where("user_id = ?", userID)
	})
}

func (r *Repository) GetByUserAndStatus(ctx context.Context, userID string, status models.ApplicationStatus) ([]*models.UserOpportunity, error) {
	return r.find(ctx, "GetByUserAndStatus", func(q *gorm.DB) *gorm.DB {
		return q.Where("user_id = ? AND application_status = ?", userID, string(status))
	})
}

func (r *Repository) GetByType(ctx context.Context, t models.OpportunityType) ([]*models.UserOpportunity, error) {
	return r.find(ctx, "GetByType", func(q *gorm.DB) *gorm.DB {
		return q.Where("type = ?", string(t))
	})
}

func (r *Repository) GetActive(ctx context.Context) ([]*models.UserOpportunity, error) {
	now := r.now()
	return r.find(ctx, "GetActive", func(q *gorm.DB) *gorm.DB {
		return q.Where("status = ? AND (expires_at IS NULL OR expires_at > ?)", string(models.OpportunityStatusActive), now)
	})
}

func (r *Repository) Search(ctx context.Context, c repository.SearchCriteria) ([]*models.UserOpportunity, error) {
	return r.find(ctx, "Search", func(q *gorm.DB) *gorm.DB {
		if c.Keywords != "" {
			p := likePattern(c.Keywords)
			q = q.Where("(title ILIKE ? OR company ILIKE ? OR description ILIKE ?)", p, p, p)
		}
		if c.UserID != "" {
			q = q.Where("user_id = ?", c.UserID)
		}
		if c.Type != "" {
			q = q.Where("type = ?", string(c.Type))
		}
		if c.Location != "" {
			q = q.Where("location ILIKE ?", likePattern(c.Location))
		}
		if c.IsRemote != nil {
			q = q.Where("is_remote = ?", *c.IsRemote)
		}
		if c.ApplicationStatus != "" {
			q = q.Where("application_status = ?", string(c.ApplicationStatus))
		}
		return q
	})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps s for a substring ILIKE with wildcards escaped.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func (r *Repository) find(ctx context.Context, op string, scope func(*gorm.DB) *gorm.DB) ([]*models.UserOpportunity, error) {
	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	var recs []record
	err := scope(r.db.WithContext(ctx).Model(&record{})).
		Order("created_at DESC").
		Order("id ASC").
		Find(&recs).Error
	if err != nil {
		telemetry.Fail(span, err)
		return nil, errors.Internal("querying user opportunities", err)
	}

	out := make([]*models.UserOpportunity, 0, len(recs))
	for _, rec := range recs {
		o, err := rec.toModel()
		if err != nil {
			telemetry.Fail(span, err)
			return nil, errors.Internal(fmt.Sprintf("decoding user opportunity %s", rec.ID), err)
		}
		out = append(out, o)
	}
	span.SetAttributes(telemetry.Int("result.count", len(out)))
	return out, nil
}

func (r *Repository) Save(ctx context.Context, o *models.UserOpportunity) (*models.UserOpportunity, error) {
	ctx, span := tracer.Start(ctx, "Save")
	defer span.End()

	if o == nil {
		return nil, errors.InvalidInput("user opportunity cannot be nil", nil)
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	span.SetAttributes(telemetry.String("opportunity.id", o.ID))

	rec := toRecord(o)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.DuplicateKey("user opportunity already exists", err)
		}
		telemetry.Fail(span, err)
		return nil, errors.Internal("inserting user opportunity", err)
	}
	return o.Clone(), nil
}

func (r *Repository) Update(ctx context.Context, o *models.UserOpportunity) (*models.UserOpportunity, error) {
	ctx, span := tracer.Start(ctx, "Update")
	defer span.End()

	if o == nil {
		return nil, errors.InvalidInput("user opportunity cannot be nil", nil)
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	span.SetAttributes(telemetry.String("opportunity.id", o.ID))

	rec := toRecord(o)
	res := r.db.WithContext(ctx).
		Model(&record{}).
		Where("id = ?", o.ID).
		Select("*").
		Omit("id").
		Updates(&rec)
	if res.Error != nil {
		if stderrors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return nil, errors.DuplicateKey("user opportunity with the same title and company already exists for this user", res.Error)
		}
		telemetry.Fail(span, res.Error)
		return nil, errors.Internal("updating user opportunity", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, errors.NotFound(fmt.Sprintf("User opportunity with ID %s not found", o.ID), nil)
	}
	return o.Clone(), nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Delete")
	defer span.End()
	span.SetAttributes(telemetry.String("opportunity.id", id))

	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&record{})
	if res.Error != nil {
		telemetry.Fail(span, res.Error)
		return errors.Internal("deleting user opportunity", res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.NotFound(fmt.Sprintf("User opportunity with ID %s not found", id), nil)
	}
	return nil
}
