// Package mongo stores user opportunities in a MongoDB collection.
package mongo

import (
	"context"
	stderrors "errors"
	"fmt"
	"regexp"
	"time"

	"github.com/michaelprosario/career-catalyst/common/database"
	"github.com/michaelprosario/career-catalyst/common/telemetry"
	"github.com/michaelprosario/career-catalyst/internal/errors"
	"github.com/michaelprosario/career-catalyst/internal/models"
	"github.com/michaelprosario/career-catalyst/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("career-catalyst/repository/mongo")

const CollectionName = "user_opportunities"

type Repository struct {
	pool       *database.Mongo
	collection string
	logger     *zap.Logger
	now        func() time.Time
}

type Option func(*Repository)

func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		r.now = now
	}
}

// WithCollection overrides the collection name, mostly for tests.
func WithCollection(name string) Option {
	return func(r *Repository) {
		r.collection = name
	}
}

func New(pool *database.Mongo, logger *zap.Logger, opts ...Option) *Repository {
	r := &Repository{
		pool:       pool,
		collection: CollectionName,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ repository.Repository = (*Repository)(nil)

func (r *Repository) coll() (*mongo.Collection, error) {
	c, err := r.pool.Collection(r.collection)
	if err != nil {
		return nil, errors.Unavailable("opportunity store is not connected", err)
	}
	return c, nil
}

// EnsureIndexes creates the query indexes and the unique listing index over
// the normalized title and company.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "EnsureIndexes")
	defer span.End()

	c, err := r.coll()
	if err != nil {
		return err
	}

	single := []string{"user_id", "title", "company", "type", "status", "application_status", "applied_at", "created_at", "posted_at"}
	indexes := make([]mongo.IndexModel, 0, len(single)+3)
	for _, field := range single {
		indexes = append(indexes, mongo.IndexModel{Keys: bson.D{{Key: field, Value: 1}}})
	}
	indexes = append(indexes,
		mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "application_status", Value: 1}}},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "title_key", Value: 1}, {Key: "company_key", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("user_listing_unique"),
		},
		mongo.IndexModel{
			Keys: bson.D{{Key: "title", Value: "text"}, {Key: "company", Value: "text"}, {Key: "description", Value: "text"}},
		},
	)

	names, err := c.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		telemetry.Fail(span, err)
		return errors.Internal("creating opportunity indexes", err)
	}
	r.logger.Info("ensured opportunity indexes", zap.Int("count", len(names)))
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*models.UserOpportunity, error) {
	ctx, span := tracer.Start(ctx, "GetByID")
	defer span.End()
	span.SetAttributes(telemetry.String("opportunity.id", id))

	c, err := r.coll()
	if err != nil {
		return nil, err
	}

	var d document
	if err := c.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		if stderrors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		telemetry.Fail(span, err)
		return nil, errors.Internal("finding user opportunity", err)
	}
	o, err := d.toModel()
	if err != nil {
		return nil, errors.Internal(fmt.Sprintf("decoding user opportunity %s", id), err)
	}
	return o, nil
}

func (r *Repository) GetByUserID(ctx context.Context, userID string) ([]*models.UserOpportunity, error) {
	return r.find(ctx, "GetByUserID", bson.M{"user_id": userID})
}

func (r *Repository) GetByUserAndStatus(ctx context.Context, userID string, status models.ApplicationStatus) ([]*models.UserOpportunity, error) {
	return r.find(ctx, "GetByUserAndStatus", bson.M{"user_id": userID, "application_status": string(status)})
}

func (r *Repository) GetByType(ctx context.Context, t models.OpportunityType) ([]*models.UserOpportunity, error) {
	return r.find(ctx, "GetByType", bson.M{"type": string(t)})
}

func (r *Repository) GetActive(ctx context.Context) ([]*models.UserOpportunity, error) {
	return r.find(ctx, "GetActive", bson.M{
		"status": string(models.OpportunityStatusActive),
		"$or": bson.A{
			bson.M{"expires_at": nil},
			bson.M{"expires_at": bson.M{"$gt": r.now()}},
		},
	})
}

func (r *Repository) Search(ctx context.Context, criteria repository.SearchCriteria) ([]*models.UserOpportunity, error) {
	return r.find(ctx, "Search", searchFilter(criteria))
}

// searchFilter translates criteria into a query that agrees with
// repository.Matches. Text fields use escaped, case-insensitive regexes so
// keywords behave as a substring match.
func searchFilter(c repository.SearchCriteria) bson.M {
	filter := bson.M{}
	if c.Keywords != "" {
		re := containsFold(c.Keywords)
		filter["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"company": re},
			bson.M{"description": re},
		}
	}
	if c.UserID != "" {
		filter["user_id"] = c.UserID
	}
	if c.Type != "" {
		filter["type"] = string(c.Type)
	}
	if c.Location != "" {
		filter["location"] = containsFold(c.Location)
	}
	if c.IsRemote != nil {
		filter["is_remote"] = *c.IsRemote
	}
	if c.ApplicationStatus != "" {
		filter["application_status"] = string(c.ApplicationStatus)
	}
	return filter
}

func containsFold(s string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}
}

func (r *Repository) find(ctx context.Context, op string, filter bson.M) ([]*models.UserOpportunity, error) {
	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	c, err := r.coll()
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := c.Find(ctx, filter, opts)
	if err != nil {
		telemetry.Fail(span, err)
		return nil, errors.Internal("querying user opportunities", err)
	}
	defer cur.Close(ctx)

	var docs []document
	if err := cur.All(ctx, &docs); err != nil {
		telemetry.Fail(span, err)
		return nil, errors.Internal("decoding user opportunities", err)
	}

	out := make([]*models.UserOpportunity, 0, len(docs))
	for _, d := range docs {
		o, err := d.toModel()
		if err != nil {
			telemetry.Fail(span, err)
			return nil, errors.Internal(fmt.Sprintf("decoding user opportunity %s", d.ID), err)
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

	c, err := r.coll()
	if err != nil {
		return nil, err
	}

	if _, err := c.InsertOne(ctx, toDocument(o)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
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

	c, err := r.coll()
	if err != nil {
		return nil, err
	}

	res, err := c.ReplaceOne(ctx, bson.M{"_id": o.ID}, toDocument(o))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, errors.DuplicateKey("user opportunity with the same title and company already exists for this user", err)
		}
		telemetry.Fail(span, err)
		return nil, errors.Internal("replacing user opportunity", err)
	}
	if res.MatchedCount == 0 {
		return nil, errors.NotFound(fmt.Sprintf("User opportunity with ID %s not found", o.ID), nil)
	}
	return o.Clone(), nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Delete")
	defer span.End()
	span.SetAttributes(telemetry.String("opportunity.id", id))

	c, err := r.coll()
	if err != nil {
		return err
	}

	res, err := c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		telemetry.Fail(span, err)
		return errors.Internal("deleting user opportunity", err)
	}
	if res.DeletedCount == 0 {
		return errors.NotFound(fmt.Sprintf("User opportunity with ID %s not found", id), nil)
	}
	return nil
}
