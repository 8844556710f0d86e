// Package service holds the opportunity management rules that sit above
// storage: validation, per-user uniqueness and the application workflow.
package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/michaelprosario/career-catalyst/common/telemetry"
	"github.com/michaelprosario/career-catalyst/internal/errors"
	"github.com/michaelprosario/career-catalyst/internal/events"
	"github.com/michaelprosario/career-catalyst/internal/models"
	"github.com/michaelprosario/career-catalyst/internal/repository"
)

var tracer = telemetry.GetTracer("career-catalyst/service")

const (
	MsgAlreadySaved    = "User has already saved this opportunity"
	MsgUserIDImmutable = "User ID cannot be changed"
)

type OpportunityService struct {
	repo      repository.Repository
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

type Option func(*OpportunityService)

func WithClock(now func() time.Time) Option {
	return func(s *OpportunityService) {
		s.now = now
	}
}

func NewOpportunityService(repo repository.Repository, publisher events.Publisher, logger *zap.Logger, opts ...Option) *OpportunityService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	s := &OpportunityService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func notFoundMessage(id string) string {
	return fmt.Sprintf("UserOpportunity with ID %s not found", id)
}

// Save is the first-save entry point: it assigns an id when none is given,
// stamps timestamps from the service clock and adds the record.
func (s *OpportunityService) Save(ctx context.Context, params models.UserOpportunityParams) AppResult {
	if strings.TrimSpace(params.ID) == "" {
		params.ID = uuid.NewString()
	}
	o, err := models.NewUserOpportunity(params, s.now())
	if err != nil {
		return failed(err.Error(), err)
	}
	return s.AddUserOpportunity(ctx, o)
}

func (s *OpportunityService) AddUserOpportunity(ctx context.Context, o *models.UserOpportunity) AppResult {
	ctx, span := tracer.Start(ctx, "AddUserOpportunity")
	defer span.End()

	if o == nil {
		return failed("UserOpportunity record cannot be nil", nil)
	}
	switch {
	case strings.TrimSpace(o.ID) == "":
		return failed("ID cannot be empty", nil)
	case strings.TrimSpace(o.UserID) == "":
		return failed("User ID cannot be empty", nil)
	case strings.TrimSpace(o.Title) == "":
		return failed("Title cannot be empty", nil)
	case strings.TrimSpace(o.Company) == "":
		return failed("Company cannot be empty", nil)
	}
	if err := o.Validate(); err != nil {
		return failed(err.Error(), err)
	}
	span.SetAttributes(telemetry.String("opportunity.id", o.ID), telemetry.String("user.id", o.UserID))

	existing, err := s.repo.GetByUserID(ctx, o.UserID)
	if err != nil {
		telemetry.Fail(span, err)
		s.logger.Error("failed to load user opportunities", zap.String("user_id", o.UserID), zap.Error(err))
		return failed("Failed to add user opportunity: "+err.Error(), err)
	}
	for _, e := range existing {
		if e.SameListing(o) {
			return failedAs(errors.ErrTypeDuplicateKey, MsgAlreadySaved, nil)
		}
	}

	saved, err := s.repo.Save(ctx, o)
	if err != nil {
		telemetry.Fail(span, err)
		if errors.IsDuplicateKey(err) {
			// Lost the race against a concurrent add; the storage guard caught it.
			s.logger.Warn("duplicate user opportunity rejected by storage", zap.String("id", o.ID), zap.Error(err))
		} else {
			s.logger.Error("failed to save user opportunity", zap.String("id", o.ID), zap.Error(err))
		}
		return failed("Failed to add user opportunity: "+err.Error(), err)
	}

	s.publish(ctx, events.NewEvent(events.TypeSaved, saved, s.now()))
	s.logger.Info("user opportunity added", zap.String("id", saved.ID), zap.String("user_id", saved.UserID))
	return succeeded("User opportunity added successfully", saved.ID)
}

func (s *OpportunityService) UpdateUserOpportunity(ctx context.Context, o *models.UserOpportunity) AppResult {
	ctx, span := tracer.Start(ctx, "UpdateUserOpportunity")
	defer span.End()

	if o == nil {
		return failed("UserOpportunity record cannot be nil", nil)
	}
	if strings.TrimSpace(o.ID) == "" {
		return failed("ID cannot be empty", nil)
	}
	span.SetAttributes(telemetry.String("opportunity.id", o.ID))

	current, err := s.repo.GetByID(ctx, o.ID)
	if err != nil {
		telemetry.Fail(span, err)
		return failed("Failed to update user opportunity: "+err.Error(), err)
	}
	if current == nil {
		return notFound(o.ID, nil)
	}
	// Owner and creation time belong to the stored record.
	if o.UserID != current.UserID {
		return failed(MsgUserIDImmutable, nil)
	}
	next := o.Clone()
	next.CreatedAt = current.CreatedAt
	if err := next.Validate(); err != nil {
		return failed(err.Error(), err)
	}

	updated, err := s.repo.Update(ctx, next)
	if err != nil {
		telemetry.Fail(span, err)
		if errors.IsNotFound(err) {
			return notFound(o.ID, err)
		}
		s.logger.Error("failed to update user opportunity", zap.String("id", o.ID), zap.Error(err))
		return failed("Failed to update user opportunity: "+err.Error(), err)
	}

	s.publish(ctx, events.NewEvent(events.TypeUpdated, updated, s.now()))
	return succeeded("User opportunity updated successfully", updated.ID)
}

func (s *OpportunityService) GetUserOpportunityByID(ctx context.Context, id string) GetDocumentResult {
	ctx, span := tracer.Start(ctx, "GetUserOpportunityByID")
	defer span.End()

	if strings.TrimSpace(id) == "" {
		return documentFailed(failed("ID cannot be empty", nil))
	}
	span.SetAttributes(telemetry.String("opportunity.id", id))

	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		telemetry.Fail(span, err)
		return documentFailed(failed("Failed to retrieve user opportunity: "+err.Error(), err))
	}
	if o == nil {
		return documentFailed(notFound(id, nil))
	}
	return GetDocumentResult{
		Success:  true,
		Message:  "User opportunity retrieved successfully",
		Errors:   []string{},
		Document: o,
	}
}

func (s *OpportunityService) DeleteUserOpportunityByID(ctx context.Context, id string) AppResult {
	ctx, span := tracer.Start(ctx, "DeleteUserOpportunityByID")
	defer span.End()

	if strings.TrimSpace(id) == "" {
		return failed("ID cannot be empty", nil)
	}
	span.SetAttributes(telemetry.String("opportunity.id", id))

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		telemetry.Fail(span, err)
		return failed("Failed to delete user opportunity: "+err.Error(), err)
	}
	if current == nil {
		return notFound(id, nil)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		telemetry.Fail(span, err)
		if errors.IsNotFound(err) {
			return notFound(id, err)
		}
		s.logger.Error("failed to delete user opportunity", zap.String("id", id), zap.Error(err))
		return failed("Failed to delete user opportunity: "+err.Error(), err)
	}

	s.publish(ctx, events.NewEvent(events.TypeDeleted, current, s.now()))
	s.logger.Info("user opportunity deleted", zap.String("id", id))
	return succeeded("User opportunity deleted successfully", id)
}

// Apply records an application against an active opportunity.
func (s *OpportunityService) Apply(ctx context.Context, id, resumeID, coverLetterID string) (*models.UserOpportunity, error) {
	ctx, span := tracer.Start(ctx, "Apply")
	defer span.End()

	o, err := s.load(ctx, id)
	if err != nil {
		telemetry.Fail(span, err)
		return nil, err
	}
	now := s.now()
	if !o.IsActive(now) {
		return nil, errors.InvalidStateTransition("Cannot apply to inactive opportunity", nil)
	}
	if err := o.Apply(resumeID, coverLetterID, now); err != nil {
		return nil, err
	}

	updated, err := s.persist(ctx, o)
	if err != nil {
		telemetry.Fail(span, err)
		return nil, err
	}
	s.publish(ctx, events.NewEvent(events.TypeApplied, updated, now).WithDetail("resume "+resumeID))
	return updated, nil
}

// UpdateApplicationStatus sets any status. Only Apply guards a transition.
func (s *OpportunityService) UpdateApplicationStatus(ctx context.Context, id string, status models.ApplicationStatus) (*models.UserOpportunity, error) {
	ctx, span := tracer.Start(ctx, "UpdateApplicationStatus")
	defer span.End()

	if !status.Valid() {
		return nil, errors.InvalidInput(fmt.Sprintf("invalid application status %q", status), nil)
	}
	o, err := s.load(ctx, id)
	if err != nil {
		telemetry.Fail(span, err)
		return nil, err
	}
	previous := o.ApplicationStatus
	now := s.now()
	o.UpdateStatus(status, now)

	updated, err := s.persist(ctx, o)
	if err != nil {
		telemetry.Fail(span, err)
		return nil, err
	}
	s.publish(ctx, events.NewEvent(events.TypeStatusChanged, updated, now).WithDetail(string(previous)+" -> "+string(status)))
	return updated, nil
}

func (s *OpportunityService) AddNotes(ctx context.Context, id, notes string) (*models.UserOpportunity, error) {
	ctx, span := tracer.Start(ctx, "AddNotes")
	defer span.End()

	if strings.TrimSpace(notes) == "" {
		return nil, errors.InvalidInput("Notes cannot be empty", nil)
	}
	o, err := s.load(ctx, id)
	if err != nil {
		telemetry.Fail(span, err)
		return nil, err
	}
	now := s.now()
	if err := o.AddNotes(notes, now); err != nil {
		return nil, err
	}

	updated, err := s.persist(ctx, o)
	if err != nil {
		telemetry.Fail(span, err)
		return nil, err
	}
	s.publish(ctx, events.NewEvent(events.TypeNotesAdded, updated, now))
	return updated, nil
}

func (s *OpportunityService) Search(ctx context.Context, criteria repository.SearchCriteria) ([]*models.UserOpportunity, error) {
	ctx, span := tracer.Start(ctx, "Search")
	defer span.End()

	out, err := s.repo.Search(ctx, criteria)
	if err != nil {
		telemetry.Fail(span, err)
		return nil, classify("searching user opportunities", err)
	}
	return out, nil
}

func (s *OpportunityService) GetByType(ctx context.Context, t models.OpportunityType) ([]*models.UserOpportunity, error) {
	if !t.Valid() {
		return nil, errors.InvalidInput(fmt.Sprintf("invalid opportunity type %q", t), nil)
	}
	out, err := s.repo.GetByType(ctx, t)
	if err != nil {
		return nil, classify("listing user opportunities by type", err)
	}
	return out, nil
}

func (s *OpportunityService) GetActive(ctx context.Context) ([]*models.UserOpportunity, error) {
	out, err := s.repo.GetActive(ctx)
	if err != nil {
		return nil, classify("listing active user opportunities", err)
	}
	return out, nil
}

func (s *OpportunityService) GetUserOpportunities(ctx context.Context, userID string) ([]*models.UserOpportunity, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errors.InvalidInput("User ID cannot be empty", nil)
	}
	out, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, classify("listing user opportunities", err)
	}
	return out, nil
}

func (s *OpportunityService) GetByApplicationStatus(ctx context.Context, userID string, status models.ApplicationStatus) ([]*models.UserOpportunity, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errors.InvalidInput("User ID cannot be empty", nil)
	}
	if !status.Valid() {
		return nil, errors.InvalidInput(fmt.Sprintf("invalid application status %q", status), nil)
	}
	out, err := s.repo.GetByUserAndStatus(ctx, userID, status)
	if err != nil {
		return nil, classify("listing user opportunities by status", err)
	}
	return out, nil
}

// load fetches a record for a workflow method, turning absence into
// NOT_FOUND.
func (s *OpportunityService) load(ctx context.Context, id string) (*models.UserOpportunity, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.InvalidInput("ID cannot be empty", nil)
	}
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, classify("loading user opportunity", err)
	}
	if o == nil {
		return nil, errors.NotFound(notFoundMessage(id), nil)
	}
	return o, nil
}

func (s *OpportunityService) persist(ctx context.Context, o *models.UserOpportunity) (*models.UserOpportunity, error) {
	updated, err := s.repo.Update(ctx, o)
	if err != nil {
		s.logger.Error("failed to persist user opportunity", zap.String("id", o.ID), zap.Error(err))
		return nil, classify("updating user opportunity", err)
	}
	return updated, nil
}

// publish never fails the caller; the write has already happened.
func (s *OpportunityService) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("failed to publish opportunity event",
			zap.String("opportunity_id", e.OpportunityID),
			zap.String("type", string(e.Type)),
			zap.Error(err))
	}
}

// classify keeps domain errors as they are and marks anything else INTERNAL.
func classify(doing string, err error) error {
	var de *errors.DomainError
	if stderrors.As(err, &de) {
		return err
	}
	return errors.Internal(doing, err)
}
