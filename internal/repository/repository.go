// Package repository defines the storage contract for user opportunities.
// Every backend must satisfy the conformance suite in repositorytest.
package repository

import (
	"context"

	"github.com/michaelprosario/career-catalyst/internal/models"
)

type Repository interface {
	// GetByID returns (nil, nil) when no record has the id.
	GetByID(ctx context.Context, id string) (*models.UserOpportunity, error)

	GetByUserID(ctx context.Context, userID string) ([]*models.UserOpportunity, error)

	GetByUserAndStatus(ctx context.Context, userID string, status models.ApplicationStatus) ([]*models.UserOpportunity, error)

	GetByType(ctx context.Context, t models.OpportunityType) ([]*models.UserOpportunity, error)

	// GetActive returns records whose posting is ACTIVE and not expired.
	GetActive(ctx context.Context) ([]*models.UserOpportunity, error)

	Search(ctx context.Context, criteria SearchCriteria) ([]*models.UserOpportunity, error)

	// Save inserts a new record. A duplicate id, or a second record for the
	// same (user, title, company), fails with a DUPLICATE_KEY error.
	Save(ctx context.Context, o *models.UserOpportunity) (*models.UserOpportunity, error)

	// Update replaces an existing record; a missing id is NOT_FOUND.
	Update(ctx context.Context, o *models.UserOpportunity) (*models.UserOpportunity, error)

	// Delete removes a record; a missing id is NOT_FOUND.
	Delete(ctx context.Context, id string) error
}
