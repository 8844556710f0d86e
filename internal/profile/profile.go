// Package profile stores a user's "My Data": name, resume, goals and
// accomplishments, each as its own blob.
package profile

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/michaelprosario/career-catalyst/common/blobstore"
	"github.com/michaelprosario/career-catalyst/internal/errors"
)

const (
	FieldName            = "name"
	FieldResume          = "resume"
	FieldGoals           = "goals"
	FieldAccomplishments = "accomplishments"
)

var fields = []string{FieldName, FieldResume, FieldGoals, FieldAccomplishments}

type Profile struct {
	UserID          string `json:"user_id"`
	Name            string `json:"name"`
	Resume          string `json:"resume"`
	Goals           string `json:"goals"`
	Accomplishments string `json:"accomplishments"`
}

// Complete reports whether the profile has what a cover letter needs.
func (p Profile) Complete() bool {
	return strings.TrimSpace(p.Name) != "" && strings.TrimSpace(p.Resume) != ""
}

func (p *Profile) field(name string) *string {
	switch name {
	case FieldName:
		return &p.Name
	case FieldResume:
		return &p.Resume
	case FieldGoals:
		return &p.Goals
	case FieldAccomplishments:
		return &p.Accomplishments
	}
	return nil
}

func Key(userID, field string) string {
	return fmt.Sprintf("profile:%s:%s", userID, field)
}

type Store struct {
	blobs  blobstore.Store
	logger *zap.Logger
}

func NewStore(blobs blobstore.Store, logger *zap.Logger) *Store {
	return &Store{blobs: blobs, logger: logger}
}

// Load returns NOT_FOUND when the user has never saved any field.
func (s *Store) Load(ctx context.Context, userID string) (*Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errors.InvalidInput("User ID cannot be empty", nil)
	}

	p := &Profile{UserID: userID}
	found := 0
	for _, f := range fields {
		v, err := s.blobs.Get(ctx, Key(userID, f))
		if stderrors.Is(err, blobstore.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, errors.Internal(fmt.Sprintf("reading %s for user %s", f, userID), err)
		}
		*p.field(f) = string(v)
		found++
	}
	if found == 0 {
		return nil, errors.NotFound(fmt.Sprintf("no profile data for user %s", userID), nil)
	}
	return p, nil
}

// Save writes every field. Name and resume are required; blank optional
// fields are removed.
func (s *Store) Save(ctx context.Context, p Profile) error {
	if strings.TrimSpace(p.UserID) == "" {
		return errors.InvalidInput("User ID cannot be empty", nil)
	}
	if strings.TrimSpace(p.Name) == "" {
		return errors.InvalidInput("Name cannot be empty", nil)
	}
	if strings.TrimSpace(p.Resume) == "" {
		return errors.InvalidInput("Resume cannot be empty", nil)
	}

	for _, f := range fields {
		value := strings.TrimSpace(*p.field(f))
		key := Key(p.UserID, f)
		if value == "" {
			if err := s.blobs.Delete(ctx, key); err != nil {
				return errors.Internal(fmt.Sprintf("clearing %s", f), err)
			}
			continue
		}
		if err := s.blobs.Put(ctx, key, []byte(value)); err != nil {
			return errors.Internal(fmt.Sprintf("writing %s", f), err)
		}
	}

	s.logger.Info("saved profile data", zap.String("user_id", p.UserID))
	return nil
}

// Delete removes every stored field. It is NOT_FOUND when nothing was saved.
func (s *Store) Delete(ctx context.Context, userID string) error {
	if _, err := s.Load(ctx, userID); err != nil {
		return err
	}
	for _, f := range fields {
		if err := s.blobs.Delete(ctx, Key(userID, f)); err != nil {
			return errors.Internal(fmt.Sprintf("deleting %s", f), err)
		}
	}
	s.logger.Info("deleted profile data", zap.String("user_id", userID))
	return nil
}
