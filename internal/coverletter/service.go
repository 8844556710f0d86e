package coverletter

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/michaelprosario/career-catalyst/internal/errors"
	"github.com/michaelprosario/career-catalyst/internal/models"
	"github.com/michaelprosario/career-catalyst/internal/profile"
	"github.com/michaelprosario/career-catalyst/internal/service"
)

type OpportunityReader interface {
	GetUserOpportunityByID(ctx context.Context, id string) service.GetDocumentResult
}

type ProfileLoader interface {
	Load(ctx context.Context, userID string) (*profile.Profile, error)
}

type Result struct {
	Success          bool     `json:"success"`
	Message          string   `json:"message"`
	Errors           []string `json:"errors"`
	CoverLetter      string   `json:"cover_letter,omitempty"`
	OpportunityTitle string   `json:"opportunity_title,omitempty"`
	Company          string   `json:"company,omitempty"`

	Type errors.ErrorType `json:"-"`
}

func failure(t errors.ErrorType, message string, errs ...string) Result {
	if errs == nil {
		errs = []string{}
	}
	return Result{Message: message, Errors: errs, Type: t}
}

type Service struct {
	opportunities OpportunityReader
	profiles      ProfileLoader
	writer        Writer
	logger        *zap.Logger
}

// NewService wires the generator. A nil writer leaves generation disabled.
func NewService(opportunities OpportunityReader, profiles ProfileLoader, writer Writer, logger *zap.Logger) *Service {
	return &Service{
		opportunities: opportunities,
		profiles:      profiles,
		writer:        writer,
		logger:        logger,
	}
}

func (s *Service) Enabled() bool {
	return s.writer != nil
}

// Generate drafts a letter for one of the user's saved opportunities using
// their stored profile.
func (s *Service) Generate(ctx context.Context, userID, opportunityID string) Result {
	if !s.Enabled() {
		return failure(errors.ErrTypeUnavailable, "Cover letter generation is not configured")
	}
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(opportunityID) == "" {
		return failure(errors.ErrTypeInvalidInput, "User ID and opportunity ID are required")
	}

	s.logger.Info("fetching opportunity for cover letter",
		zap.String("opportunity_id", opportunityID),
		zap.String("user_id", userID))
	found := s.opportunities.GetUserOpportunityByID(ctx, opportunityID)
	if !found.Success || found.Document == nil || found.Document.UserID != userID {
		return failure(errors.ErrTypeNotFound, "Opportunity not found", "Could not retrieve opportunity details")
	}
	o := found.Document

	p, err := s.profiles.Load(ctx, userID)
	if err != nil && !errors.IsNotFound(err) {
		s.logger.Error("failed to load profile", zap.String("user_id", userID), zap.Error(err))
		return failure(errors.ErrTypeInternal, "Failed to load profile data", err.Error())
	}
	if p == nil || !p.Complete() {
		return failure(errors.ErrTypeInvalidInput, "User data incomplete", "Name and resume are required in your My Data configuration")
	}

	letter, err := s.writer.Write(ctx, Command{
		JobDescription: JobDescription(o),
		Resume:         p.Resume,
		ApplicantName:  p.Name,
		CompanyWebsite: o.SourceURL,
	})
	if err != nil {
		s.logger.Error("failed to generate cover letter", zap.String("opportunity_id", o.ID), zap.Error(err))
		return failure(errors.TypeOf(err), "Failed to generate cover letter: "+err.Error(), err.Error())
	}

	return Result{
		Success:          true,
		Message:          "Cover letter generated successfully",
		Errors:           []string{},
		CoverLetter:      letter,
		OpportunityTitle: o.Title,
		Company:          o.Company,
	}
}

// JobDescription formats the posting fields the writer works from.
func JobDescription(o *models.UserOpportunity) string {
	location := o.Location
	if location == "" {
		location = "Not specified"
	}
	remote := "No"
	if o.IsRemote {
		remote = "Yes"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Job Title: %s\n", o.Title)
	fmt.Fprintf(&b, "Company: %s\n", o.Company)
	fmt.Fprintf(&b, "Location: %s\n", location)
	fmt.Fprintf(&b, "Type: %s\n", o.Type)
	fmt.Fprintf(&b, "Remote: %s\n\n", remote)
	fmt.Fprintf(&b, "Job Description:\n%s\n\n", o.Description)
	b.WriteString("Requirements:\n")
	if len(o.Requirements) == 0 {
		b.WriteString("No specific requirements listed\n")
	}
	for _, r := range o.Requirements {
		fmt.Fprintf(&b, "- %s\n", r)
	}
	return b.String()
}
