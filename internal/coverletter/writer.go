// Package coverletter drafts cover letters for saved opportunities with a
// text-generation model.
package coverletter

import (
	"context"
	"strings"
)

type Command struct {
	JobDescription string
	Resume         string
	ApplicantName  string
	CompanyWebsite string
}

// Validate lists the problems with c; company website is optional.
func (c Command) Validate() []string {
	var problems []string
	if strings.TrimSpace(c.ApplicantName) == "" {
		problems = append(problems, "Applicant name is required")
	}
	if strings.TrimSpace(c.JobDescription) == "" {
		problems = append(problems, "Job description is required")
	}
	if strings.TrimSpace(c.Resume) == "" {
		problems = append(problems, "Resume/experience information is required")
	}
	return problems
}

type Writer interface {
	Write(ctx context.Context, cmd Command) (string, error)
}
