package coverletter

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"go.uber.org/zap"

	"github.com/michaelprosario/career-catalyst/common/telemetry"
	"github.com/michaelprosario/career-catalyst/internal/errors"
)

var tracer = telemetry.GetTracer("career-catalyst/coverletter")

const DefaultModel = "gemini-1.5-flash"

const promptTemplate = `You are an expert career consultant and professional writer specializing in compelling cover letters.
Write a personalized, professional cover letter that matches the candidate's qualifications to the job requirements.

Plan the letter first:
- Read the job description for the key skills, qualifications and responsibilities, and reuse its keywords.
- Connect the candidate's experience to the company's needs with specific, quantified examples from the resume.
  Do not simply repeat the resume.
- Mention something specific about the company when the website or description allows it.

Structure:
- Introduction: the position, real enthusiasm, and the single most relevant qualification.
- Body (one or two paragraphs): how the candidate's skills solve the problems named in the job description.
- Closing: restate interest, confidence in the fit, a clear call to action, and thanks.

Instructions:
1. Formal, professional tone; confident but not arrogant.
2. Three to four paragraphs, under 400 words, in business letter format.
3. No generic phrases, cliches or special formatting (ATS friendly).

Candidate Information:
Name: %s
Resume/Experience:
%s

Job Description:
%s

Company Website/Information:
%s

Output only the cover letter, starting with the salutation and ending with the closing.

Cover Letter:`

// Prompt renders the generation prompt for cmd.
func Prompt(cmd Command) string {
	return fmt.Sprintf(promptTemplate, cmd.ApplicantName, cmd.Resume, cmd.JobDescription, cmd.CompanyWebsite)
}

// ModelWriter drafts letters with any LangChainGo model.
type ModelWriter struct {
	model  llms.Model
	logger *zap.Logger
}

func NewModelWriter(model llms.Model, logger *zap.Logger) *ModelWriter {
	return &ModelWriter{model: model, logger: logger}
}

// NewGeminiWriter builds a writer backed by Google AI.
func NewGeminiWriter(ctx context.Context, apiKey, model string, logger *zap.Logger) (*ModelWriter, error) {
	if apiKey == "" {
		return nil, errors.InvalidInput("Google AI API key is required", nil)
	}
	if model == "" {
		model = DefaultModel
	}
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, errors.Unavailable("creating Gemini client", err)
	}
	logger.Info("cover letter writer ready", zap.String("model", model))
	return NewModelWriter(llm, logger), nil
}

func (w *ModelWriter) Write(ctx context.Context, cmd Command) (string, error) {
	ctx, span := tracer.Start(ctx, "Write")
	defer span.End()

	if problems := cmd.Validate(); len(problems) > 0 {
		return "", errors.InvalidInput(strings.Join(problems, "; "), nil)
	}

	w.logger.Info("generating cover letter", zap.String("applicant", cmd.ApplicantName))
	resp, err := llms.GenerateFromSinglePrompt(ctx, w.model, Prompt(cmd),
		llms.WithTemperature(0.7),
		llms.WithMaxTokens(1000),
		llms.WithTopP(0.9),
		llms.WithTopK(40),
	)
	if err != nil {
		telemetry.Fail(span, err)
		return "", errors.Unavailable("generating cover letter", err)
	}

	letter := strings.TrimSpace(resp)
	if letter == "" {
		return "", errors.Unavailable("No content generated by AI model", nil)
	}
	span.SetAttributes(telemetry.Int("letter.length", len(letter)))
	return letter, nil
}
