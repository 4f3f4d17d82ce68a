package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/cv-assistant/internal/llm"
	"github.com/jonathan/cv-assistant/internal/schemas"
)

// maxExtractionInput bounds the posting text sent for extraction
const maxExtractionInput = 60000

// ExtractJobPosting asks the model to split raw posting text into the job form fields.
// The answer is checked against the job posting schema before it is returned.
func ExtractJobPosting(ctx context.Context, client llm.Client, credential, text string) (*JobPosting, error) {
	if strings.TrimSpace(credential) == "" {
		return nil, llm.ErrMissingCredential
	}
	if len(text) > maxExtractionInput {
		text = text[:maxExtractionInput]
	}

	prompt := llm.BuildExtractionPrompt(llm.JobPostingSchema(), text)
	jsonResp, err := client.ExtractJSON(ctx, credential, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to extract job posting: %w", err)
	}

	if err := schemas.ValidateJobPosting([]byte(jsonResp)); err != nil {
		return nil, fmt.Errorf("extracted job posting does not match schema: %w", err)
	}

	var posting JobPosting
	if err := json.Unmarshal([]byte(jsonResp), &posting); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	posting.CompanyName = strings.TrimSpace(posting.CompanyName)
	posting.PositionTitle = strings.TrimSpace(posting.PositionTitle)
	posting.JobRequirements = CleanText(posting.JobRequirements)
	posting.JobDescription = CleanText(posting.JobDescription)
	posting.Extracted = true
	return &posting, nil
}
