package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jonathan/cv-assistant/internal/fetch"
	"github.com/jonathan/cv-assistant/internal/llm"
	"github.com/jonathan/cv-assistant/internal/types"
)

// JobPosting holds the job-related form fields taken from a posting.
type JobPosting struct {
	CompanyName     string `json:"companyName"`
	PositionTitle   string `json:"positionTitle"`
	JobRequirements string `json:"jobRequirements"`
	JobDescription  string `json:"jobDescription"`

	SourceURL string `json:"-"`
	Platform  string `json:"-"`
	// Extracted is true when the fields were split by the model
	Extracted bool `json:"-"`
}

// Apply copies the non-empty posting fields into fields.
func (j *JobPosting) Apply(fields *types.FormFields) {
	if j.CompanyName != "" {
		fields.CompanyName = j.CompanyName
	}
	if j.PositionTitle != "" {
		fields.PositionTitle = j.PositionTitle
	}
	if j.JobRequirements != "" {
		fields.JobRequirements = j.JobRequirements
	}
	if j.JobDescription != "" {
		fields.JobDescription = j.JobDescription
	}
}

// PageFetcher retrieves the readable text of a job posting page.
type PageFetcher interface {
	JobPage(ctx context.Context, url string) (*fetch.Page, error)
}

// JobImporter fills job fields from a posting URL.
type JobImporter struct {
	Fetcher PageFetcher
	Client  llm.Client
	Verbose bool
}

// Import fetches the posting at url. Without extract the page text becomes the job
// description. With extract the text is split into fields by one model call; if that
// call fails for any reason other than a missing credential, the page text is kept.
func (i *JobImporter) Import(ctx context.Context, url, credential string, extract bool) (*JobPosting, error) {
	page, err := i.Fetcher.JobPage(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch job posting: %w", err)
	}

	text := CleanText(page.Text)
	posting := &JobPosting{
		JobDescription: text,
		SourceURL:      url,
		Platform:       string(page.Platform),
	}
	if !extract {
		return posting, nil
	}
	if i.Client == nil {
		return nil, fmt.Errorf("job extraction requires a generation client")
	}

	if i.Verbose {
		log.Printf("[ingest] extracting job fields from %d chars", len(text))
	}
	extracted, err := ExtractJobPosting(ctx, i.Client, credential, text)
	if err != nil {
		if errors.Is(err, llm.ErrMissingCredential) {
			return nil, err
		}
		log.Printf("[ingest] extraction failed, using page text: %v", err)
		return posting, nil
	}

	extracted.SourceURL = url
	extracted.Platform = posting.Platform
	if extracted.JobDescription == "" {
		extracted.JobDescription = text
	}
	return extracted, nil
}
