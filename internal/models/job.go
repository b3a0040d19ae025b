// Canonical job record and the enumerations shared across the pipeline.

package models

import (
	"time"

	"github.com/google/uuid"
)

// CategoryOther is the catch-all category assigned when no configured
// category scores above the confidence threshold.
const CategoryOther = "other"

type JobType string

const (
	JobTypeFullTime   JobType = "full_time"
	JobTypePartTime   JobType = "part_time"
	JobTypeContract   JobType = "contract"
	JobTypeInternship JobType = "internship"
	JobTypeFreelance  JobType = "freelance"
)

type ExperienceLevel string

const (
	ExperienceEntry     ExperienceLevel = "entry"
	ExperienceAssociate ExperienceLevel = "associate"
	ExperienceMid       ExperienceLevel = "mid"
	ExperienceSenior    ExperienceLevel = "senior"
	ExperienceLead      ExperienceLevel = "lead"
	ExperiencePrincipal ExperienceLevel = "principal"
	ExperienceDirector  ExperienceLevel = "director"
	ExperienceExecutive ExperienceLevel = "executive"
	ExperienceUnknown   ExperienceLevel = "unknown"
)

type WorkplaceType string

const (
	WorkplaceOnsite  WorkplaceType = "onsite"
	WorkplaceRemote  WorkplaceType = "remote"
	WorkplaceHybrid  WorkplaceType = "hybrid"
	WorkplaceUnknown WorkplaceType = "unknown"
)

// Job is the normalized, categorized record emitted by a scraper run.
// Category is never empty; it falls back to CategoryOther.
type Job struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	Company         string            `json:"company"`
	Location        string            `json:"location"`
	Description     string            `json:"description"`
	Department      string            `json:"department,omitempty"`
	Category        string            `json:"category"`
	JobType         JobType           `json:"job_type"`
	ExperienceLevel ExperienceLevel   `json:"experience_level"`
	WorkplaceType   WorkplaceType     `json:"workplace_type"`
	PostedDate      *time.Time        `json:"posted_date,omitempty"`
	URL             string            `json:"url,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// NewJobID returns a fresh identifier for a scraped job.
func NewJobID() string {
	return uuid.NewString()
}

// CategorizationResult is produced per posting by the categorizer.
type CategorizationResult struct {
	Category        string         `json:"category"`
	Confidence      float64        `json:"confidence"`
	KeywordMatches  map[string]int `json:"keyword_matches,omitempty"`
	DepartmentMatch bool           `json:"department_match"`
	Reasoning       string         `json:"reasoning,omitempty"`
}

// BatchStats accumulates counters for a single scraper run. It is owned by
// exactly one run and reset when the run starts.
type BatchStats struct {
	JobsFound       int      `json:"jobs_found"`
	JobsProcessed   int      `json:"jobs_processed"`
	JobsCategorized int      `json:"jobs_categorized"`
	Errors          []string `json:"errors,omitempty"`
}

func (s *BatchStats) Reset() {
	*s = BatchStats{}
}

// RecordError appends a per-item failure without aborting the batch.
func (s *BatchStats) RecordError(msg string) {
	s.Errors = append(s.Errors, msg)
}
