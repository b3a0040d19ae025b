// Free-text inference of job type, experience level and workplace type.

package normalize

import (
	"regexp"
	"strings"

	"go-jobharvest/internal/models"
)

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// InferJobType walks an ordered keyword cascade over title+description.
// First match wins; the default is full time.
func InferJobType(title, description string) models.JobType {
	text := Fold(title + " " + description)

	switch {
	case containsAny(text, "intern", "internship", "student"):
		return models.JobTypeInternship
	case containsAny(text, "contract", "contractor", "temporary", "temp"):
		return models.JobTypeContract
	case containsAny(text, "part time", "part-time", "parttime"):
		return models.JobTypePartTime
	case containsAny(text, "freelance", "freelancer", "consultant"):
		return models.JobTypeFreelance
	default:
		return models.JobTypeFullTime
	}
}

var (
	entryYearsRegex = regexp.MustCompile(`\b0\s*-\s*2\s*years?\b`)
	assocYearsRegex = regexp.MustCompile(`\b2\s*-\s*4\s*years?\b`)
	midYearsRegex   = regexp.MustCompile(`\b4\s*-\s*7\s*years?\b`)
	srYearsRegex    = regexp.MustCompile(`\b[78]\+?\s*years?\b`)
)

// InferExperienceLevel prefers seniority markers in the title; year-range
// heuristics over the combined text are the fallback, checked in ascending
// order of years.
func InferExperienceLevel(title, description string) models.ExperienceLevel {
	titleLower := Fold(title)

	switch {
	case containsAny(titleLower, "principal", "architect", "distinguished"):
		return models.ExperiencePrincipal
	case containsAny(titleLower, "cto", "ceo", "cmo", "cfo", "chief"):
		return models.ExperienceExecutive
	case containsAny(titleLower, "director", "head of", "vp", "vice president"):
		return models.ExperienceDirector
	case containsAny(titleLower, "lead"):
		return models.ExperienceLead
	case containsAny(titleLower, "senior", "sr.", "staff"):
		return models.ExperienceSenior
	case containsAny(titleLower, "entry"):
		return models.ExperienceEntry
	case containsAny(titleLower, "junior", "jr.", "associate"):
		return models.ExperienceAssociate
	}

	text := titleLower + " " + Fold(description)
	switch {
	case entryYearsRegex.MatchString(text) || strings.Contains(text, "entry level"):
		return models.ExperienceEntry
	case assocYearsRegex.MatchString(text):
		return models.ExperienceAssociate
	case midYearsRegex.MatchString(text):
		return models.ExperienceMid
	case srYearsRegex.MatchString(text):
		return models.ExperienceSenior
	}

	return models.ExperienceUnknown
}

// InferWorkplaceType reads remote markers first; an embedded hybrid/flexible
// marker downgrades remote to hybrid.
func InferWorkplaceType(location, description string) models.WorkplaceType {
	text := Fold(location + " " + description)

	if containsAny(text, "remote", "work from home", "telecommute", "distributed") {
		if containsAny(text, "hybrid", "flexible", "optional remote") {
			return models.WorkplaceHybrid
		}
		return models.WorkplaceRemote
	}
	if containsAny(text, "hybrid", "flexible work", "remote optional") {
		return models.WorkplaceHybrid
	}
	if containsAny(text, "on-site", "onsite", "office", "in-person") {
		return models.WorkplaceOnsite
	}
	return models.WorkplaceUnknown
}
