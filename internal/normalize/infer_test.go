package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go-jobharvest/internal/models"
)

func TestInferJobType(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		desc     string
		expected models.JobType
	}{
		{"internship wins first", "Software Engineering Intern", "temporary contract role", models.JobTypeInternship},
		{"contract", "Backend Engineer", "6 month contract position", models.JobTypeContract},
		{"part time", "Designer (Part-Time)", "", models.JobTypePartTime},
		{"freelance", "Marketing Consultant", "", models.JobTypeFreelance},
		{"default full time", "Software Engineer", "build things", models.JobTypeFullTime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, InferJobType(tt.title, tt.desc))
		})
	}
}

func TestInferExperienceLevel(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		desc     string
		expected models.ExperienceLevel
	}{
		{"title senior beats desc years", "Senior Engineer", "0-2 years experience", models.ExperienceSenior},
		{"principal", "Principal Architect", "", models.ExperiencePrincipal},
		{"lead", "Tech Lead", "", models.ExperienceLead},
		{"director", "Director of Engineering", "", models.ExperienceDirector},
		{"executive", "Chief Technology Officer", "", models.ExperienceExecutive},
		{"junior maps to associate", "Junior Developer", "", models.ExperienceAssociate},
		{"entry in title", "Entry Level Analyst", "", models.ExperienceEntry},
		{"desc entry years", "Engineer", "looking for 0-2 years of experience", models.ExperienceEntry},
		{"desc associate years", "Engineer", "2-4 years required", models.ExperienceAssociate},
		{"desc mid years", "Engineer", "4-7 years required", models.ExperienceMid},
		{"desc senior years", "Engineer", "7+ years required", models.ExperienceSenior},
		{"nothing matches", "Engineer", "great team", models.ExperienceUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, InferExperienceLevel(tt.title, tt.desc))
		})
	}
}

func TestInferWorkplaceType(t *testing.T) {
	tests := []struct {
		name     string
		location string
		desc     string
		expected models.WorkplaceType
	}{
		{"remote", "Remote - US", "", models.WorkplaceRemote},
		{"remote downgraded to hybrid", "Remote", "hybrid schedule, 2 days in office", models.WorkplaceHybrid},
		{"hybrid explicit", "Austin, TX", "hybrid role", models.WorkplaceHybrid},
		{"onsite", "Cupertino, CA", "work from our office", models.WorkplaceOnsite},
		{"unknown", "London", "great snacks", models.WorkplaceUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, InferWorkplaceType(tt.location, tt.desc))
		})
	}
}
