package generation

import "github.com/jonathan/resume-builder/internal/types"

// Placeholder content used when the backend response cannot be trusted
const (
	placeholderExperienceTitle = "Professional Experience"
	placeholderCompany         = "Company Name"
	placeholderDuration        = "Duration"
	placeholderProjectName     = "Project Name"
	placeholderProjectDesc     = "Project description"

	// maxFallbackTechnologies bounds the skills copied into the placeholder project
	maxFallbackTechnologies = 3
)

// Fallback builds the deterministic document used whenever a backend
// response is rejected. It depends only on the input.
func Fallback(input types.UserData) types.ContentDocument {
	skills := input.SkillsCopy()

	n := len(skills)
	if n > maxFallbackTechnologies {
		n = maxFallbackTechnologies
	}
	technologies := make([]string, n)
	copy(technologies, skills[:n])

	return types.ContentDocument{
		Header:  input.Header(),
		Summary: input.Description,
		Skills:  skills,
		Experience: []types.Experience{
			{
				Title:        placeholderExperienceTitle,
				Company:      placeholderCompany,
				Duration:     placeholderDuration,
				Achievements: []string{"Key achievement 1", "Key achievement 2"},
			},
		},
		Projects: []types.Project{
			{
				Name:         placeholderProjectName,
				Description:  placeholderProjectDesc,
				Technologies: technologies,
			},
		},
	}
}
