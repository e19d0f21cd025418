package types

// DefaultSkillLevel is assigned to skills added without an explicit proficiency
const DefaultSkillLevel = "Intermediate"

// UserData is the intake form output. It is produced once and treated as
// immutable by the generation pipeline.
type UserData struct {
	Name        string            `json:"name" validate:"required"`
	Title       string            `json:"title" validate:"required"`
	Email       string            `json:"email" validate:"required,resume_email"`
	Phone       string            `json:"phone" validate:"required,resume_phone"`
	Location    string            `json:"location"`
	Description string            `json:"description"`
	Skills      []string          `json:"skills" validate:"dive,required"`
	SkillLevels map[string]string `json:"skill_levels,omitempty"`
	GitHub      string            `json:"github,omitempty" validate:"omitempty,url"`
	LinkedIn    string            `json:"linkedin,omitempty" validate:"omitempty,url"`
	// PhotoKey references the uploaded photo in the photo store
	PhotoKey string `json:"photo_key,omitempty"`
}

// Contact returns the contact block echoed into every generated header
func (u UserData) Contact() Contact {
	return Contact{
		Email:    u.Email,
		Phone:    u.Phone,
		Location: u.Location,
		GitHub:   u.GitHub,
		LinkedIn: u.LinkedIn,
	}
}

// Header returns the header block echoed into every generated document
func (u UserData) Header() Header {
	return Header{
		Name:    u.Name,
		Title:   u.Title,
		Contact: u.Contact(),
	}
}

// SkillsCopy returns the skills as a fresh non-nil slice
func (u UserData) SkillsCopy() []string {
	return nonNil(u.Skills)
}

// Clone returns a deep copy of u
func (u UserData) Clone() UserData {
	out := u
	out.Skills = cloneStrings(u.Skills)
	if u.SkillLevels != nil {
		out.SkillLevels = make(map[string]string, len(u.SkillLevels))
		for k, v := range u.SkillLevels {
			out.SkillLevels[k] = v
		}
	}
	return out
}
