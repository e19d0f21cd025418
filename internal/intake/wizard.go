package intake

import (
	"fmt"

	"github.com/jonathan/resume-builder/internal/types"
)

// Step is a wizard state
type Step int

const (
	StepPersonalInfo Step = iota + 1
	StepSkillsAndSummary
	StepPreview
)

func (s Step) String() string {
	switch s {
	case StepPersonalInfo:
		return "personal_info"
	case StepSkillsAndSummary:
		return "skills_and_summary"
	case StepPreview:
		return "preview"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// Wizard is the three-step intake form. Only the move out of
// StepPersonalInfo is gated; moving back is always allowed.
type Wizard struct {
	step Step
	data types.UserData
}

// NewWizard starts a wizard at StepPersonalInfo
func NewWizard() *Wizard {
	return &Wizard{
		step: StepPersonalInfo,
		data: types.UserData{Skills: []string{}, SkillLevels: map[string]string{}},
	}
}

// Step returns the current step
func (w *Wizard) Step() Step {
	return w.step
}

// Data returns the collected input
func (w *Wizard) Data() types.UserData {
	return w.data
}

// SetPersonalInfo records the first-step fields
func (w *Wizard) SetPersonalInfo(name, title, email, phone, location string) {
	w.data.Name = name
	w.data.Title = title
	w.data.Email = email
	w.data.Phone = phone
	w.data.Location = location
}

// SetLinks records the optional profile links
func (w *Wizard) SetLinks(github, linkedin string) {
	w.data.GitHub = github
	w.data.LinkedIn = linkedin
}

// SetDescription records the free-text summary
func (w *Wizard) SetDescription(description string) {
	w.data.Description = description
}

// SetPhoto records the photo store key
func (w *Wizard) SetPhoto(key string) {
	w.data.PhotoKey = key
}

// AddSkill adds a skill at the default level; see AddSkill
func (w *Wizard) AddSkill(skill string) bool {
	var added bool
	w.data, added = AddSkill(w.data, skill)
	return added
}

// RemoveSkill removes a skill and its level
func (w *Wizard) RemoveSkill(skill string) bool {
	var removed bool
	w.data, removed = RemoveSkill(w.data, skill)
	return removed
}

// SetSkillLevel changes the level of a listed skill
func (w *Wizard) SetSkillLevel(skill, level string) error {
	data, err := SetSkillLevel(w.data, skill, level)
	if err != nil {
		return err
	}
	w.data = data
	return nil
}

// ApplySummaryPreset replaces the description with a preset summary
func (w *Wizard) ApplySummaryPreset(preset Preset) error {
	data, err := ApplySummaryPreset(w.data, preset)
	if err != nil {
		return err
	}
	w.data = data
	return nil
}

// CanAdvance reports the fields blocking the next forward move
func (w *Wizard) CanAdvance() []FieldError {
	if w.step != StepPersonalInfo {
		return nil
	}
	var blocked []FieldError
	if !ValidEmail(w.data.Email) {
		blocked = append(blocked, FieldError{Field: "email", Rule: "resume_email"})
	}
	if !ValidPhone(w.data.Phone) {
		blocked = append(blocked, FieldError{Field: "phone", Rule: "resume_phone"})
	}
	return blocked
}

// Next moves forward one step. Leaving StepPersonalInfo requires a valid
// email and phone; the last step has no successor.
func (w *Wizard) Next() error {
	if w.step == StepPreview {
		return fmt.Errorf("already at %s", w.step)
	}
	if blocked := w.CanAdvance(); len(blocked) > 0 {
		return &ValidationError{Errors: blocked}
	}
	w.step++
	return nil
}

// Back moves back one step; at the first step it does nothing
func (w *Wizard) Back() {
	if w.step > StepPersonalInfo {
		w.step--
	}
}

// Submit returns the collected input once the wizard reached the preview
// step and the data passes the full intake validation
func (w *Wizard) Submit() (types.UserData, error) {
	if w.step != StepPreview {
		return types.UserData{}, fmt.Errorf("cannot submit from %s", w.step)
	}
	if err := Validate(w.data); err != nil {
		return types.UserData{}, err
	}
	return w.data, nil
}
