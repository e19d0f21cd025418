package intake

import (
	"fmt"
	"strings"

	"github.com/jonathan/resume-builder/internal/prompts"
	"github.com/jonathan/resume-builder/internal/types"
)

// Preset names a canned summary
type Preset string

const (
	PresetProfessional Preset = "professional"
	PresetCreative     Preset = "creative"
	PresetTechnical    Preset = "technical"
)

// Presets lists the available summary presets
var Presets = []Preset{PresetProfessional, PresetCreative, PresetTechnical}

// presetSkills describes how many skills a preset names and the tail added
// when more are listed
type presetSkills struct {
	count int
	sep   string
	more  string
}

var presetPhrasing = map[Preset]presetSkills{
	PresetProfessional: {count: 3, sep: ", ", more: " and more"},
	PresetCreative:     {count: 2, sep: " and ", more: " among other skills"},
	PresetTechnical:    {count: 3, sep: ", ", more: " and related technologies"},
}

// SummaryPreset renders preset for data. Unknown presets return the current
// description unchanged.
func SummaryPreset(data types.UserData, preset Preset) (string, error) {
	phrasing, ok := presetPhrasing[preset]
	if !ok {
		return data.Description, nil
	}

	n := phrasing.count
	if len(data.Skills) < n {
		n = len(data.Skills)
	}
	skills := strings.Join(data.Skills[:n], phrasing.sep)
	if len(data.Skills) > phrasing.count {
		skills += phrasing.more
	}

	return prompts.Render("generation.json", fmt.Sprintf("summary-%s", preset), map[string]string{
		"Title":  data.Title,
		"Skills": skills,
	})
}

// ApplySummaryPreset replaces the description with the rendered preset
func ApplySummaryPreset(data types.UserData, preset Preset) (types.UserData, error) {
	summary, err := SummaryPreset(data, preset)
	if err != nil {
		return data, err
	}
	data.Description = summary
	return data, nil
}
