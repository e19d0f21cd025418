package intake

import (
	"fmt"
	"strings"

	"github.com/jonathan/resume-builder/internal/types"
)

// SkillLevels are the proficiency labels offered by the intake form
var SkillLevels = []string{"Beginner", "Intermediate", "Advanced", "Expert"}

// skillAliases maps common skill name variants to one key so that
// "golang" and "Go" count as the same skill
var skillAliases = map[string]string{
	"golang":     "go",
	"go lang":    "go",
	"js":         "javascript",
	"ts":         "typescript",
	"k8s":        "kubernetes",
	"react.js":   "react",
	"reactjs":    "react",
	"vue.js":     "vue",
	"vuejs":      "vue",
	"nodejs":     "node.js",
	"postgres":   "postgresql",
	"postgresql": "postgresql",
}

// skillKey returns the comparison key for a skill name
func skillKey(skill string) string {
	key := strings.ToLower(strings.Join(strings.Fields(skill), " "))
	if alias, ok := skillAliases[key]; ok {
		return alias
	}
	return key
}

// HasSkill reports whether data already lists skill (or an alias of it)
func HasSkill(data types.UserData, skill string) bool {
	key := skillKey(skill)
	for _, s := range data.Skills {
		if skillKey(s) == key {
			return true
		}
	}
	return false
}

// AddSkill appends skill with the default proficiency. Empty and duplicate
// skills are ignored; the bool reports whether anything was added.
func AddSkill(data types.UserData, skill string) (types.UserData, bool) {
	skill = strings.TrimSpace(skill)
	if skill == "" || HasSkill(data, skill) {
		return data, false
	}

	out := data
	out.Skills = append(append(make([]string, 0, len(data.Skills)+1), data.Skills...), skill)
	out.SkillLevels = copyLevels(data.SkillLevels)
	out.SkillLevels[skill] = types.DefaultSkillLevel
	return out, true
}

// RemoveSkill drops skill and its proficiency label
func RemoveSkill(data types.UserData, skill string) (types.UserData, bool) {
	out := data
	out.Skills = make([]string, 0, len(data.Skills))
	removed := false
	for _, s := range data.Skills {
		if s == skill {
			removed = true
			continue
		}
		out.Skills = append(out.Skills, s)
	}
	if !removed {
		return data, false
	}

	out.SkillLevels = copyLevels(data.SkillLevels)
	delete(out.SkillLevels, skill)
	return out, true
}

// SetSkillLevel sets the proficiency label for a listed skill
func SetSkillLevel(data types.UserData, skill, level string) (types.UserData, error) {
	if !containsExact(data.Skills, skill) {
		return data, fmt.Errorf("skill %q is not listed", skill)
	}
	if !containsExact(SkillLevels, level) {
		return data, fmt.Errorf("unknown skill level %q", level)
	}

	out := data
	out.SkillLevels = copyLevels(data.SkillLevels)
	out.SkillLevels[skill] = level
	return out, nil
}

// SkillLevel returns the label for skill, defaulting to Intermediate
func SkillLevel(data types.UserData, skill string) string {
	if level, ok := data.SkillLevels[skill]; ok && level != "" {
		return level
	}
	return types.DefaultSkillLevel
}

func copyLevels(in map[string]string) map[string]string {
	out := make(map[string]string, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}

func containsExact(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
