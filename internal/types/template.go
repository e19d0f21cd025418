package types

// Template is a catalog entry describing one visual resume template
type Template struct {
	ID          string `json:"id" yaml:"id"`
	DisplayName string `json:"display_name" yaml:"display_name"`
	AccentColor string `json:"accent_color" yaml:"accent_color"`
	Description string `json:"description" yaml:"description"`
}
