package config

// Theme defines the colors used when rendering boards in the terminal
type Theme struct {
	// Preset name (e.g., "default", "monochrome")
	Preset string `yaml:"preset"`

	// Primary accent color (board title, list headers)
	Accent string `yaml:"accent"`

	ListBorder string `yaml:"list_border"`
	CardBorder string `yaml:"card_border"`

	// Text colors
	Title  string `yaml:"title"`
	Subtle string `yaml:"subtle"` // Muted/placeholder text
	Normal string `yaml:"normal"`

	Label string `yaml:"label"`
	Alert string `yaml:"alert"`
}

// DefaultTheme returns the default color scheme (purple theme)
func DefaultTheme() Theme {
	return Theme{
		Preset:     "default",
		Accent:     "#874BFD",
		ListBorder: "#5F87D7",
		CardBorder: "#585858",
		Title:      "#D75FD7",
		Subtle:     "#585858",
		Normal:     "#D0D0D0",
		Label:      "#5FD75F",
		Alert:      "#FFD700",
	}
}

// MonochromeTheme returns a black and white color scheme
func MonochromeTheme() Theme {
	return Theme{
		Preset:     "monochrome",
		Accent:     "#FFFFFF",
		ListBorder: "#FFFFFF",
		CardBorder: "#808080",
		Title:      "#FFFFFF",
		Subtle:     "#808080",
		Normal:     "#D0D0D0",
		Label:      "#FFFFFF",
		Alert:      "#FFFFFF",
	}
}

// ThemePreset returns a preset theme by name
func ThemePreset(name string) Theme {
	if name == "monochrome" {
		return MonochromeTheme()
	}
	return DefaultTheme()
}

// ApplyDefaults fills in missing color values using the preset as base
func (t *Theme) ApplyDefaults() {
	preset := ThemePreset(t.Preset)
	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	fill(&t.Preset, preset.Preset)
	fill(&t.Accent, preset.Accent)
	fill(&t.ListBorder, preset.ListBorder)
	fill(&t.CardBorder, preset.CardBorder)
	fill(&t.Title, preset.Title)
	fill(&t.Subtle, preset.Subtle)
	fill(&t.Normal, preset.Normal)
	fill(&t.Label, preset.Label)
	fill(&t.Alert, preset.Alert)
}
