package model

type ThemeMode string

const (
	ThemeSystem ThemeMode = "system"
	ThemeLight  ThemeMode = "light"
	ThemeDark   ThemeMode = "dark"
)

func (m ThemeMode) IsValid() bool {
	switch m {
	case ThemeSystem, ThemeLight, ThemeDark:
		return true
	default:
		return false
	}
}

// ParseThemeMode maps unknown or empty values to ThemeSystem.
func ParseThemeMode(raw string) ThemeMode {
	m := ThemeMode(raw)
	if m.IsValid() {
		return m
	}
	return ThemeSystem
}

// Next cycles system -> light -> dark -> system.
func (m ThemeMode) Next() ThemeMode {
	switch m {
	case ThemeSystem:
		return ThemeLight
	case ThemeLight:
		return ThemeDark
	default:
		return ThemeSystem
	}
}
