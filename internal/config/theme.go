package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Theme holds the color overrides the renderer uses. Every field is an
// ANSI or hex color accepted by lipgloss.
type Theme struct {
	Title      string `yaml:"title"`      // program name in the summary
	Summary    string `yaml:"summary"`    // host/connection lines
	Status     string `yaml:"status"`     // command/status line
	Error      string `yaml:"error"`      // failure messages
	TableText  string `yaml:"tableText"`  // data cells
	SortColumn string `yaml:"sortColumn"` // reverse-video sort header fallback fg
}

// DefaultTheme returns the stock colors.
func DefaultTheme() *Theme {
	return &Theme{
		Title:      "10",
		Summary:    "7",
		Status:     "6",
		Error:      "9",
		TableText:  "15",
		SortColumn: "0",
	}
}

// CurrentTheme is the loaded theme (defaults until InitTheme runs).
var CurrentTheme = DefaultTheme()

func themePath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "pgtop", "theme.yaml"), nil
}

// LoadTheme reads the theme file, returning defaults if it is absent.
// Unset fields keep their default value.
func LoadTheme() (*Theme, error) {
	path, err := themePath()
	if err != nil {
		return DefaultTheme(), nil
	}

	// #nosec G304 - path is constructed from trusted sources
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultTheme(), nil
		}
		return DefaultTheme(), err
	}

	theme := DefaultTheme()
	if err := yaml.Unmarshal(data, theme); err != nil {
		return DefaultTheme(), err
	}
	return theme, nil
}

// InitTheme loads the theme into CurrentTheme.
func InitTheme() error {
	theme, err := LoadTheme()
	if err != nil {
		return err
	}
	CurrentTheme = theme
	return nil
}
