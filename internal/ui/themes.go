// Package ui provides theme and color support for terminal output.
// It is shared by the command-line front end and the configuration usage
// screen so that both honor the same color settings.
package ui

import (
	"os"
	"sort"
	"strings"
	"sync"
)

// Theme defines a color scheme for UI output.
// Each field holds the ANSI escape code for one color role.
type Theme struct {
	// Name is the identifier used by the -theme flag.
	Name string
	// Primary is the accent color for results and headers.
	Primary string
	// Secondary is used for less prominent elements such as defaults.
	Secondary string
	// Success marks completed calculations.
	Success string
	// Warning marks cautions and durations.
	Warning string
	// Error marks failures.
	Error string
	// Info is used for continued-fraction terms and metadata.
	Info string
	// Bold is the escape code for bold text.
	Bold string
	// Underline is the escape code for underlined text.
	Underline string
	// Reset clears all formatting.
	Reset string
}

var (
	// DarkTheme is tuned for dark terminal backgrounds.
	DarkTheme = Theme{
		Name:      "dark",
		Primary:   "\033[38;5;39m",  // Bright blue
		Secondary: "\033[38;5;245m", // Grey
		Success:   "\033[38;5;82m",  // Bright green
		Warning:   "\033[38;5;220m", // Yellow
		Error:     "\033[38;5;196m", // Red
		Info:      "\033[38;5;141m", // Purple
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
	}

	// LightTheme is tuned for light terminal backgrounds.
	LightTheme = Theme{
		Name:      "light",
		Primary:   "\033[38;5;27m",  // Dark blue
		Secondary: "\033[38;5;240m", // Dark grey
		Success:   "\033[38;5;28m",  // Dark green
		Warning:   "\033[38;5;130m", // Orange
		Error:     "\033[38;5;124m", // Dark red
		Info:      "\033[38;5;54m",  // Dark purple
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
	}

	// NoColorTheme disables all color output.
	NoColorTheme = Theme{Name: "none"}

	themes = map[string]Theme{
		DarkTheme.Name:    DarkTheme,
		LightTheme.Name:   LightTheme,
		NoColorTheme.Name: NoColorTheme,
	}

	currentTheme = DarkTheme
	themeMutex   sync.RWMutex
)

// LookupTheme returns the theme registered under name (case-insensitive).
func LookupTheme(name string) (Theme, bool) {
	t, ok := themes[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// ThemeNames returns the sorted names accepted by LookupTheme.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetCurrentTheme returns the active theme.
func GetCurrentTheme() Theme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()
	return currentTheme
}

// SetCurrentTheme replaces the active theme. Tests use it to restore state.
func SetCurrentTheme(t Theme) {
	themeMutex.Lock()
	defer themeMutex.Unlock()
	currentTheme = t
}

// SetTheme activates a theme by name. Unknown names select the dark theme.
func SetTheme(name string) {
	t, ok := LookupTheme(name)
	if !ok {
		t = DarkTheme
	}
	SetCurrentTheme(t)
}

// InitTheme selects the theme at startup. Colors are disabled when noColor
// is set or the NO_COLOR environment variable exists (https://no-color.org/);
// otherwise the named theme is used, falling back to dark.
func InitTheme(noColor bool, name string) {
	if noColor {
		SetCurrentTheme(NoColorTheme)
		return
	}
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		SetCurrentTheme(NoColorTheme)
		return
	}
	SetTheme(name)
}
