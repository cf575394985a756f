package logger

import (
	"fmt"

	"github.com/fatih/color"
)

// colorScheme gives consistent colors to the handful of status concepts
// the console logger prints: granted/passed (green), denied/failed (red),
// escalated/warning (yellow), and plain labels (cyan).
type colorScheme struct {
	success *color.Color
	fail    *color.Color
	warn    *color.Color
	label   *color.Color
	value   *color.Color
}

// newColorScheme builds a scheme whose colors are no-ops when enabled is
// false, so a single ConsoleLogger can decide per-writer whether to emit
// escape codes instead of relying on fatih/color's process-global
// NoColor switch.
func newColorScheme(enabled bool) *colorScheme {
	s := &colorScheme{
		success: color.New(color.FgGreen),
		fail:    color.New(color.FgRed),
		warn:    color.New(color.FgYellow),
		label:   color.New(color.FgCyan),
		value:   color.New(color.FgWhite),
	}
	if !enabled {
		for _, c := range []*color.Color{s.success, s.fail, s.warn, s.label, s.value} {
			c.DisableColor()
		}
	}
	return s
}

func formatColorizedField(label string, value interface{}, scheme *colorScheme) string {
	return fmt.Sprintf("%s: %s", scheme.label.Sprint(label), scheme.value.Sprintf("%v", value))
}
