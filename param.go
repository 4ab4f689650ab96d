package colorpick

import (
	"fmt"
	"strings"
	"time"

	"github.com/gogpu/colorpick/surface"
)

// Placeholder is a semantic colour role adjusted by the sampled background.
type Placeholder uint8

const (
	PlaceholderNone Placeholder = iota
	PlaceholderSurface
	PlaceholderSurfaceContrast
	PlaceholderTextContrast
	PlaceholderAccent
	PlaceholderForeground

	numPlaceholders
)

var placeholderNames = [numPlaceholders]string{
	"none", "surface", "surface_contrast", "text_contrast", "accent", "foreground",
}

// String returns the lower-case name used in configuration files.
func (p Placeholder) String() string {
	if p < numPlaceholders {
		return placeholderNames[p]
	}
	return fmt.Sprintf("Placeholder(%d)", uint8(p))
}

// ParsePlaceholder is the inverse of Placeholder.String. It accepts any case
// and '-' in place of '_'.
func ParsePlaceholder(s string) (Placeholder, error) {
	n := normalizeName(s)
	for i, name := range placeholderNames {
		if name == n {
			return Placeholder(i), nil
		}
	}
	return PlaceholderNone, fmt.Errorf("colorpick: unknown placeholder %q", s)
}

// Strategy controls whether and how a node samples its background.
type Strategy uint8

const (
	// StrategyNone disables sampling.
	StrategyNone Strategy = iota

	// StrategyDominant samples the most common colour.
	StrategyDominant

	// StrategyAverage samples the mean colour.
	StrategyAverage

	// StrategyContrast samples the mean colour and drives a contrast colour.
	StrategyContrast

	// StrategyClientCallback reports luminance zone changes to a client
	// instead of driving paint-time colour.
	StrategyClientCallback

	numStrategies
)

var strategyNames = [numStrategies]string{
	"none", "dominant", "average", "contrast", "client_callback",
}

// String returns the lower-case name used in configuration files.
func (s Strategy) String() string {
	if s < numStrategies {
		return strategyNames[s]
	}
	return fmt.Sprintf("Strategy(%d)", uint8(s))
}

// ParseStrategy is the inverse of Strategy.String.
func ParseStrategy(s string) (Strategy, error) {
	n := normalizeName(s)
	for i, name := range strategyNames {
		if name == n {
			return Strategy(i), nil
		}
	}
	return StrategyNone, fmt.Errorf("colorpick: unknown strategy %q", s)
}

func normalizeName(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
}

// NotifyThreshold bounds the luminance zones used for client notification.
// Luminance below Dark is dark, above Light is light, otherwise neutral.
type NotifyThreshold struct {
	Dark  uint32
	Light uint32
}

// DefaultNotifyThreshold is {150, 220}.
var DefaultNotifyThreshold = NotifyThreshold{Dark: ContrastThresholdLow, Light: ContrastThresholdHigh}

// Param configures colour picking for one node.
type Param struct {
	Placeholder     Placeholder
	Strategy        Strategy
	Interval        time.Duration // minimum time between samples
	NotifyThreshold NotifyThreshold

	// Rect overrides the region sampled, in the node's local coordinates.
	// Nil means the node's draw bounds.
	Rect *surface.Rect
}

// DefaultParam returns a disabled Param with default thresholds.
func DefaultParam() Param {
	return Param{NotifyThreshold: DefaultNotifyThreshold}
}

// Enabled reports whether the param requests sampling.
func (p Param) Enabled() bool {
	return p.Strategy != StrategyNone
}

// intervalMs returns the interval in whole milliseconds, never negative.
func (p Param) intervalMs() int64 {
	if p.Interval <= 0 {
		return 0
	}
	return p.Interval.Milliseconds()
}
