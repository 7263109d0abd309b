// Package output provides the console output system for MindfulU.
// Printers receive an optional StyleProvider so styling stays swappable and
// tests can run against plain, deterministic text.
package output

// StyleProvider is implemented by themes that render semantic text.
// The output package depends only on this interface.
type StyleProvider interface {
	// GetStyle returns a TextStyle for the given semantic type.
	GetStyle(semantic string) TextStyle

	// IsAvailable returns true if the provider can style output right now.
	// Printers fall back to plain text otherwise.
	IsAvailable() bool
}

// TextStyle renders text with styling. Themes wrap lipgloss styles to satisfy it.
type TextStyle interface {
	Render(text string) string
}

// Mode defines different output modes the printer can operate in.
type Mode int

const (
	// ModeAuto styles output when a provider is available
	ModeAuto Mode = iota

	// ModeStyled forces styled output
	ModeStyled

	// ModePlain forces plain text output
	ModePlain

	// ModeJSON outputs one JSON object per line for machine consumption
	ModeJSON
)

// SemanticType defines the semantic meaning of output for consistent styling.
type SemanticType string

const (
	// SemanticPlain represents plain text without any semantic meaning.
	SemanticPlain SemanticType = "plain"
	// SemanticInfo represents informational text.
	SemanticInfo SemanticType = "info"
	// SemanticSuccess represents success or completion text.
	SemanticSuccess SemanticType = "success"
	// SemanticWarning represents warning text.
	SemanticWarning SemanticType = "warning"
	// SemanticError represents error text.
	SemanticError SemanticType = "error"

	// SemanticStudent is a message written by the student.
	SemanticStudent SemanticType = "student"
	// SemanticCompanion is a reply from the companion.
	SemanticCompanion SemanticType = "companion"
	// SemanticSentiment is a sentiment label.
	SemanticSentiment SemanticType = "sentiment"
	// SemanticKeyword is a detected keyword.
	SemanticKeyword SemanticType = "keyword"
	// SemanticMuted is secondary text such as timestamps and ids.
	SemanticMuted SemanticType = "muted"

	// SemanticMoodLow is a mood score of 3 or less.
	SemanticMoodLow SemanticType = "mood_low"
	// SemanticMoodMedium is a mood score from 4 to 7.
	SemanticMoodMedium SemanticType = "mood_medium"
	// SemanticMoodHigh is a mood score above 7.
	SemanticMoodHigh SemanticType = "mood_high"

	// SemanticHighlight represents emphasized text.
	SemanticHighlight SemanticType = "highlight"
	// SemanticBold represents bold text styling.
	SemanticBold SemanticType = "bold"
)

// MoodSemantic maps a mood band name ("low", "medium", "high") to its semantic type.
func MoodSemantic(band string) SemanticType {
	switch band {
	case "low":
		return SemanticMoodLow
	case "high":
		return SemanticMoodHigh
	default:
		return SemanticMoodMedium
	}
}
