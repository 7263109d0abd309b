package output

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// PlainTextStyle renders text with an optional prefix and no styling.
type PlainTextStyle struct {
	prefix string
}

// NewPlainTextStyle creates a new plain text style with an optional prefix.
func NewPlainTextStyle(prefix string) *PlainTextStyle {
	return &PlainTextStyle{prefix: prefix}
}

// Render implements TextStyle.
func (p *PlainTextStyle) Render(text string) string {
	return p.prefix + text
}

// PlainStyleProvider marks semantics with short text prefixes instead of color.
type PlainStyleProvider struct{}

var plainStyles = PlainStyleProvider{}

// NewPlainStyleProvider creates a new plain style provider.
func NewPlainStyleProvider() *PlainStyleProvider {
	return &PlainStyleProvider{}
}

// GetStyle implements StyleProvider.
func (PlainStyleProvider) GetStyle(semantic string) TextStyle {
	switch SemanticType(semantic) {
	case SemanticSuccess:
		return NewPlainTextStyle("✓ ")
	case SemanticWarning:
		return NewPlainTextStyle("⚠ ")
	case SemanticError:
		return NewPlainTextStyle("✗ ")
	case SemanticInfo:
		return NewPlainTextStyle("ℹ ")
	case SemanticStudent:
		return NewPlainTextStyle("you: ")
	case SemanticCompanion:
		return NewPlainTextStyle("companion: ")
	default:
		return NewPlainTextStyle("")
	}
}

// IsAvailable implements StyleProvider.
func (PlainStyleProvider) IsAvailable() bool {
	return true
}

// Theme is a lipgloss palette keyed by semantic type.
type Theme struct {
	name    string
	styles  map[SemanticType]lipgloss.Style
	profile termenv.Profile
}

// NewTheme builds the named theme ("default", "dark", "light" or "plain").
// The color profile is detected from stdout.
func NewTheme(name string) *Theme {
	return NewThemeWithProfile(name, termenv.NewOutput(os.Stdout).EnvColorProfile())
}

// NewThemeWithProfile builds a theme for an explicit color profile.
func NewThemeWithProfile(name string, profile termenv.Profile) *Theme {
	t := &Theme{name: name, profile: profile, styles: make(map[SemanticType]lipgloss.Style)}

	accent, soft, muted := lipgloss.Color("#7C6FE0"), lipgloss.Color("#4FB3A9"), lipgloss.Color("#8A8F98")
	if name == "light" {
		accent, soft, muted = lipgloss.Color("#4B3FB8"), lipgloss.Color("#1F7A71"), lipgloss.Color("#5C6169")
	}

	renderer := lipgloss.NewRenderer(os.Stdout)
	renderer.SetColorProfile(profile)
	base := renderer.NewStyle()

	t.styles[SemanticPlain] = base
	t.styles[SemanticInfo] = base.Foreground(soft)
	t.styles[SemanticSuccess] = base.Foreground(lipgloss.Color("#3FA34D")).Bold(true)
	t.styles[SemanticWarning] = base.Foreground(lipgloss.Color("#E0A526"))
	t.styles[SemanticError] = base.Foreground(lipgloss.Color("#D9534F")).Bold(true)
	t.styles[SemanticStudent] = base.Foreground(accent).Bold(true)
	t.styles[SemanticCompanion] = base.Foreground(soft).PaddingLeft(2)
	t.styles[SemanticSentiment] = base.Foreground(accent).Italic(true)
	t.styles[SemanticKeyword] = base.Foreground(muted).Underline(true)
	t.styles[SemanticMuted] = base.Foreground(muted)
	t.styles[SemanticMoodLow] = base.Foreground(lipgloss.Color("#D9534F"))
	t.styles[SemanticMoodMedium] = base.Foreground(lipgloss.Color("#E0A526"))
	t.styles[SemanticMoodHigh] = base.Foreground(lipgloss.Color("#3FA34D"))
	t.styles[SemanticHighlight] = base.Foreground(accent).Bold(true)
	t.styles[SemanticBold] = base.Bold(true)

	return t
}

// Name returns the theme name.
func (t *Theme) Name() string {
	return t.name
}

// GetStyle implements StyleProvider.
func (t *Theme) GetStyle(semantic string) TextStyle {
	if style, ok := t.styles[SemanticType(semantic)]; ok {
		return themeStyle{style}
	}
	return themeStyle{t.styles[SemanticPlain]}
}

// themeStyle adapts a lipgloss.Style, whose Render is variadic, to TextStyle.
type themeStyle struct {
	style lipgloss.Style
}

// Render implements TextStyle.
func (s themeStyle) Render(text string) string {
	return s.style.Render(text)
}

// IsAvailable implements StyleProvider. Themes are unavailable on terminals
// without color, under NO_COLOR, and for the "plain" theme.
func (t *Theme) IsAvailable() bool {
	return t.name != "plain" && t.profile != termenv.Ascii
}

// SupportsColor reports whether stdout accepts color, honoring NO_COLOR.
func SupportsColor() bool {
	return termenv.NewOutput(os.Stdout).EnvColorProfile() != termenv.Ascii
}
