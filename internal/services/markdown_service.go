package services

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"mindfulu/internal/logger"
)

// MarkdownService provides markdown rendering capabilities for MindfulU using Glamour.
// Insights and journal listings are produced as markdown and rendered through it.
type MarkdownService struct {
	initialized bool
	style       string
	wordWrap    int
	renderer    *glamour.TermRenderer
}

// NewMarkdownService creates a new MarkdownService instance.
// style is one of GetAvailableStyles(); an empty style means "auto".
func NewMarkdownService(style string) *MarkdownService {
	if style == "" {
		style = "auto"
	}
	return &MarkdownService{
		style:    style,
		wordWrap: 80,
	}
}

// Name returns the service name "markdown" for registration.
func (m *MarkdownService) Name() string {
	return "markdown"
}

// Initialize creates the terminal renderer.
func (m *MarkdownService) Initialize() error {
	renderer, err := m.newRenderer(m.style, m.wordWrap)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	m.renderer = renderer
	m.initialized = true

	logger.Debug("MarkdownService initialized successfully", "style", m.style)
	return nil
}

// Render renders markdown content to terminal output.
func (m *MarkdownService) Render(markdown string) (string, error) {
	if !m.initialized {
		return "", fmt.Errorf("markdown service not initialized")
	}

	if strings.TrimSpace(markdown) == "" {
		return "", fmt.Errorf("markdown content cannot be empty")
	}

	rendered, err := m.renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}

	return rendered, nil
}

// RenderWithStyle renders markdown content with a specific style.
// Supported styles include: "auto", "dark", "light", "notty", "ascii"
func (m *MarkdownService) RenderWithStyle(markdown string, style string) (string, error) {
	if !m.initialized {
		return "", fmt.Errorf("markdown service not initialized")
	}

	if strings.TrimSpace(markdown) == "" {
		return "", fmt.Errorf("markdown content cannot be empty")
	}

	renderer, err := m.newRenderer(style, m.wordWrap)
	if err != nil {
		// Fall back to default renderer if style is not available
		logger.Debug("Failed to create renderer with style, falling back to default", "style", style, "error", err)
		return m.Render(markdown)
	}

	rendered, err := renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown with style '%s': %w", style, err)
	}

	return rendered, nil
}

// SetWordWrap sets the word wrap width for markdown rendering.
func (m *MarkdownService) SetWordWrap(width int) error {
	if !m.initialized {
		return fmt.Errorf("markdown service not initialized")
	}

	if width <= 0 {
		return fmt.Errorf("word wrap width must be positive, got %d", width)
	}

	renderer, err := m.newRenderer(m.style, width)
	if err != nil {
		return fmt.Errorf("failed to create renderer with word wrap %d: %w", width, err)
	}

	m.renderer = renderer
	m.wordWrap = width
	logger.Debug("MarkdownService word wrap updated", "width", width)
	return nil
}

// Style returns the configured glamour style.
func (m *MarkdownService) Style() string {
	return m.style
}

// GetAvailableStyles returns a list of available Glamour styles.
func (m *MarkdownService) GetAvailableStyles() []string {
	return []string{
		"auto",  // Auto-detect based on terminal
		"dark",  // Dark theme
		"light", // Light theme
		"notty", // Plain text (no colors)
		"ascii", // ASCII-only styling
	}
}

func (m *MarkdownService) newRenderer(style string, width int) (*glamour.TermRenderer, error) {
	if strings.ToLower(style) == "auto" {
		return glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
	}
	return glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
}
