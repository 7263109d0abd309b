package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/x/ansi"
)

const defaultWidth = 72

// Printer writes semantic output in plain, styled or JSON form.
// It is safe for concurrent use.
type Printer struct {
	styleProvider StyleProvider
	writer        io.Writer
	mode          Mode
	forcePlain    bool
	silent        bool
	prefix        string
	width         int

	mu sync.Mutex
}

// NewPrinter creates a new Printer with the given options.
// By default, it writes to os.Stdout with automatic mode detection.
func NewPrinter(options ...Option) *Printer {
	p := &Printer{
		writer: os.Stdout,
		mode:   ModeAuto,
		width:  defaultWidth,
	}

	for _, opt := range options {
		opt(p)
	}

	return p
}

// Print outputs text without any semantic styling.
func (p *Printer) Print(text string) {
	p.output(SemanticPlain, text, false)
}

// Printf outputs formatted text without any semantic styling.
func (p *Printer) Printf(format string, args ...interface{}) {
	p.output(SemanticPlain, fmt.Sprintf(format, args...), false)
}

// Println outputs text with a newline without any semantic styling.
func (p *Printer) Println(text string) {
	p.output(SemanticPlain, text, true)
}

// Info outputs informational text.
func (p *Printer) Info(text string) {
	p.output(SemanticInfo, text, true)
}

// Success outputs success text.
func (p *Printer) Success(text string) {
	p.output(SemanticSuccess, text, true)
}

// Warning outputs warning text.
func (p *Printer) Warning(text string) {
	p.output(SemanticWarning, text, true)
}

// Error outputs error text.
func (p *Printer) Error(text string) {
	p.output(SemanticError, text, true)
}

// Highlight outputs emphasized text.
func (p *Printer) Highlight(text string) {
	p.output(SemanticHighlight, text, false)
}

// Bold outputs bold text.
func (p *Printer) Bold(text string) {
	p.output(SemanticBold, text, false)
}

// Student outputs a message written by the student.
func (p *Printer) Student(text string) {
	p.output(SemanticStudent, text, true)
}

// Companion outputs a reply from the companion.
func (p *Printer) Companion(text string) {
	p.output(SemanticCompanion, text, true)
}

// Muted outputs secondary text.
func (p *Printer) Muted(text string) {
	p.output(SemanticMuted, text, true)
}

// Mood outputs a mood bar for a score in the given band ("low", "medium", "high").
func (p *Printer) Mood(mood int, band string) {
	p.output(MoodSemantic(band), MoodBar(mood), true)
}

// Preview outputs text truncated to the printer width.
func (p *Printer) Preview(text string) {
	p.output(SemanticPlain, Truncate(text, p.width), true)
}

// Sentiment outputs a sentiment label and its keywords on one line.
func (p *Printer) Sentiment(sentiment string, keywords []string) {
	p.mu.Lock()
	plain := p.mode == ModeJSON || !p.stylable()
	p.mu.Unlock()

	if plain {
		line := "sentiment: " + sentiment
		if len(keywords) > 0 {
			line += " (" + strings.Join(keywords, ", ") + ")"
		}
		p.output(SemanticSentiment, line, true)
		return
	}

	line := p.style(SemanticSentiment, sentiment)
	if len(keywords) > 0 {
		styled := make([]string, len(keywords))
		for i, kw := range keywords {
			styled[i] = p.style(SemanticKeyword, kw)
		}
		line += " " + strings.Join(styled, " ")
	}
	p.write(line + "\n")
}

// MoodBar renders a mood score as ten filled or empty dots followed by the score.
func MoodBar(mood int) string {
	filled := mood
	if filled < 0 {
		filled = 0
	}
	if filled > 10 {
		filled = 10
	}
	return strings.Repeat("●", filled) + strings.Repeat("○", 10-filled) + fmt.Sprintf(" %d/10", mood)
}

// Truncate shortens text to width terminal cells, appending an ellipsis when cut.
// Newlines are folded into spaces. ANSI sequences are preserved.
func Truncate(text string, width int) string {
	text = strings.Join(strings.Fields(text), " ")
	if width <= 0 || ansi.StringWidth(text) <= width {
		return text
	}
	return ansi.Truncate(text, width, "…")
}

func (p *Printer) output(semantic SemanticType, text string, addNewline bool) {
	if p.silent {
		return
	}

	p.mu.Lock()
	var finalText string
	switch p.mode {
	case ModeJSON:
		finalText = p.renderJSON(semantic, text)
	case ModeStyled:
		finalText = p.renderStyled(semantic, text, addNewline)
	default:
		finalText = p.renderText(semantic, text, addNewline)
	}
	p.mu.Unlock()

	p.write(finalText)
}

func (p *Printer) write(text string) {
	if p.silent {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.prefix != "" {
		text = p.prefix + text
	}
	_, _ = fmt.Fprint(p.writer, text) // Ignore write errors for output operations
}

// style renders text with the semantic style if the printer is stylable.
func (p *Printer) style(semantic SemanticType, text string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.stylable() {
		return text
	}
	return p.styleProvider.GetStyle(string(semantic)).Render(text)
}

// renderText renders text in plain or auto mode.
func (p *Printer) renderText(semantic SemanticType, text string, addNewline bool) string {
	var result string
	if p.stylable() {
		result = p.styleProvider.GetStyle(string(semantic)).Render(text)
	} else {
		result = plainStyles.GetStyle(string(semantic)).Render(text)
	}

	if addNewline && !strings.HasSuffix(result, "\n") {
		result += "\n"
	}
	return result
}

// renderStyled renders text with forced styling, falling back to plain.
func (p *Printer) renderStyled(semantic SemanticType, text string, addNewline bool) string {
	if p.styleProvider != nil && p.styleProvider.IsAvailable() {
		result := p.styleProvider.GetStyle(string(semantic)).Render(text)
		if addNewline && !strings.HasSuffix(result, "\n") {
			result += "\n"
		}
		return result
	}
	return p.renderText(semantic, text, addNewline)
}

// renderJSON renders output as structured JSON.
func (p *Printer) renderJSON(semantic SemanticType, text string) string {
	output := map[string]interface{}{
		"type":    semantic,
		"message": text,
	}

	jsonBytes, err := json.Marshal(output)
	if err != nil {
		return text + "\n"
	}
	return string(jsonBytes) + "\n"
}

func (p *Printer) stylable() bool {
	return !p.forcePlain && p.mode != ModePlain && p.styleProvider != nil && p.styleProvider.IsAvailable()
}

// SetWriter changes the output writer.
func (p *Printer) SetWriter(writer io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writer = writer
}

// SetMode changes the output mode.
func (p *Printer) SetMode(mode Mode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mode = mode
}

// SetStyleProvider changes the style provider. Pass nil to disable styling.
func (p *Printer) SetStyleProvider(provider StyleProvider) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.styleProvider = provider
}

// Width returns the column width used for previews.
func (p *Printer) Width() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.width
}

// IsStylable returns true if the printer can apply styles.
func (p *Printer) IsStylable() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stylable()
}

// String returns a string representation for debugging.
func (p *Printer) String() string {
	hasStyles := "no"
	if p.IsStylable() {
		hasStyles = "yes"
	}
	return fmt.Sprintf("Printer{mode: %v, styles: %s, writer: %T}", p.mode, hasStyles, p.writer)
}
