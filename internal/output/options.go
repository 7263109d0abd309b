package output

import (
	"io"

	"mindfulu/internal/config"
)

// Option configures a Printer.
type Option func(*Printer)

// ForConfig returns the options a session printer writing to w uses.
// Test mode prints plain, deterministic text. Otherwise the theme follows the
// render style: "light" and "dark" pick their palettes, "notty" and "ascii"
// print plain text, anything else uses the default palette.
func ForConfig(cfg *config.Config, w io.Writer) []Option {
	opts := []Option{WithWriter(w)}
	if cfg.TestMode {
		return append(opts, TestMode())
	}
	switch cfg.MarkdownStyle {
	case "notty", "ascii":
		return append(opts, TestMode())
	case "light", "dark":
		return append(opts, WithTheme(cfg.MarkdownStyle))
	default:
		return append(opts, WithTheme("default"))
	}
}

// WithStyles styles output through provider. Providers that are nil or
// unavailable leave the printer plain.
func WithStyles(provider StyleProvider) Option {
	return func(p *Printer) {
		if provider != nil && provider.IsAvailable() {
			p.styleProvider = provider
		}
	}
}

// WithTheme styles output with the named Theme.
func WithTheme(name string) Option {
	return WithStyles(NewTheme(name))
}

// WithWriter sends output to writer instead of stdout.
func WithWriter(writer io.Writer) Option {
	return func(p *Printer) {
		if writer != nil {
			p.writer = writer
		}
	}
}

// WithMode sets the output mode.
func WithMode(mode Mode) Option {
	return func(p *Printer) {
		p.mode = mode
	}
}

// WithWidth sets the column width journal previews are cut to.
func WithWidth(width int) Option {
	return func(p *Printer) {
		if width > 0 {
			p.width = width
		}
	}
}

// JSON prints one JSON object per line.
func JSON() Option {
	return func(p *Printer) {
		p.mode = ModeJSON
	}
}

// TestMode prints plain text and ignores any style provider.
func TestMode() Option {
	return func(p *Printer) {
		p.mode = ModePlain
		p.forcePlain = true
	}
}

// Silent drops all output.
func Silent() Option {
	return func(p *Printer) {
		p.silent = true
	}
}

// WithPrefix starts every line with prefix.
func WithPrefix(prefix string) Option {
	return func(p *Printer) {
		p.prefix = prefix
	}
}
