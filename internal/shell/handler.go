// Package shell provides the interactive shell interface and input processing for MindfulU.
// It maps shell commands onto the orchestrator and prints results through the output package.
// Input that is not a command is sent to the companion as a chat message.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"mindfulu/internal/app"
	"mindfulu/internal/logger"
	"mindfulu/internal/output"
	"mindfulu/internal/parser"
	"mindfulu/pkg/mindtypes"
)

var (
	// ErrNotSignedIn is returned by commands that need a signed-in student.
	ErrNotSignedIn = errors.New("please sign in first: signin <email> <password>")
	// ErrExit is returned by the exit command.
	ErrExit = errors.New("exit requested")
)

// Handler executes shell input against one MindfulU session.
type Handler struct {
	app      *app.App
	printer  *output.Printer
	commands map[string]*command
}

// NewHandler creates a handler for a and prints through printer.
func NewHandler(a *app.App, printer *output.Printer) *Handler {
	h := &Handler{
		app:      a,
		printer:  printer,
		commands: make(map[string]*command),
	}
	for _, cmd := range builtinCommands() {
		h.commands[cmd.name] = cmd
	}
	return h
}

// Execute runs one line of input. Empty lines and %% comments are ignored.
// Input that does not start with a known command, or that gives a command
// more words than it takes, is sent as a chat message.
func (h *Handler) Execute(ctx context.Context, line string) error {
	in := parser.Parse(line)
	if in == nil {
		return nil
	}

	cmd, ok := h.commands[in.Name]
	if !ok || !cmd.accepts(len(in.Args)) {
		text := parser.InterpretEscapeSequences(in.Raw)
		return h.run(ctx, h.commands["chat"], invocation{rest: text, args: parser.Split(in.Raw)})
	}
	return h.run(ctx, cmd, invocation{rest: in.Text, args: in.Args})
}

func (h *Handler) run(ctx context.Context, cmd *command, in invocation) error {
	logger.CommandExecution(cmd.name, in.args)

	if cmd.guarded && !h.app.Store.State().SignedIn() {
		return ErrNotSignedIn
	}
	return cmd.run(ctx, h, in)
}

// LineReader is the part of an ishell.Shell the interactive loop uses.
type LineReader interface {
	ReadLineErr() (string, error)
	SetPrompt(prompt string)
}

// Run reads and executes lines from r until exit, end of input, ctx is done
// or two interrupts arrive in a row.
func (h *Handler) Run(ctx context.Context, r LineReader) error {
	interrupts := 0
	for ctx.Err() == nil {
		r.SetPrompt(h.Prompt())
		line, err := r.ReadLineErr()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			interrupts++
			if interrupts > 1 {
				return nil
			}
			h.printer.Muted("Press Ctrl-C again or type 'exit' to quit.")
			continue
		}
		interrupts = 0

		if err := h.Execute(ctx, line); err != nil {
			if errors.Is(err, ErrExit) {
				return nil
			}
			h.ReportError(err)
		}
	}
	return ctx.Err()
}

// ReportError prints err the way the student should see it.
func (h *Handler) ReportError(err error) {
	var validationErr *mindtypes.ValidationError
	var authErr *mindtypes.AuthError
	switch {
	case errors.As(err, &validationErr):
		h.printer.Warning(validationErr.Message)
	case errors.As(err, &authErr):
		h.printer.Error(authErr.Error())
	case errors.Is(err, ErrNotSignedIn):
		h.printer.Warning(err.Error())
	default:
		logger.Error("Command failed", "error", err)
		h.printer.Error(err.Error())
	}
}

// Prompt returns the shell prompt for the current session.
func (h *Handler) Prompt() string {
	if user := h.app.Store.State().User; user != nil {
		return fmt.Sprintf("%s@mindfulu> ", user.Name)
	}
	return "mindfulu> "
}

// Banner returns the lines shown when the shell starts.
func (h *Handler) Banner(version string) []string {
	return []string{
		fmt.Sprintf("MindfulU v%s - your student wellbeing companion", version),
		"Type 'help' for commands. Anything else you type is sent to your companion.",
	}
}

func (h *Handler) commandNames() []string {
	names := make([]string, 0, len(h.commands))
	for name := range h.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
