package shell

import (
	"context"
	"fmt"
	"strconv"

	"mindfulu/internal/orchestration"
	"mindfulu/internal/output"
	"mindfulu/internal/parser"
	"mindfulu/internal/services"
	"mindfulu/pkg/mindtypes"
)

type invocation struct {
	// rest is the text after the command name, escape sequences interpreted.
	rest string
	args []string
}

type command struct {
	name  string
	usage string
	help  string
	// guarded commands require a signed-in student.
	guarded bool
	// maxArgs caps the words a command accepts; anyArgs means no cap.
	// A line with more words is a chat message that happens to start with
	// the command name, as in "exit exams are stressing me".
	maxArgs int
	run     func(ctx context.Context, h *Handler, in invocation) error
}

const anyArgs = -1

func (c *command) accepts(n int) bool {
	return c.maxArgs == anyArgs || n <= c.maxArgs
}

func builtinCommands() []*command {
	return []*command{
		{name: "signin", usage: "signin <email> <password>", help: "sign in to MindfulU", maxArgs: anyArgs, run: runSignIn},
		{name: "signout", usage: "signout", help: "sign out and clear the session", run: runSignOut},
		{name: "whoami", usage: "whoami", help: "show the signed-in student", run: runWhoAmI},
		{name: "journal", usage: "journal <mood 1-10> <text>", help: "write a journal entry", guarded: true, maxArgs: anyArgs, run: runJournal},
		{name: "draft", usage: "draft [<mood 1-10> <text> | save | clear]", help: "edit or save the journal draft", guarded: true, maxArgs: anyArgs, run: runDraft},
		{name: "entries", usage: "entries [count]", help: "list journal entries, newest first", guarded: true, maxArgs: 1, run: runEntries},
		{name: "chat", usage: "chat <message>", help: "talk to your companion", guarded: true, maxArgs: anyArgs, run: runChat},
		{name: "history", usage: "history", help: "show the conversation so far", guarded: true, run: runHistory},
		{name: "suggest", usage: "suggest", help: "show suggested things to say", guarded: true, run: runSuggest},
		{name: "insights", usage: "insights", help: "show your wellbeing dashboard", guarded: true, run: runInsights},
		{name: "export", usage: "export <file.yaml|file.json>", help: "export your data", guarded: true, maxArgs: 1, run: runExport},
		{name: "status", usage: "status", help: "show pending interactions and errors", run: runStatus},
		{name: "help", usage: "help", help: "list commands", run: runHelp},
		{name: "exit", usage: "exit", help: "leave MindfulU", run: runExit},
	}
}

func runSignIn(ctx context.Context, h *Handler, in invocation) error {
	if len(in.args) != 2 {
		return mindtypes.NewValidationError("", "usage: signin <email> <password>")
	}

	task, err := h.app.Orchestrator.SignIn(ctx, in.args[0], in.args[1])
	if err != nil {
		return err
	}
	if err := task.Wait(ctx); err != nil {
		return err
	}

	user := h.app.Store.State().User
	if user == nil {
		return fmt.Errorf("sign in did not complete")
	}
	h.printer.Success(fmt.Sprintf("Welcome, %s!", user.Name))
	h.printer.Companion(h.app.Conversation.Greeting())
	return nil
}

func runSignOut(_ context.Context, h *Handler, _ invocation) error {
	h.app.Orchestrator.SignOut()
	h.printer.Info("Signed out. Take care of yourself.")
	return nil
}

func runWhoAmI(_ context.Context, h *Handler, _ invocation) error {
	user := h.app.Store.State().User
	if user == nil {
		h.printer.Info("Not signed in.")
		return nil
	}
	h.printer.Println(fmt.Sprintf("%s <%s>", user.Name, user.Email))
	h.printer.Muted(user.ID)
	return nil
}

// parseMoodAndText splits "<mood> <text>" arguments.
func parseMoodAndText(in invocation) (int, string, error) {
	if len(in.args) < 2 {
		return 0, "", mindtypes.NewValidationError("", "usage: journal <mood 1-10> <text>")
	}
	mood, err := strconv.Atoi(in.args[0])
	if err != nil {
		return 0, "", mindtypes.NewValidationError("mood", fmt.Sprintf("mood must be a number, got %q", in.args[0]))
	}
	return mood, parser.Remainder(in.rest, 1), nil
}

func runJournal(ctx context.Context, h *Handler, in invocation) error {
	mood, text, err := parseMoodAndText(in)
	if err != nil {
		return err
	}
	task, err := h.app.Orchestrator.SaveEntry(ctx, text, mood)
	if err != nil {
		return err
	}
	return h.awaitEntry(ctx, task)
}

func runDraft(ctx context.Context, h *Handler, in invocation) error {
	switch {
	case len(in.args) == 0:
		d := h.app.Orchestrator.Draft()
		if d.Text == "" {
			h.printer.Muted("(empty draft)")
		} else {
			h.printer.Println(d.Text)
		}
		h.printer.Mood(d.Mood, services.MoodBand(d.Mood))
		return nil
	case in.args[0] == "save":
		task, err := h.app.Orchestrator.SaveDraft(ctx)
		if err != nil {
			return err
		}
		return h.awaitEntry(ctx, task)
	case in.args[0] == "clear":
		h.app.Orchestrator.UpdateDraft("", mindtypes.DefaultMood)
		h.printer.Info("Draft cleared.")
		return nil
	}

	mood, text, err := parseMoodAndText(in)
	if err != nil {
		return err
	}
	h.app.Orchestrator.UpdateDraft(text, mood)
	h.printer.Info("Draft updated. Use 'draft save' to add it to your journal.")
	return nil
}

func (h *Handler) awaitEntry(ctx context.Context, task *orchestration.Task) error {
	h.printer.Muted("Analyzing your entry...")
	if err := task.Wait(ctx); err != nil {
		return err
	}

	entries := h.app.Store.State().JournalEntries
	if len(entries) == 0 {
		return fmt.Errorf("entry was not saved")
	}
	entry := entries[0]
	h.printer.Success("Entry saved.")
	if entry.Analysis != nil {
		h.printer.Sentiment(entry.Analysis.Sentiment, entry.Analysis.Keywords)
		for _, rec := range entry.Analysis.Recommendations {
			h.printer.Println("  - " + rec)
		}
	}
	return nil
}

func runEntries(_ context.Context, h *Handler, in invocation) error {
	entries := h.app.Store.State().JournalEntries
	if len(entries) == 0 {
		h.printer.Info("No journal entries yet. Try: journal 7 Had a calm day")
		return nil
	}

	limit := len(entries)
	if len(in.args) > 0 {
		n, err := strconv.Atoi(in.args[0])
		if err != nil || n <= 0 {
			return mindtypes.NewValidationError("count", "count must be a positive number")
		}
		if n < limit {
			limit = n
		}
	}

	for _, e := range entries[:limit] {
		h.printer.Muted(e.Timestamp.Format("Mon Jan 2 15:04"))
		h.printer.Mood(e.Mood, services.MoodBand(e.Mood))
		h.printer.Preview(e.Text)
		if e.Analysis != nil {
			h.printer.Sentiment(e.Analysis.Sentiment, e.Analysis.Keywords)
		}
	}
	return nil
}

func runChat(ctx context.Context, h *Handler, in invocation) error {
	task, err := h.app.Orchestrator.SendMessage(ctx, in.rest)
	if err != nil {
		return err
	}
	if h.app.Orchestrator.Typing() {
		h.printer.Muted("companion is typing...")
	}
	if err := task.Wait(ctx); err != nil {
		return err
	}

	history := h.app.Store.State().ChatHistory
	if n := len(history); n > 0 && !history[n-1].IsUser {
		h.printer.Companion(history[n-1].Text)
	}
	return nil
}

func runHistory(_ context.Context, h *Handler, _ invocation) error {
	history := h.app.Store.State().ChatHistory
	if len(history) == 0 {
		h.printer.Companion(h.app.Conversation.Greeting())
		return nil
	}
	for _, msg := range history {
		if msg.IsUser {
			h.printer.Student(msg.Text)
		} else {
			h.printer.Companion(msg.Text)
		}
	}
	return nil
}

func runSuggest(_ context.Context, h *Handler, _ invocation) error {
	for _, reply := range h.app.Conversation.QuickReplies() {
		h.printer.Println("  " + reply)
	}
	return nil
}

func runInsights(_ context.Context, h *Handler, _ invocation) error {
	md := h.app.Insight.RenderMarkdown(h.app.Summary())
	rendered, err := h.app.Markdown.Render(md)
	if err != nil {
		return fmt.Errorf("failed to render insights: %w", err)
	}
	h.printer.Print(rendered)
	return nil
}

func runExport(_ context.Context, h *Handler, in invocation) error {
	if len(in.args) != 1 {
		return mindtypes.NewValidationError("", "usage: export <file.yaml|file.json>")
	}
	path := in.args[0]
	if err := h.app.Export.WriteFile(h.app.Store.State(), path, h.app.Clock.Now()); err != nil {
		return err
	}
	h.printer.Success(fmt.Sprintf("Exported your data to %s", path))
	return nil
}

func runStatus(_ context.Context, h *Handler, _ invocation) error {
	state := h.app.Store.State()
	orch := h.app.Orchestrator

	h.printer.Println(fmt.Sprintf("chat: %s, journal: %s, auth: %s",
		orch.Phase(orchestration.SlotChat), orch.Phase(orchestration.SlotJournal), orch.Phase(orchestration.SlotAuth)))
	h.printer.Println(fmt.Sprintf("entries: %d, messages: %d, loading: %t",
		len(state.JournalEntries), len(state.ChatHistory), state.IsLoading))
	if state.Error != nil {
		h.printer.Error(*state.Error)
		orch.ClearError()
	}
	return nil
}

func runHelp(_ context.Context, h *Handler, _ invocation) error {
	width := 0
	for _, name := range h.commandNames() {
		if l := len(h.commands[name].usage); l > width {
			width = l
		}
	}
	for _, name := range h.commandNames() {
		cmd := h.commands[name]
		h.printer.Println(fmt.Sprintf("  %-*s  %s", width, cmd.usage, output.Truncate(cmd.help, 60)))
	}
	h.printer.Muted("Anything else you type is sent to your companion.")
	return nil
}

func runExit(_ context.Context, h *Handler, _ invocation) error {
	h.printer.Info("Goodbye. Be kind to yourself today.")
	return ErrExit
}
