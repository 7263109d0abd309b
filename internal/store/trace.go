package store

import (
	"mindfulu/pkg/mindtypes"

	"github.com/charmbracelet/log"
	"github.com/sergi/go-diff/diffmatchpatch"
	"gopkg.in/yaml.v3"
)

// TraceListener returns a listener that logs every action at debug level with a
// line diff of the YAML rendering of the state before and after it.
func TraceListener(l *log.Logger) Listener {
	return func(action Action, prev, next mindtypes.AppState) {
		if l == nil || l.GetLevel() > log.DebugLevel {
			return
		}
		var name ActionType = "<nil>"
		if action != nil {
			name = action.Type()
		}
		l.Debug("State transition", "action", name, "diff", StateDiff(prev, next))
	}
}

// StateDiff renders a line-oriented diff between two states.
// Unchanged lines are omitted; added lines start with "+", removed lines with "-".
func StateDiff(prev, next mindtypes.AppState) string {
	before := renderState(prev)
	after := renderState(next)
	if before == after {
		return ""
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out []byte
	for _, d := range diffs {
		var prefix byte
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = '+'
		case diffmatchpatch.DiffDelete:
			prefix = '-'
		default:
			continue
		}
		for _, line := range splitLines(d.Text) {
			out = append(out, prefix)
			out = append(out, line...)
			out = append(out, '\n')
		}
	}
	return string(out)
}

func renderState(state mindtypes.AppState) string {
	data, err := yaml.Marshal(state)
	if err != nil {
		return err.Error()
	}
	return string(data)
}

func splitLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, text[start:i])
			start = i + 1
		}
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}
