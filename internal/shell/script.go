package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"mindfulu/internal/logger"
)

// ScriptExtension is the file extension of MindfulU batch scripts.
const ScriptExtension = ".mind"

// ValidateScriptFile checks that path exists and has the script extension.
func ValidateScriptFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("script file does not exist: %s", path)
	}
	if ext := filepath.Ext(path); ext != ScriptExtension {
		return fmt.Errorf("script file must have %s extension, got: %s", ScriptExtension, ext)
	}
	return nil
}

// ExecuteScript runs every line of a script through the handler.
// Execution stops at the first failing line, reported with its line number.
func (h *Handler) ExecuteScript(ctx context.Context, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open script: %w", err)
	}
	defer func() { _ = file.Close() }()

	logger.Debug("Starting script execution", "script", path)

	scanner := bufio.NewScanner(file)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := h.Execute(ctx, scanner.Text()); err != nil {
			if errors.Is(err, ErrExit) {
				break
			}
			h.ReportError(err)
			return fmt.Errorf("%s:%d: %w", filepath.Base(path), lineNumber, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}

	logger.Debug("Script execution completed", "script", path, "lines", lineNumber)
	return nil
}
