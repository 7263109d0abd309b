// Package logger holds the MindfulU process logger and builds the component
// loggers used by the store, the orchestrator and the state trace.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"mindfulu/internal/config"
)

// Logger is the process-wide logger. Configure replaces it.
var Logger = log.NewWithOptions(os.Stderr, log.Options{Level: log.InfoLevel})

var (
	mu        sync.Mutex
	sink      io.Writer = os.Stderr
	formatter           = log.TextFormatter
	logFile   *os.File
)

// Configure points the logger at the level and destination in cfg.
// An empty level means info. Test mode never logs below info so batch output
// stays stable. A log file receives logfmt lines and replaces any file opened
// by an earlier call.
func Configure(cfg *config.Config) error {
	level := log.InfoLevel
	if cfg.LogLevel != "" {
		parsed, err := log.ParseLevel(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
		}
		level = parsed
	}
	if cfg.TestMode && level < log.InfoLevel {
		level = log.InfoLevel
	}

	var file *os.File
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		file = f
	}

	mu.Lock()
	defer mu.Unlock()

	closeFile()
	sink, formatter = io.Writer(os.Stderr), log.TextFormatter
	if file != nil {
		logFile = file
		sink, formatter = file, log.LogfmtFormatter
	}
	Logger = log.NewWithOptions(sink, log.Options{Level: level, Formatter: formatter})
	return nil
}

// Close releases the log file, if any, and logs to stderr again.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	err := closeFile()
	sink, formatter = os.Stderr, log.TextFormatter
	Logger = log.NewWithOptions(sink, log.Options{Level: Logger.GetLevel()})
	return err
}

func closeFile() error {
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// Debug logs at debug level on the process logger.
func Debug(msg interface{}, keyvals ...interface{}) {
	Logger.Debug(msg, keyvals...)
}

// Info logs at info level on the process logger.
func Info(msg interface{}, keyvals ...interface{}) {
	Logger.Info(msg, keyvals...)
}

// Warn logs at warn level on the process logger.
func Warn(msg interface{}, keyvals ...interface{}) {
	Logger.Warn(msg, keyvals...)
}

// Error logs at error level on the process logger.
func Error(msg interface{}, keyvals ...interface{}) {
	Logger.Error(msg, keyvals...)
}

// CommandExecution logs a shell command before it runs.
func CommandExecution(command string, args []string) {
	Debug("Executing command", "command", command, "args", args)
}

// ServiceOperation logs a service call.
func ServiceOperation(service string, operation string, details ...interface{}) {
	Debug("Service operation", "service", service, "operation", operation, "details", details)
}

// ActionDispatched logs a store action with the journal and chat sizes it left behind.
func ActionDispatched(action string, entries int, messages int) {
	Debug("Action dispatched", "action", action, "entries", entries, "messages", messages)
}

// RuleMatched logs which rule of an engine table classified an input.
func RuleMatched(engine string, rule string) {
	Debug("Rule matched", "engine", engine, "rule", rule)
}

var levelBadges = map[log.Level]lipgloss.Color{
	log.DebugLevel: "240",
	log.InfoLevel:  "37",
	log.WarnLevel:  "178",
	log.ErrorLevel: "160",
	log.FatalLevel: "88",
}

// keyColors picks out the fields the components log most.
var keyColors = map[string]lipgloss.Color{
	"slot":      "39",
	"phase":     "99",
	"task":      "51",
	"action":    "42",
	"engine":    "214",
	"rule":      "214",
	"sentiment": "170",
	"error":     "160",
}

// NewStyledLogger returns a logger for one component, such as "Store" or
// "Orchestrator". It shares the process logger's destination and level.
func NewStyledLogger(component string) *log.Logger {
	mu.Lock()
	defer mu.Unlock()

	styles := log.DefaultStyles()
	for level, color := range levelBadges {
		styles.Levels[level] = lipgloss.NewStyle().
			SetString(strings.ToUpper(level.String())).
			Padding(0, 1).
			Background(color).
			Foreground(lipgloss.Color("15"))
	}
	for key, color := range keyColors {
		styles.Keys[key] = lipgloss.NewStyle().Foreground(color)
	}
	styles.Values["phase"] = styles.Keys["phase"].Bold(true)
	styles.Values["error"] = styles.Keys["error"].Bold(true)

	l := log.NewWithOptions(sink, log.Options{
		Prefix:    component + " ",
		Level:     Logger.GetLevel(),
		Formatter: formatter,
	})
	l.SetStyles(styles)
	return l
}
