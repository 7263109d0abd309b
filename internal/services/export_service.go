package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mindfulu/internal/logger"
	"mindfulu/internal/version"
	"mindfulu/pkg/mindtypes"

	"gopkg.in/yaml.v3"
)

// Export formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// snapshotVersion is bumped when the snapshot layout changes.
const snapshotVersion = 1

// Snapshot is the exported copy of a signed-in user's data.
type Snapshot struct {
	Version        int                      `json:"version" yaml:"version"`
	AppVersion     string                   `json:"appVersion" yaml:"app_version"`
	ExportedAt     time.Time                `json:"exportedAt" yaml:"exported_at"`
	User           mindtypes.User           `json:"user" yaml:"user"`
	JournalEntries []mindtypes.JournalEntry `json:"journalEntries" yaml:"journal_entries"`
	ChatHistory    []mindtypes.ChatMessage  `json:"chatHistory" yaml:"chat_history"`
}

// ExportService writes user data snapshots as YAML or JSON.
type ExportService struct {
	initialized   bool
	defaultFormat string
}

// NewExportService creates an ExportService. defaultFormat is used when the
// format cannot be inferred from a file extension.
func NewExportService(defaultFormat string) *ExportService {
	if defaultFormat == "" {
		defaultFormat = FormatYAML
	}
	return &ExportService{defaultFormat: strings.ToLower(defaultFormat)}
}

// Name returns the service name "export" for registration.
func (e *ExportService) Name() string {
	return "export"
}

// Initialize validates the default format.
func (e *ExportService) Initialize() error {
	if e.defaultFormat != FormatYAML && e.defaultFormat != FormatJSON {
		return fmt.Errorf("unsupported export format %q", e.defaultFormat)
	}
	e.initialized = true
	return nil
}

// Snapshot captures the signed-in user's data at the given time.
func (e *ExportService) Snapshot(state mindtypes.AppState, at time.Time) (Snapshot, error) {
	if state.User == nil {
		return Snapshot{}, fmt.Errorf("no user is signed in")
	}
	clone := state.Clone()
	return Snapshot{
		Version:        snapshotVersion,
		AppVersion:     version.GetVersion(),
		ExportedAt:     at,
		User:           *clone.User,
		JournalEntries: clone.JournalEntries,
		ChatHistory:    clone.ChatHistory,
	}, nil
}

// Encode serializes a snapshot in the given format.
func (e *ExportService) Encode(snapshot Snapshot, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatYAML, "yml":
		data, err := yaml.Marshal(snapshot)
		if err != nil {
			return nil, fmt.Errorf("failed to encode snapshot as yaml: %w", err)
		}
		return data, nil
	case FormatJSON:
		data, err := json.MarshalIndent(snapshot, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode snapshot as json: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// Decode parses a snapshot previously produced by Encode.
func (e *ExportService) Decode(data []byte, format string) (Snapshot, error) {
	var snapshot Snapshot
	switch strings.ToLower(format) {
	case FormatYAML, "yml":
		if err := yaml.Unmarshal(data, &snapshot); err != nil {
			return Snapshot{}, fmt.Errorf("failed to decode yaml snapshot: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &snapshot); err != nil {
			return Snapshot{}, fmt.Errorf("failed to decode json snapshot: %w", err)
		}
	default:
		return Snapshot{}, fmt.Errorf("unsupported export format %q", format)
	}

	if snapshot.Version > snapshotVersion {
		return Snapshot{}, fmt.Errorf("snapshot layout %d is newer than supported layout %d", snapshot.Version, snapshotVersion)
	}
	if snapshot.AppVersion != "" {
		cmp, err := version.CompareVersions(snapshot.AppVersion, version.GetVersion())
		if err != nil {
			return Snapshot{}, fmt.Errorf("invalid snapshot: %w", err)
		}
		if cmp > 0 {
			return Snapshot{}, fmt.Errorf("snapshot was written by MindfulU %s, newer than %s", snapshot.AppVersion, version.GetVersion())
		}
	}
	return snapshot, nil
}

// FormatForPath infers the export format from a file extension.
func (e *ExportService) FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return e.defaultFormat
	}
}

// WriteFile exports the signed-in user's data to path.
// The file is written to a temporary sibling first and renamed into place.
func (e *ExportService) WriteFile(state mindtypes.AppState, path string, at time.Time) error {
	snapshot, err := e.Snapshot(state, at)
	if err != nil {
		return err
	}

	data, err := e.Encode(snapshot, e.FormatForPath(path))
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to move export file into place: %w", err)
	}

	logger.ServiceOperation("export", "write", "path", path, "entries", len(snapshot.JournalEntries))
	return nil
}
