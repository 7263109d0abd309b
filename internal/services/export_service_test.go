package services

import (
	"os"
	"path/filepath"
	"testing"

	"mindfulu/internal/testutils"
	"mindfulu/pkg/mindtypes"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exportState() mindtypes.AppState {
	user := testutils.TestUser()
	entry := testutils.Entry("e1", "I'm anxious about exams", 4)
	entry.Analysis = &mindtypes.Analysis{
		Sentiment:       "stressed",
		Keywords:        []string{"anxious", "exam"},
		Recommendations: []string{"breathe"},
	}
	return mindtypes.AppState{
		User:           &user,
		JournalEntries: []mindtypes.JournalEntry{entry},
		ChatHistory:    []mindtypes.ChatMessage{testutils.Message("m1", "I feel lonely", true)},
	}
}

func TestExportService_Initialize(t *testing.T) {
	assert.NoError(t, NewExportService("").Initialize())
	assert.NoError(t, NewExportService("JSON").Initialize())
	assert.Error(t, NewExportService("xml").Initialize())
}

func TestExportService_SnapshotRequiresUser(t *testing.T) {
	service := NewExportService(FormatYAML)
	_, err := service.Snapshot(mindtypes.NewAppState(), testutils.BaseTime)
	assert.Error(t, err)
}

func TestExportService_EncodeDecode(t *testing.T) {
	service := NewExportService(FormatYAML)
	snapshot, err := service.Snapshot(exportState(), testutils.BaseTime)
	require.NoError(t, err)

	for _, format := range []string{FormatYAML, FormatJSON} {
		t.Run(format, func(t *testing.T) {
			data, err := service.Encode(snapshot, format)
			require.NoError(t, err)

			decoded, err := service.Decode(data, format)
			require.NoError(t, err)
			assert.Equal(t, snapshot.User, decoded.User)
			assert.Equal(t, 1, decoded.Version)
			require.Len(t, decoded.JournalEntries, 1)
			assert.Equal(t, []string{"anxious", "exam"}, decoded.JournalEntries[0].Analysis.Keywords)
			assert.True(t, decoded.ExportedAt.Equal(testutils.BaseTime))
		})
	}

	_, err = service.Encode(snapshot, "toml")
	assert.Error(t, err)
	_, err = service.Decode([]byte("{}"), "toml")
	assert.Error(t, err)
}

func TestExportService_DecodeRejectsNewerSnapshots(t *testing.T) {
	service := NewExportService(FormatJSON)

	_, err := service.Decode([]byte(`{"version": 99}`), FormatJSON)
	assert.ErrorContains(t, err, "newer than supported layout")

	_, err = service.Decode([]byte(`{"version": 1, "appVersion": "99.0.0"}`), FormatJSON)
	assert.ErrorContains(t, err, "newer than")

	_, err = service.Decode([]byte(`{"version": 1, "appVersion": "garbage"}`), FormatJSON)
	assert.ErrorContains(t, err, "invalid snapshot")

	decoded, err := service.Decode([]byte(`{"version": 1, "appVersion": "0.0.1"}`), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "0.0.1", decoded.AppVersion)
}

func TestExportService_FormatForPath(t *testing.T) {
	service := NewExportService(FormatJSON)

	assert.Equal(t, FormatJSON, service.FormatForPath("out.json"))
	assert.Equal(t, FormatYAML, service.FormatForPath("out.YAML"))
	assert.Equal(t, FormatYAML, service.FormatForPath("out.yml"))
	assert.Equal(t, FormatJSON, service.FormatForPath("out.txt"))
}

func TestExportService_WriteFile(t *testing.T) {
	service := NewExportService(FormatYAML)
	dir := testutils.CreateTempDir(t)

	path := filepath.Join(dir, "nested", "export.yaml")
	require.NoError(t, service.WriteFile(exportState(), path, testutils.BaseTime))

	content := testutils.ReadFile(t, dir, filepath.Join("nested", "export.yaml"))
	assert.Contains(t, content, "email: pat@school.edu")
	assert.Contains(t, content, "I'm anxious about exams")

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file is renamed away")

	err = service.WriteFile(mindtypes.NewAppState(), filepath.Join(dir, "none.yaml"), testutils.BaseTime)
	assert.Error(t, err)
}
