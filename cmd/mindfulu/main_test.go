package main

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindfulu/internal/app"
	"mindfulu/internal/config"
	"mindfulu/internal/testutils"
)

// setupCLITest isolates the command from any user config and returns a work dir.
func setupCLITest(t *testing.T) string {
	t.Helper()
	dir := testutils.CreateTempDir(t)
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PWD", dir)
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestBatch_RunsScript(t *testing.T) {
	dir := setupCLITest(t)
	script := testutils.WriteFile(t, dir, "session.mind", `%% a short session
signin pat@school.edu secret
journal 4 I'm anxious about exams
I keep feeling tired
export session.yaml
`)

	out, err := execute(t, "batch", script, "--test-mode")
	require.NoError(t, err)

	assert.Contains(t, out, "Welcome, pat!")
	assert.Contains(t, out, "sentiment: stressed")
	assert.Contains(t, out, "Exported your data to session.yaml")

	exported := testutils.ReadFile(t, dir, "session.yaml")
	assert.Contains(t, exported, "I keep feeling tired")
}

func TestBatch_StopsAtFirstFailure(t *testing.T) {
	dir := setupCLITest(t)
	script := testutils.WriteFile(t, dir, "guarded.mind", "whoami\njournal 5 not signed in\nsignin pat@school.edu secret\n")

	out, err := execute(t, "batch", script, "--test-mode")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "guarded.mind:2")
	assert.Contains(t, out, "Not signed in.")
	assert.NotContains(t, out, "Welcome")
}

func TestBatch_RejectsInvalidScripts(t *testing.T) {
	dir := setupCLITest(t)

	_, err := execute(t, "batch", filepath.Join(dir, "missing.mind"), "--test-mode")
	assert.ErrorContains(t, err, "script file does not exist")

	notes := testutils.WriteFile(t, dir, "notes.txt", "whoami\n")
	_, err = execute(t, "batch", notes, "--test-mode")
	assert.ErrorContains(t, err, "must have .mind extension")
}

func TestVersionCommand(t *testing.T) {
	setupCLITest(t)

	out, err := execute(t, "version", "--test-mode")
	require.NoError(t, err)
	assert.Contains(t, out, "MindfulU v")
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	setupCLITest(t)

	cfg := &config.Config{TestMode: true, HTTPAddr: "127.0.0.1:0", ExportFormat: "yaml", MarkdownStyle: "notty"}
	a, err := app.New(cfg)
	require.NoError(t, err)
	defer a.Close()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, a, listener, io.Discard)
	}()

	client := &http.Client{Timeout: 5 * time.Second}
	defer client.CloseIdleConnections()

	resp, err := client.Get("http://" + listener.Addr().String() + "/api/state")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
