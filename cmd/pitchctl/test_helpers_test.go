package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pitchctl/internal/config"
	"pitchctl/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	backend    *testsupport.Backend
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	backend := testsupport.NewBackend(t)
	cfg := testsupport.NewConfig(t, testsupport.WithBaseURL(backend.URL()))
	base := testsupport.BaseDir(cfg)

	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("PITCHCTL_BASE_URL", "")
	t.Setenv("PITCHCTL_API_TOKEN", "")
	t.Setenv("PITCHCTL_SESSION", "")

	configPath := filepath.Join(homeDir, ".config", "pitchctl", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		backend:    backend,
		configPath: configPath,
		baseDir:    base,
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// run executes a command that must succeed and returns its stdout.
func (env *cliTestEnv) run(t *testing.T, args ...string) string {
	t.Helper()
	out, errOut, err := runCLI(t, args, env.configPath)
	if err != nil {
		t.Fatalf("pitchctl %s: %v\nstderr: %s", strings.Join(args, " "), err, errOut)
	}
	return out
}

// startPitch uploads a master document so pitch p1 is active.
func (env *cliTestEnv) startPitch(t *testing.T) {
	t.Helper()
	env.backend.On("POST /upload_master", `{"pitch_uid":"p1","task_id":"t1"}`)
	path := testsupport.WriteFile(t, env.baseDir, "master.pdf", "%PDF-1.4 master")
	env.run(t, "upload", path)
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[backend]\nbase_url = %q\n\n[paths]\nstate_dir = %q\nlog_dir = %q\n\n[polling]\ninterval_seconds = %d\ntimeout_seconds = %d\n",
		cfg.Backend.BaseURL,
		cfg.Paths.StateDir,
		cfg.Paths.LogDir,
		cfg.Polling.IntervalSeconds,
		cfg.Polling.TimeoutSeconds,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
