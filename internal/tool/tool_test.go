package tool

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"agentctl/internal/profile"
)

func TestInfoFor(t *testing.T) {
	claude := InfoFor(profile.ToolClaude)
	if claude.Command != "claude" || claude.EnvVar != "CLAUDE_CONFIG_DIR" {
		t.Errorf("claude info = %+v", claude)
	}
	if len(claude.AuthArgs) != 0 {
		t.Error("claude auto-authenticates, no auth subcommand expected")
	}

	codex := InfoFor(profile.ToolCodex)
	if codex.Command != "codex" || codex.EnvVar != "CODEX_HOME" {
		t.Errorf("codex info = %+v", codex)
	}
	if codex.CredentialFile != "auth.json" {
		t.Errorf("codex credential file = %q", codex.CredentialFile)
	}
	if len(codex.AuthArgs) != 1 || codex.AuthArgs[0] != "login" {
		t.Errorf("codex auth args = %v", codex.AuthArgs)
	}
}

func TestIsAuthenticated(t *testing.T) {
	store := profile.NewStore(t.TempDir())
	p := profile.New("auth-check", profile.ToolClaude)
	if err := store.Save(p); err != nil {
		t.Fatal(err)
	}

	if IsAuthenticated(store, p) {
		t.Error("fresh profile reported authenticated")
	}

	cred := CredentialPath(store, p)
	if err := os.WriteFile(cred, []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}
	if !IsAuthenticated(store, p) {
		t.Error("profile with credential file reported unauthenticated")
	}
}

func TestLogout(t *testing.T) {
	store := profile.NewStore(t.TempDir())
	p := profile.New("logout-check", profile.ToolClaude)
	if err := store.Save(p); err != nil {
		t.Fatal(err)
	}

	if err := Logout(store, p); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("logout without credentials: err = %v, want ErrNotAuthenticated", err)
	}

	cred := CredentialPath(store, p)
	if err := os.WriteFile(cred, []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := Logout(store, p); err != nil {
		t.Fatal(err)
	}
	if IsAuthenticated(store, p) {
		t.Error("credential file survived logout")
	}
}

func TestSeedCodexConfig(t *testing.T) {
	dir := t.TempDir()

	cfg := CodexConfig{Model: "o3", ApprovalPolicy: "on-request"}
	if err := SeedCodexConfig(dir, cfg); err != nil {
		t.Fatal(err)
	}

	got, err := LoadCodexConfig(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got.Model != "o3" || got.ApprovalPolicy != "on-request" {
		t.Errorf("got %+v", got)
	}

	// Seeding again must not clobber user edits.
	path := filepath.Join(dir, codexConfigFile)
	if err := os.WriteFile(path, []byte(`model = "edited"`+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := SeedCodexConfig(dir, cfg); err != nil {
		t.Fatal(err)
	}
	got, err = LoadCodexConfig(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got.Model != "edited" {
		t.Errorf("seed overwrote existing config: %+v", got)
	}
}

func TestLoadCodexConfigMissing(t *testing.T) {
	cfg, err := LoadCodexConfig(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg != (CodexConfig{}) {
		t.Errorf("missing file should yield zero config: %+v", cfg)
	}
}
