package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSecretFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pgpassword")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestResolveSecretFromEnv(t *testing.T) {
	t.Setenv("TROLLEY_TEST_SECRET", "hunter2")

	value, err := ResolveSecret("TROLLEY_TEST_SECRET")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "hunter2" {
		t.Errorf("got %q, want %q", value, "hunter2")
	}
}

func TestResolveSecretFromFile(t *testing.T) {
	path := writeSecretFile(t, "from-file\n")
	t.Setenv("TROLLEY_TEST_SECRET_FILE", path)

	value, err := ResolveSecret("TROLLEY_TEST_SECRET")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "from-file" {
		t.Errorf("got %q, want %q", value, "from-file")
	}
}

func TestResolveSecretFileWinsOverEnv(t *testing.T) {
	t.Setenv("TROLLEY_TEST_SECRET", "from-env")
	path := writeSecretFile(t, "from-file")
	t.Setenv("TROLLEY_TEST_SECRET_FILE", path)

	value, err := ResolveSecret("TROLLEY_TEST_SECRET")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "from-file" {
		t.Errorf("got %q, want %q (file takes precedence)", value, "from-file")
	}
}

func TestResolveSecretUnset(t *testing.T) {
	os.Unsetenv("TROLLEY_TEST_UNSET_SECRET")
	os.Unsetenv("TROLLEY_TEST_UNSET_SECRET_FILE")

	value, err := ResolveSecret("TROLLEY_TEST_UNSET_SECRET")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "" {
		t.Errorf("got %q, want empty string", value)
	}
}

func TestResolveSecretMissingFile(t *testing.T) {
	t.Setenv("TROLLEY_TEST_SECRET_FILE", "/nonexistent/pgpassword")

	if _, err := ResolveSecret("TROLLEY_TEST_SECRET"); err == nil {
		t.Error("expected error when the secret file does not exist")
	}
}

func TestResolveSecretTrimsWhitespace(t *testing.T) {
	path := writeSecretFile(t, "  padded  \n\n")
	t.Setenv("TROLLEY_TEST_SECRET_FILE", path)

	value, err := ResolveSecret("TROLLEY_TEST_SECRET")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "padded" {
		t.Errorf("got %q, want %q", value, "padded")
	}
}
