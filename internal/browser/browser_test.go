package browser

import (
	"fmt"
	"strings"
	"testing"
)

// mockCommander records command executions for testing
type mockCommander struct {
	lastCommand string
	lastArgs    []string
	calls       int
	startError  error
}

func (m *mockCommander) Start(name string, args ...string) error {
	m.calls++
	m.lastCommand = name
	m.lastArgs = args
	return m.startError
}

const appURL = "http://192.168.1.100:8000/"

func TestOpenWithCommander_Platforms(t *testing.T) {
	tests := []struct {
		goos    string
		command string
		args    []string
	}{
		{"linux", "xdg-open", []string{appURL}},
		{"freebsd", "xdg-open", []string{appURL}},
		{"darwin", "open", []string{appURL}},
		{"windows", "rundll32", []string{"url.dll,FileProtocolHandler", appURL}},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			mock := &mockCommander{}
			if err := OpenWithCommander(appURL, mock, tt.goos); err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}
			if mock.lastCommand != tt.command {
				t.Errorf("expected command %q, got %q", tt.command, mock.lastCommand)
			}
			if strings.Join(mock.lastArgs, " ") != strings.Join(tt.args, " ") {
				t.Errorf("expected args %v, got %v", tt.args, mock.lastArgs)
			}
		})
	}
}

func TestOpenWithCommander_UnsupportedPlatform(t *testing.T) {
	mock := &mockCommander{}

	err := OpenWithCommander(appURL, mock, "plan9")
	if err == nil {
		t.Fatal("expected error for unsupported platform, got nil")
	}
	if !strings.Contains(err.Error(), "unsupported platform") || !strings.Contains(err.Error(), "plan9") {
		t.Errorf("unexpected error: %v", err)
	}
	if mock.calls != 0 {
		t.Error("commander should not run on an unsupported platform")
	}
}

func TestOpenWithCommander_RejectsNonHTTP(t *testing.T) {
	for _, raw := range []string{"file:///etc/passwd", "javascript:alert(1)", "192.168.1.100:8000", "http://", ""} {
		t.Run(raw, func(t *testing.T) {
			mock := &mockCommander{}
			if err := OpenWithCommander(raw, mock, "linux"); err == nil {
				t.Errorf("expected %q to be rejected", raw)
			}
			if mock.calls != 0 {
				t.Errorf("commander ran for %q", raw)
			}
		})
	}
}

func TestOpenWithCommander_CommandError(t *testing.T) {
	mock := &mockCommander{startError: fmt.Errorf("command not found")}

	err := OpenWithCommander(appURL, mock, "linux")
	if err == nil || err.Error() != "command not found" {
		t.Errorf("expected commander error, got: %v", err)
	}
}

func TestOpen_UsesDefaultCommander(t *testing.T) {
	originalCommander := defaultCommander
	defer func() { defaultCommander = originalCommander }()

	mock := &mockCommander{}
	defaultCommander = mock

	// Unsupported CI platforms still report an error rather than launching anything
	if err := Open("https://dinner.example/"); err != nil && !strings.Contains(err.Error(), "unsupported platform") {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.calls == 1 && mock.lastArgs[len(mock.lastArgs)-1] != "https://dinner.example/" {
		t.Errorf("expected URL to be passed through, got %v", mock.lastArgs)
	}
}

func TestRealCommander_Start(t *testing.T) {
	if err := (RealCommander{}).Start("nonexistent-command-xyz-123"); err == nil {
		t.Error("expected error for nonexistent command, got nil")
	}
}
