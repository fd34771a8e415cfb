package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestCreateRootCommand(t *testing.T) {
	resetViper(t)

	flags := NewFlags()
	cmd := CreateRootCommand(flags)

	// Test basic command properties
	if cmd.Use != "treetranslate" {
		t.Errorf("Expected Use to be 'treetranslate', got %s", cmd.Use)
	}

	if !strings.Contains(cmd.Short, "Batch translator") {
		t.Errorf("Expected Short description to contain 'Batch translator'")
	}

	// Test that flags are set up
	flagTests := []struct {
		name       string
		persistent bool
	}{
		{"config", true},
		{"history-db", true},
		{"input", false},
		{"output", false},
		{"ext", false},
		{"files", false},
		{"delay", false},
		{"archive", false},
		{"dry-run", false},
		{"list-models", false},
		{"no-progress", false},
		{"no-history", false},
		{"language", false},
		{"provider", false},
		{"model", false},
		{"max-attempts", false},
		{"base-delay", false},
		{"breaker-failures", false},
	}

	for _, tt := range flagTests {
		t.Run("flag_"+tt.name, func(t *testing.T) {
			var flag *pflag.Flag
			if tt.persistent {
				flag = cmd.PersistentFlags().Lookup(tt.name)
			} else {
				flag = cmd.Flags().Lookup(tt.name)
			}
			if flag == nil {
				t.Errorf("Expected flag %s to exist", tt.name)
			}
		})
	}
}

func TestCreateHistoryCommand(t *testing.T) {
	flags := NewFlags()
	cmd := CreateHistoryCommand(flags)

	if !strings.HasPrefix(cmd.Use, "history") {
		t.Errorf("Expected Use to start with 'history', got %s", cmd.Use)
	}

	if err := cmd.Flags().Set("limit", "5"); err != nil {
		t.Fatalf("Failed to set limit: %v", err)
	}
	if flags.Limit != 5 {
		t.Errorf("Expected Limit 5, got %d", flags.Limit)
	}

	if err := cmd.Args(cmd, []string{"a", "b"}); err == nil {
		t.Error("Expected error for two positional arguments")
	}
}

func TestSetupFlags(t *testing.T) {
	resetViper(t)

	cmd := &cobra.Command{}
	flags := NewFlags()

	setupFlags(cmd, flags)

	// Test default values
	defaults := map[string]string{
		"input":            "input",
		"output":           "output",
		"ext":              ".xml",
		"delay":            "10s",
		"language":         "Traditional Chinese",
		"provider":         "gemini",
		"max-attempts":     "5",
		"base-delay":       "5s",
		"breaker-failures": "3",
	}

	for name, want := range defaults {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			t.Fatalf("%s flag not found", name)
		}
		if flag.DefValue != want {
			t.Errorf("Expected default %s to be %s, got %s", name, want, flag.DefValue)
		}
	}
}

func TestBindFlagsToViper(t *testing.T) {
	resetViper(t)

	cmd := &cobra.Command{}
	flags := NewFlags()
	setupFlags(cmd, flags)

	// Set some flag values
	cmd.Flags().Set("input", "/test/input")
	cmd.Flags().Set("language", "German")
	cmd.Flags().Set("delay", "2s")

	// Test that values are bound
	if viper.GetString("batch.input") != "/test/input" {
		t.Errorf("Expected batch.input to be /test/input, got %s", viper.GetString("batch.input"))
	}

	if viper.GetString("translate.language") != "German" {
		t.Errorf("Expected translate.language to be German, got %s", viper.GetString("translate.language"))
	}

	if viper.GetDuration("batch.delay") != 2*time.Second {
		t.Errorf("Expected batch.delay to be 2s, got %v", viper.GetDuration("batch.delay"))
	}

	// Unchanged flags fall back to their defaults
	if viper.GetString("batch.output") != "output" {
		t.Errorf("Expected batch.output to be output, got %s", viper.GetString("batch.output"))
	}
}

func TestInitConfigAndResolveFlags(t *testing.T) {
	resetViper(t)

	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "test-config.yaml")
	content := `batch:
  output: /test/output
  delay: 3s
translate:
  provider: openai
  language: Japanese
  max_attempts: 2`
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test config: %v", err)
	}

	cmd := &cobra.Command{}
	flags := NewFlags()
	setupFlags(cmd, flags)

	// Flags beat the config file
	cmd.Flags().Set("language", "Korean")

	InitConfig(cfgPath)
	ResolveFlags(flags)

	if flags.OutputDir != "/test/output" {
		t.Errorf("OutputDir = %s, want /test/output", flags.OutputDir)
	}
	if flags.Delay != 3*time.Second {
		t.Errorf("Delay = %v, want 3s", flags.Delay)
	}
	if flags.Provider != "openai" {
		t.Errorf("Provider = %s, want openai", flags.Provider)
	}
	if flags.MaxAttempts != 2 {
		t.Errorf("MaxAttempts = %d, want 2", flags.MaxAttempts)
	}
	if flags.TargetLanguage != "Korean" {
		t.Errorf("TargetLanguage = %s, want Korean", flags.TargetLanguage)
	}
	if flags.InputDir != "input" {
		t.Errorf("InputDir = %s, want default input", flags.InputDir)
	}
}

func TestInitConfig_Environment(t *testing.T) {
	resetViper(t)
	t.Setenv("TREETRANSLATE_BATCH_EXTENSION", ".html")

	InitConfig(filepath.Join(t.TempDir(), "missing.yaml"))

	if got := viper.GetString("batch.extension"); got != ".html" {
		t.Errorf("Expected batch.extension from environment, got %q", got)
	}
}

func TestGetAPIKeys(t *testing.T) {
	tests := []struct {
		name      string
		provider  string
		env       map[string]string
		configKey string
		configVal string
		expected  string
	}{
		{
			name:     "gemini from GEMINI_API_KEY",
			provider: "gemini",
			env:      map[string]string{"GEMINI_API_KEY": "gemini-env", "GOOGLE_API_KEY": "google-env"},
			expected: "gemini-env",
		},
		{
			name:     "gemini from GOOGLE_API_KEY",
			provider: "gemini",
			env:      map[string]string{"GOOGLE_API_KEY": "google-env"},
			expected: "google-env",
		},
		{
			name:      "gemini from config when no env",
			provider:  "gemini",
			configKey: "translate.gemini_key",
			configVal: "gemini-config",
			expected:  "gemini-config",
		},
		{
			name:     "openai from environment",
			provider: "openai",
			env:      map[string]string{"OPENAI_API_KEY": "openai-env"},
			expected: "openai-env",
		},
		{
			name:      "openai from config when no env",
			provider:  "openai",
			configKey: "translate.openai_key",
			configVal: "openai-config",
			expected:  "openai-config",
		},
		{
			name:     "empty when neither set",
			provider: "openai",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)

			for _, env := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "OPENAI_API_KEY"} {
				t.Setenv(env, tt.env[env])
			}

			if tt.configKey != "" {
				viper.Set(tt.configKey, tt.configVal)
			}

			got := GetAPIKey(tt.provider)
			if got != tt.expected {
				t.Errorf("GetAPIKey(%s) = %v, want %v", tt.provider, got, tt.expected)
			}
		})
	}
}
