package cli

import (
	"reflect"
	"testing"
	"time"
)

func TestNewFlags(t *testing.T) {
	flags := NewFlags()

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"InputDir", flags.InputDir, "input"},
		{"OutputDir", flags.OutputDir, "output"},
		{"Extension", flags.Extension, ".xml"},
		{"Delay", flags.Delay, 10 * time.Second},
		{"Provider", flags.Provider, "gemini"},
		{"TargetLanguage", flags.TargetLanguage, "Traditional Chinese"},
		{"MaxAttempts", flags.MaxAttempts, 5},
		{"BaseDelay", flags.BaseDelay, 5 * time.Second},
		{"BreakerFailures", flags.BreakerFailures, 3},
		{"Limit", flags.Limit, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !reflect.DeepEqual(tt.got, tt.expected) {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}

	// Test boolean defaults (should be false)
	boolTests := []struct {
		name  string
		value bool
	}{
		{"Archive", flags.Archive},
		{"DryRun", flags.DryRun},
		{"ListModels", flags.ListModels},
		{"NoProgress", flags.NoProgress},
		{"NoHistory", flags.NoHistory},
	}

	for _, tt := range boolTests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value {
				t.Errorf("%s = %v, want false", tt.name, tt.value)
			}
		})
	}

	// Test string defaults (should be empty)
	stringTests := []struct {
		name  string
		value string
	}{
		{"CfgFile", flags.CfgFile},
		{"TaskList", flags.TaskList},
		{"Model", flags.Model},
		{"HistoryPath", flags.HistoryPath},
	}

	for _, tt := range stringTests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Errorf("%s = %v, want empty string", tt.name, tt.value)
			}
		})
	}
}
