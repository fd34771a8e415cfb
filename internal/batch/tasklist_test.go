package batch

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"codeberg.org/snonux/treetranslate/internal/scan"
)

func TestReadTaskList(t *testing.T) {
	tests := []struct {
		name        string
		fileContent string
		want        []string
	}{
		{
			name:        "empty file",
			fileContent: "",
			want:        nil,
		},
		{
			name:        "only whitespace and comments",
			fileContent: "   \n# comment\n\t\r\n",
			want:        nil,
		},
		{
			name:        "paths",
			fileContent: "a.xml\nsub/b.xml\n",
			want:        []string{"a.xml", filepath.Join("sub", "b.xml")},
		},
		{
			name:        "windows line endings and padding",
			fileContent: "  a.xml  \r\n./sub/b.xml\r\n",
			want:        []string{"a.xml", filepath.Join("sub", "b.xml")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpFile := filepath.Join(t.TempDir(), "list.txt")
			if err := os.WriteFile(tmpFile, []byte(tt.fileContent), 0644); err != nil {
				t.Fatalf("Failed to create test file: %v", err)
			}

			got, err := ReadTaskList(tmpFile)
			if err != nil {
				t.Fatalf("ReadTaskList() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ReadTaskList() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadTaskList_FileNotFound(t *testing.T) {
	if _, err := ReadTaskList("/nonexistent/list.txt"); err == nil {
		t.Error("Expected error for non-existent file")
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"unix line endings", "line1\nline2", []string{"line1", "line2"}},
		{"windows line endings", "line1\r\nline2\r\n", []string{"line1", "line2"}},
		{"empty string", "", nil},
		{"trailing newline", "line1\n", []string{"line1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := splitLines(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitLines() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterTasks(t *testing.T) {
	tasks := []scan.FileTask{
		scan.NewFileTask("/in/a.xml", "a.xml", "/out"),
		scan.NewFileTask("/in/b.xml", "b.xml", "/out"),
		scan.NewFileTask("/in/c.xml", "c.xml", "/out"),
	}

	got := FilterTasks(tasks, []string{"c.xml", "a.xml", "missing.xml"})
	if len(got) != 2 || got[0].RelPath != "a.xml" || got[1].RelPath != "c.xml" {
		t.Errorf("FilterTasks() = %+v", got)
	}
}
