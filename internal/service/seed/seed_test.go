package seed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuiltin_DefaultHasToolBlock(t *testing.T) {
	profile, err := Builtin("default")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !profile.HasToolBlock() {
		t.Fatal("default seed must carry a tool block")
	}
	if !strings.HasPrefix(profile.ToolBlock, "Available tools:") {
		t.Errorf("tool block must start with the header, got %q", profile.ToolBlock)
	}
	if !strings.HasSuffix(profile.ToolBlock, "Permission is not needed.") {
		t.Errorf("tool block must end with the permission line, got %q", profile.ToolBlock)
	}
	if !strings.Contains(profile.CoreText, profile.ToolBlock) {
		t.Error("the tool block must remain part of the core text")
	}
}

func TestBuiltin_PlainSeedHasNoToolBlock(t *testing.T) {
	profile, err := Builtin("koan")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.HasToolBlock() {
		t.Errorf("koan seed must not carry a tool block, got %q", profile.ToolBlock)
	}
}

func TestBuiltin_UnknownName(t *testing.T) {
	if _, err := Builtin("no-such-seed"); err == nil {
		t.Fatal("expected an error for an unknown seed name")
	}
}

func TestNames_SortedAndComplete(t *testing.T) {
	names := Names()
	if len(names) != len(builtinSeeds) {
		t.Errorf("expected %d names, got %d", len(builtinSeeds), len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("names not sorted: %v", names)
		}
	}
}

func TestLoad_SeedFile(t *testing.T) {
	content := "A custom opening thought.\n\nAvailable tools:\n- [TOOL:ask:question] — ask\nYou may use these naturally in your thinking. Permission is not needed.\n\nOnward.\n"
	path := filepath.Join(t.TempDir(), "custom.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	profile, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.CoreText != content {
		t.Error("core text must be the file verbatim")
	}
	want := "Available tools:\n- [TOOL:ask:question] — ask\nYou may use these naturally in your thinking. Permission is not needed."
	if profile.ToolBlock != want {
		t.Errorf("tool block mismatch:\ngot  %q\nwant %q", profile.ToolBlock, want)
	}
}

func TestLoad_MissingAndEmptyFiles(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Error("expected an error for a missing file")
	}

	path := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(path, []byte("   \n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected an error for an empty seed")
	}
}

func TestExtractToolBlock(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "no tools at all",
			text: "pure contemplation\n",
			want: "",
		},
		{
			name: "headed block",
			text: "intro\nAvailable tools:\n- [TOOL:search:q] — search\nYou may use these naturally in your thinking. Permission is not needed.\noutro\n",
			want: "Available tools:\n- [TOOL:search:q] — search\nYou may use these naturally in your thinking. Permission is not needed.",
		},
		{
			name: "bare definition lines without header",
			text: "thinking\n- [TOOL:search:q] — search the web\nmore thinking\n",
			want: "Available tools:\n- [TOOL:search:q] — search the web\nYou may use these naturally in your thinking.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractToolBlock(tt.text); got != tt.want {
				t.Errorf("ExtractToolBlock() = %q, want %q", got, tt.want)
			}
		})
	}
}
