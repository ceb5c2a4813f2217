package tool

import (
	"errors"
	"strings"
	"testing"
)

func TestRegistryRegisterEmptyName(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if err := r.Register(Definition{Name: "  "}); !errors.Is(err, ErrEmptyToolName) {
		t.Fatalf("expected ErrEmptyToolName, got %v", err)
	}
}

func TestRegistryRegisterDuplicate(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if err := r.Register(Definition{Name: "echo"}); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if err := r.Register(Definition{Name: "echo"}); !errors.Is(err, ErrDuplicateTool) {
		t.Fatalf("expected ErrDuplicateTool, got %v", err)
	}
}

func TestRegistryLookup(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	def := Definition{Name: "echo", Description: "test", Dangerous: true}
	if err := r.Register(def); err != nil {
		t.Fatalf("register: %v", err)
	}

	got, ok := r.Lookup("echo")
	if !ok {
		t.Fatal("expected lookup hit")
	}
	if !got.Dangerous || got.Description != "test" {
		t.Fatalf("unexpected definition: %+v", got)
	}

	if _, ok := r.Lookup("missing"); ok {
		t.Fatal("expected lookup miss")
	}
}

func TestRegistryNamesSorted(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := r.Register(Definition{Name: name}); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}

	names := r.Names()
	want := []string{"alpha", "mid", "zeta"}
	for i, n := range want {
		if names[i] != n {
			t.Fatalf("names not sorted: %v", names)
		}
	}
}

func TestRegisterBuiltins(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if err := RegisterBuiltins(r); err != nil {
		t.Fatalf("RegisterBuiltins: %v", err)
	}

	if len(r.Names()) != len(Builtins()) {
		t.Fatalf("expected %d tools, got %d", len(Builtins()), len(r.Names()))
	}

	shell, ok := r.Lookup(ShellExecute)
	if !ok || !shell.Dangerous {
		t.Fatalf("shell_execute must be registered and dangerous: %+v", shell)
	}
	write, ok := r.Lookup(FileWrite)
	if !ok || !write.Dangerous {
		t.Fatalf("file_write must be registered and dangerous: %+v", write)
	}
	read, ok := r.Lookup(FileRead)
	if !ok || read.Dangerous {
		t.Fatalf("file_read must be registered and not dangerous: %+v", read)
	}
}

func TestPromptTextListsToolsAndFormat(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if err := RegisterBuiltins(r); err != nil {
		t.Fatalf("RegisterBuiltins: %v", err)
	}

	prompt := r.PromptText()

	if !strings.Contains(prompt, "```json") {
		t.Fatal("prompt missing block format example")
	}
	for _, name := range []string{ShellExecute, SQLQuery, BrowserOpen} {
		if !strings.Contains(prompt, "### "+name) {
			t.Fatalf("prompt missing tool %s", name)
		}
	}
	if !strings.Contains(prompt, "Dangerous tool") {
		t.Fatal("prompt missing dangerous marker")
	}
}
