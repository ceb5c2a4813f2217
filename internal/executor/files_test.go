package executor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matehq/mate/internal/tool"
)

func TestFileReadAndWrite(t *testing.T) {
	t.Parallel()

	env := newTestExecutor(t, approveAll)
	path := filepath.Join(t.TempDir(), "note.txt")

	res := env.exec.Execute(context.Background(), tool.Call{
		ID: "w1", Tool: tool.FileWrite,
		Params: map[string]any{"path": path, "content": "hello there"},
	})
	if !res.Success {
		t.Fatalf("write failed: %+v", res)
	}

	res = env.exec.Execute(context.Background(), tool.Call{
		ID: "r1", Tool: tool.FileRead, Params: map[string]any{"path": path},
	})
	if !res.Success || res.Output != "hello there" {
		t.Fatalf("read got %+v", res)
	}
}

func TestFileWriteIsDangerous(t *testing.T) {
	t.Parallel()

	env := newTestExecutor(t, denyAll)
	path := filepath.Join(t.TempDir(), "note.txt")

	res := env.exec.Execute(context.Background(), tool.Call{
		ID: "w1", Tool: tool.FileWrite,
		Params: map[string]any{"path": path, "content": "overwritten"},
	})
	if res.Kind != tool.KindPermissionDenied {
		t.Fatalf("got %+v, want permission_denied", res)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("denied write must not create the file")
	}
}

func TestFileReadMissing(t *testing.T) {
	t.Parallel()

	env := newTestExecutor(t, nil)
	res := env.exec.Execute(context.Background(), tool.Call{
		ID: "r1", Tool: tool.FileRead,
		Params: map[string]any{"path": filepath.Join(t.TempDir(), "absent")},
	})
	if res.Success || res.Kind != tool.KindExecution {
		t.Fatalf("got %+v, want execution failure", res)
	}
}

func TestFileList(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("aa"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sub", "b.txt"), []byte("b"), 0o644); err != nil {
		t.Fatal(err)
	}

	env := newTestExecutor(t, nil)

	res := env.exec.Execute(context.Background(), tool.Call{
		ID: "l1", Tool: tool.FileList, Params: map[string]any{"path": dir},
	})
	if !res.Success {
		t.Fatalf("list failed: %+v", res)
	}
	if !strings.Contains(res.Output, "a.txt") || !strings.Contains(res.Output, "sub/") {
		t.Errorf("flat listing incomplete:\n%s", res.Output)
	}
	if strings.Contains(res.Output, "b.txt") {
		t.Errorf("flat listing must not descend:\n%s", res.Output)
	}

	res = env.exec.Execute(context.Background(), tool.Call{
		ID: "l2", Tool: tool.FileList,
		Params: map[string]any{"path": dir, "recursive": true},
	})
	if !res.Success || !strings.Contains(res.Output, filepath.Join("sub", "b.txt")) {
		t.Errorf("recursive listing missing nested file:\n%+v", res)
	}
}

func TestWalkDepthLimit(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	deep := dir
	for i := 0; i < maxWalkDepth+2; i++ {
		deep = filepath.Join(deep, "d")
		if err := os.Mkdir(deep, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(deep, "bottom.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	lines, err := walkDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, line := range lines {
		if strings.Contains(line, "bottom.txt") {
			t.Errorf("walk exceeded depth limit: %s", line)
		}
	}
}
