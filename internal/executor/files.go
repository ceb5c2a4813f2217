package executor

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/matehq/mate/internal/security"
	"github.com/matehq/mate/internal/tool"
)

const (
	// maxFileReadBytes bounds file content fed back into the conversation.
	maxFileReadBytes = 64 * 1024
	// maxListEntries bounds directory listings.
	maxListEntries = 500
	// maxWalkDepth bounds recursive listings below the root.
	maxWalkDepth = 5
)

func (e *Executor) fileRead(call tool.Call) tool.Result {
	path := stringParam(call.Params, "path")

	data, err := os.ReadFile(path)
	if err != nil {
		return tool.Fail(call.Tool, tool.KindExecution, fmt.Errorf("executor: read %s: %w", path, err))
	}
	content := security.Truncate(string(data), maxFileReadBytes)
	if len(content) < len(data) {
		content += fmt.Sprintf("\n... (truncated, %d bytes total)", len(data))
	}
	return tool.Ok(call.Tool, content)
}

func (e *Executor) fileWrite(call tool.Call) tool.Result {
	path := stringParam(call.Params, "path")
	content := stringParam(call.Params, "content")

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return tool.Fail(call.Tool, tool.KindExecution, fmt.Errorf("executor: write %s: %w", path, err))
	}
	return tool.Ok(call.Tool, fmt.Sprintf("wrote %d bytes to %s", len(content), path))
}

func (e *Executor) fileList(call tool.Call) tool.Result {
	root := stringParam(call.Params, "path")
	recursive := boolParam(call.Params, "recursive")

	var lines []string
	var err error
	if recursive {
		lines, err = walkDir(root)
	} else {
		lines, err = listDir(root)
	}
	if err != nil {
		return tool.Fail(call.Tool, tool.KindExecution, fmt.Errorf("executor: list %s: %w", root, err))
	}
	if len(lines) == 0 {
		return tool.Ok(call.Tool, "(empty directory)")
	}
	return tool.Ok(call.Tool, strings.Join(lines, "\n"))
}

func listDir(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		if len(lines) >= maxListEntries {
			lines = append(lines, "... (listing truncated)")
			break
		}
		lines = append(lines, formatEntry(entry.Name(), entry))
	}
	return lines, nil
}

func walkDir(root string) ([]string, error) {
	var lines []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are noted, not fatal.
			lines = append(lines, fmt.Sprintf("%s (unreadable)", path))
			return fs.SkipDir
		}
		if path == root {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		if strings.Count(rel, string(filepath.Separator)) >= maxWalkDepth {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if len(lines) >= maxListEntries {
			lines = append(lines, "... (listing truncated)")
			return fs.SkipAll
		}
		lines = append(lines, formatEntry(rel, d))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func formatEntry(name string, d fs.DirEntry) string {
	if d.IsDir() {
		return name + "/"
	}
	if info, err := d.Info(); err == nil {
		return fmt.Sprintf("%s (%d bytes)", name, info.Size())
	}
	return name
}
