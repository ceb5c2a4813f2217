package tool

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Registry holds the immutable catalog of registered definitions.
// It is instance-based rather than a process-wide singleton so tests can
// construct isolated registries.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Definition)}
}

// Register adds a definition. Names are globally unique; registering an
// empty or duplicate name fails.
func (r *Registry) Register(def Definition) error {
	name := strings.TrimSpace(def.Name)
	if name == "" {
		return ErrEmptyToolName
	}
	def.Name = name

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, name)
	}
	r.tools[name] = def
	return nil
}

// Lookup returns the definition for name. The second return reports
// whether the name is registered.
func (r *Registry) Lookup(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.tools[name]
	return def, ok
}

// Names returns all registered tool names sorted alphabetically.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Definitions returns all registered definitions sorted by name.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]Definition, 0, len(r.tools))
	for _, def := range r.tools {
		defs = append(defs, def)
	}
	slices.SortFunc(defs, func(a, b Definition) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return defs
}

// PromptText renders the tool protocol instructions injected as the system
// prompt: the JSON block format the extractor recognizes, followed by every
// registered tool with its parameters.
func (r *Registry) PromptText() string {
	var b strings.Builder

	b.WriteString("**AVAILABLE TOOLS** — you can use these tools to act on the host system.\n\n")
	b.WriteString("To use a tool, answer with a fenced JSON block in this exact format:\n")
	b.WriteString("```json\n{\n  \"tool\": \"tool_name\",\n  \"parameters\": {\n    \"param1\": \"value1\"\n  }\n}\n```\n\n")
	b.WriteString("You may request several tools in one answer; they run in the order written.\n\n")
	b.WriteString("**Tool list:**\n\n")

	for _, def := range r.Definitions() {
		fmt.Fprintf(&b, "### %s\n%s\n", def.Name, def.Description)
		if len(def.Params) > 0 {
			b.WriteString("**Parameters:**\n")
			for _, p := range def.Params {
				req := "optional"
				if p.Required {
					req = "required"
				}
				fmt.Fprintf(&b, "- `%s` (%s, %s): %s\n", p.Name, p.Type, req, p.Description)
			}
		}
		if def.Dangerous {
			b.WriteString("⚠️ *Dangerous tool: requires operator confirmation.*\n")
		}
		b.WriteByte('\n')
	}

	return b.String()
}
