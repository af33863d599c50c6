package template

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sync"
	"text/template"
)

//go:embed templates
var embedded embed.FS

const suffix = ".tmpl"

// Engine renders named templates from the embedded tree or an override directory
type Engine struct {
	mu      sync.Mutex
	sources []fs.FS
	cache   map[string]*template.Template
}

// New creates an engine. Files under overrideDir shadow the embedded
// templates of the same name; an empty overrideDir disables overrides.
func New(overrideDir string) *Engine {
	root, _ := fs.Sub(embedded, "templates")
	sources := []fs.FS{root}
	if overrideDir != "" {
		sources = append([]fs.FS{os.DirFS(overrideDir)}, sources...)
	}
	return &Engine{
		sources: sources,
		cache:   make(map[string]*template.Template),
	}
}

// Render executes the template registered as name (e.g.
// "services/iscsi/iscsi-gateway.cfg") with ctx
func (e *Engine) Render(name string, ctx map[string]any) (string, error) {
	tmpl, err := e.lookup(name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}

func (e *Engine) lookup(name string) (*template.Template, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if tmpl, ok := e.cache[name]; ok {
		return tmpl, nil
	}

	file := name + suffix
	for _, src := range e.sources {
		data, err := fs.ReadFile(src, file)
		if err != nil {
			continue
		}
		tmpl, err := template.New(path.Base(file)).Option("missingkey=error").Parse(string(data))
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		e.cache[name] = tmpl
		return tmpl, nil
	}
	return nil, fmt.Errorf("template not found: %s", name)
}
