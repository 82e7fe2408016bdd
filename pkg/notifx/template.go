package notifx

import (
	"html/template"
	"strings"
	"sync"
)

// TemplateRegistry holds the named HTML bodies rendered into outbound
// notifications. Templates are parsed once at registration, usually by
// the worker that owns them, and shared by every subsequent send.
type TemplateRegistry struct {
	mu   sync.RWMutex
	root *template.Template
}

// NewTemplateRegistry creates an empty registry.
func NewTemplateRegistry() *TemplateRegistry {
	return &TemplateRegistry{root: template.New("notifx")}
}

// Register parses tmpl and stores it under name. Registering the same
// name again replaces the earlier template.
func (r *TemplateRegistry) Register(name, tmpl string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.root.New(name).Parse(tmpl); err != nil {
		return notifxErrors.NewWithCause(ErrTemplateParse, err).WithDetail("template", name)
	}
	return nil
}

// Render executes the named template against data and returns the
// resulting body.
func (r *TemplateRegistry) Render(name string, data interface{}) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.root.Lookup(name) == nil {
		return "", notifxErrors.New(ErrTemplateNotFound).WithDetail("template", name)
	}

	var sb strings.Builder
	if err := r.root.ExecuteTemplate(&sb, name, data); err != nil {
		return "", notifxErrors.NewWithCause(ErrTemplateRender, err).WithDetail("template", name)
	}
	return sb.String(), nil
}
