package host

import (
	"maps"
	"sync"
)

// StyleVarChange describes a root style variable write.
type StyleVarChange struct {
	Name  string
	Value string
}

// Document holds the root element's style variables and whether text
// selection is enabled.
type Document struct {
	mu         sync.RWMutex
	vars       map[string]string
	selectable bool

	changes listenerSet[StyleVarChange]
}

// NewDocument returns a document with the given initial root variables.
func NewDocument(vars map[string]string) *Document {
	d := &Document{
		vars:       make(map[string]string, len(vars)),
		selectable: true,
	}
	maps.Copy(d.vars, vars)
	return d
}

// StyleVar returns the value of a root style variable, or "" if unset.
func (d *Document) StyleVar(name string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.vars[name]
}

// StyleVars returns a copy of all root style variables.
func (d *Document) StyleVars() map[string]string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return maps.Clone(d.vars)
}

// SetStyleVar writes a root style variable and notifies listeners when the
// value changed.
func (d *Document) SetStyleVar(name, value string) {
	d.mu.Lock()
	old, ok := d.vars[name]
	d.vars[name] = value
	d.mu.Unlock()
	if !ok || old != value {
		d.changes.emit(StyleVarChange{Name: name, Value: value})
	}
}

// OnStyleVar registers fn for style variable writes.
func (d *Document) OnStyleVar(fn func(StyleVarChange)) (unsubscribe func()) {
	return d.changes.add(fn)
}

// SetSelectable toggles text selection (document.onselectstart).
func (d *Document) SetSelectable(selectable bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.selectable = selectable
}

// Selectable reports whether text selection is enabled.
func (d *Document) Selectable() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.selectable
}
