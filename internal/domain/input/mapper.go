// Package input maps abstract actions to the concrete keys that trigger them.
package input

import (
	"sort"

	"github.com/okian/qte/internal/domain/model"
)

// MappingContext is a named set of action bindings.
type MappingContext struct {
	name     string
	bindings map[model.Action][]model.Key
}

// NewMappingContext returns an empty context.
func NewMappingContext(name string) *MappingContext {
	return &MappingContext{name: name, bindings: make(map[model.Action][]model.Key)}
}

// FromBindings builds a context from raw action -> key names.
func FromBindings(name string, bindings map[string][]string) *MappingContext {
	c := NewMappingContext(name)
	for action, keys := range bindings {
		c.Bind(model.NormalizeAction(action), model.NormalizeKeys(keys)...)
	}
	return c
}

// Name returns the context name.
func (c *MappingContext) Name() string { return c.name }

// Bind adds keys to action. Keys already bound are skipped.
func (c *MappingContext) Bind(action model.Action, keys ...model.Key) *MappingContext {
	for _, k := range keys {
		if !k.Valid() || model.ContainsKey(c.bindings[action], k) {
			continue
		}
		c.bindings[action] = append(c.bindings[action], k)
	}
	return c
}

// Unbind drops every key bound to action.
func (c *MappingContext) Unbind(action model.Action) {
	delete(c.bindings, action)
}

// Keys returns the keys bound to action in this context.
func (c *MappingContext) Keys(action model.Action) []model.Key {
	return append([]model.Key(nil), c.bindings[action]...)
}

// Actions returns the bound action names, sorted.
func (c *MappingContext) Actions() []model.Action {
	out := make([]model.Action, 0, len(c.bindings))
	for a := range c.bindings {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

type applied struct {
	ctx      *MappingContext
	priority int
}

// Mapper holds the active mapping contexts of one local player.
// Higher priority contexts come first when keys are listed.
type Mapper struct {
	contexts []applied
}

// NewMapper returns a mapper with no contexts.
func NewMapper() *Mapper { return &Mapper{} }

// AddContext activates c, replacing any context with the same name.
func (m *Mapper) AddContext(c *MappingContext, priority int) {
	if c == nil {
		return
	}
	m.RemoveContext(c.name)
	m.contexts = append(m.contexts, applied{ctx: c, priority: priority})
	sort.SliceStable(m.contexts, func(i, j int) bool {
		return m.contexts[i].priority > m.contexts[j].priority
	})
}

// RemoveContext deactivates the named context.
func (m *Mapper) RemoveContext(name string) bool {
	for i, a := range m.contexts {
		if a.ctx.name == name {
			m.contexts = append(m.contexts[:i], m.contexts[i+1:]...)
			return true
		}
	}
	return false
}

// Contexts lists active context names by priority.
func (m *Mapper) Contexts() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.contexts))
	for i, a := range m.contexts {
		out[i] = a.ctx.name
	}
	return out
}

// ResolveActionToKeys returns the union of keys bound to action across the
// active contexts. With no context it returns nothing.
func (m *Mapper) ResolveActionToKeys(action model.Action) []model.Key {
	if m == nil {
		return nil
	}
	var out []model.Key
	for _, a := range m.contexts {
		for _, k := range a.ctx.bindings[action] {
			if !model.ContainsKey(out, k) {
				out = append(out, k)
			}
		}
	}
	return out
}
