// Package resources implements the server-side resources/* surface: a
// registry of static and templated resources, each backed by a read
// function, plus sqlite-durable subscription bookkeeping for
// resources/subscribe and the notifications/resources/updated push it
// enables.
package resources

import (
	"fmt"
	"sync"

	"github.com/richard-senior/mcp/internal/logger"
	"github.com/richard-senior/mcp/pkg/protocol"
)

// ReadFunc produces the current contents of one resource.
type ReadFunc func(uri string) (*protocol.ReadResourceResult, error)

type entry struct {
	resource protocol.Resource
	read     ReadFunc
}

// Registry holds every resource and resource template this server exposes.
type Registry struct {
	mu        sync.RWMutex
	resources map[string]*entry
	templates []protocol.ResourceTemplate
}

func NewRegistry() *Registry {
	return &Registry{resources: make(map[string]*entry)}
}

// Register adds a concrete, addressable resource.
func (r *Registry) Register(resource protocol.Resource, read ReadFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resources[resource.URI] = &entry{resource: resource, read: read}
	logger.Info("Registered resource:", resource.URI)
}

// RegisterTemplate adds a parameterized resource family; templates are
// listed via resources/templates/list but are not individually readable
// until a concrete URI matching the template is also Register-ed.
func (r *Registry) RegisterTemplate(tmpl protocol.ResourceTemplate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates = append(r.templates, tmpl)
}

func (r *Registry) List() []protocol.Resource {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]protocol.Resource, 0, len(r.resources))
	for _, e := range r.resources {
		out = append(out, e.resource)
	}
	return out
}

func (r *Registry) Templates() []protocol.ResourceTemplate {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]protocol.ResourceTemplate(nil), r.templates...)
}

func (r *Registry) Read(uri string) (*protocol.ReadResourceResult, error) {
	r.mu.RLock()
	e, ok := r.resources[uri]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("resource not found: %s", uri)
	}
	return e.read(uri)
}

// Exists reports whether uri names a registered resource, used by
// resources/subscribe to reject subscriptions to unknown URIs up front.
func (r *Registry) Exists(uri string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.resources[uri]
	return ok
}
