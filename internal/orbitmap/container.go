package orbitmap

import "sync"

// Container is a render surface a map mounts on: a named region with a
// cell size. The host owns containers and resizes them as the terminal
// changes.
type Container struct {
	ID     string
	Width  int
	Height int
}

// Surfaces is a registry of containers keyed by ID, the mount-point lookup
// used by Router.CreateAndInit.
type Surfaces struct {
	mu sync.RWMutex
	m  map[string]*Container
}

// NewSurfaces creates an empty registry.
func NewSurfaces() *Surfaces {
	return &Surfaces{m: make(map[string]*Container)}
}

// Register adds or replaces a container.
func (s *Surfaces) Register(c *Container) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[c.ID] = c
}

// Lookup returns the container with the given ID.
func (s *Surfaces) Lookup(id string) (*Container, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.m[id]
	return c, ok
}

// Remove deletes a container from the registry.
func (s *Surfaces) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
}
