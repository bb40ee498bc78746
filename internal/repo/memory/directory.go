package memory

import (
	"context"
	"sync"
)

// Directory answers user and project existence for the memory driver.
type Directory struct {
	mu       sync.RWMutex
	users    map[string]struct{}
	projects map[string]string
}

func NewDirectory() *Directory {
	return &Directory{
		users:    make(map[string]struct{}),
		projects: make(map[string]string),
	}
}

func (d *Directory) AddUser(userID string) {
	d.mu.Lock()
	d.users[userID] = struct{}{}
	d.mu.Unlock()
}

// AddProject registers a project and its owner. The owner becomes a known user.
func (d *Directory) AddProject(projectID, ownerID string) {
	d.mu.Lock()
	d.projects[projectID] = ownerID
	d.users[ownerID] = struct{}{}
	d.mu.Unlock()
}

func (d *Directory) Exists(_ context.Context, userID string) (bool, error) {
	d.mu.RLock()
	_, ok := d.users[userID]
	d.mu.RUnlock()
	return ok, nil
}

func (d *Directory) OwnerOf(_ context.Context, projectID string) (string, bool, error) {
	d.mu.RLock()
	owner, ok := d.projects[projectID]
	d.mu.RUnlock()
	return owner, ok, nil
}
