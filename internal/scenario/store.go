// Package scenario persists named viewshed request scenarios.
package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"viewshed-explorer/internal/viewshed"
)

// Scenario is a saved request with a display name.
type Scenario struct {
	ID        string           `json:"id" doc:"Scenario identifier"`
	Name      string           `json:"name" required:"true" minLength:"1" maxLength:"100" doc:"Display name" example:"Lookout ridge"`
	CreatedAt time.Time        `json:"createdAt" doc:"Creation time (UTC)"`
	Request   viewshed.Request `json:"request" doc:"The saved viewshed request"`
}

// Store manages scenarios with JSON file persistence.
type Store struct {
	dataDir string
	mu      sync.Mutex
	items   []Scenario
}

// NewStore creates a store rooted at dataDir and loads any existing file.
func NewStore(dataDir string) *Store {
	s := &Store{dataDir: dataDir}
	s.loadFromDisk()
	return s
}

// List returns all scenarios, newest first.
func (s *Store) List() []Scenario {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]Scenario, len(s.items))
	copy(result, s.items)
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

// Get returns a scenario by ID.
func (s *Store) Get(id string) (Scenario, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Scenario{}, false
}

// Save appends a new scenario for the given request.
func (s *Store) Save(name string, req viewshed.Request) (Scenario, error) {
	if name == "" {
		return Scenario{}, fmt.Errorf("scenario name is required")
	}

	sc := Scenario{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Request:   req,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = append(s.items, sc)
	if err := s.saveToDisk(); err != nil {
		s.items = s.items[:len(s.items)-1]
		return Scenario{}, err
	}

	DefaultBus.Publish(Event{Action: "created", ID: sc.ID})
	return sc, nil
}

// Delete removes a scenario by ID.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := s.items[:0:0]
	for _, item := range s.items {
		if item.ID != id {
			filtered = append(filtered, item)
		}
	}
	if len(filtered) == len(s.items) {
		return fmt.Errorf("scenario %q not found", id)
	}

	s.items = filtered
	if err := s.saveToDisk(); err != nil {
		return err
	}

	DefaultBus.Publish(Event{Action: "deleted", ID: id})
	return nil
}

// storeFile returns the path to the scenarios file.
func (s *Store) storeFile() string {
	return filepath.Join(s.dataDir, "scenarios.json")
}

// loadFromDisk loads scenarios from disk.
func (s *Store) loadFromDisk() {
	data, err := os.ReadFile(s.storeFile())
	if err != nil {
		return // File doesn't exist yet, start empty
	}

	var items []Scenario
	if err := json.Unmarshal(data, &items); err != nil {
		return // Invalid JSON, start empty
	}

	s.items = items
}

// saveToDisk persists scenarios with a write-then-rename so readers never see
// a partial file.
func (s *Store) saveToDisk() error {
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s.items, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.storeFile() + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.storeFile())
}
