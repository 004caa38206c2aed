// Package store keeps diagram records: a diagram plus its project and
// hierarchy metadata, addressed by id.
//
// [MemoryStore] backs the CLI and tests; [MongoStore] backs the HTTP
// service. [WithRetry] decorates any Store so that transient backend errors
// (wrapped with cache.Retryable) are retried with backoff.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/procsheet/pkg/diagram"
)

// ErrNotFound is returned for unknown record ids.
var ErrNotFound = errors.New("diagram not found")

// Summary describes a stored diagram without its geometry.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Project   string    `json:"project,omitempty"`
	Hierarchy []string  `json:"hierarchy,omitempty"`
	Lanes     int       `json:"lanes"`
	Nodes     int       `json:"nodes"`
	Edges     int       `json:"edges"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Filter narrows List results. Zero fields match everything.
type Filter struct {
	Project string
}

func (f Filter) match(d *diagram.Diagram) bool {
	return f.Project == "" || d.Project == f.Project
}

// Store is the diagram record collaborator. Implementations are safe for
// concurrent use.
type Store interface {
	// List returns summaries of matching records sorted by project, then
	// name, then id.
	List(ctx context.Context, f Filter) ([]Summary, error)
	// Get returns the record with the given id or ErrNotFound.
	Get(ctx context.Context, id string) (*diagram.Diagram, error)
	// Put creates or replaces a record. An empty id is assigned a new
	// UUID. The stored copy is returned.
	Put(ctx context.Context, d *diagram.Diagram) (*diagram.Diagram, error)
	// Delete removes a record or returns ErrNotFound.
	Delete(ctx context.Context, id string) error
	// Close releases backend resources.
	Close(ctx context.Context) error
}

// newID returns a fresh record id.
func newID() string {
	return uuid.NewString()
}

func summarize(d *diagram.Diagram, updated time.Time) Summary {
	return Summary{
		ID:        d.ID,
		Name:      d.Name,
		Project:   d.Project,
		Hierarchy: append([]string(nil), d.Hierarchy...),
		Lanes:     len(d.Lanes),
		Nodes:     len(d.Nodes),
		Edges:     len(d.Edges),
		UpdatedAt: updated,
	}
}

func lessSummary(a, b Summary) bool {
	if a.Project != b.Project {
		return a.Project < b.Project
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.ID < b.ID
}
