// Package ports defines interfaces for external dependencies.
// Contract clients and use cases depend on these abstractions; adapters
// implement them.
package ports

import (
	"context"
	"net/url"

	"github.com/ZhangYouJie-Major/AskIt/internal/domain/entities"
)

// Request is one outbound API call, relative to the transport's base URL.
type Request struct {
	Method      string
	Path        string
	Query       url.Values // nil or empty sends no query string
	Body        []byte     // nil sends no body
	ContentType string
}

// Transport sends API requests and returns the raw response body of a
// successful exchange. Non-success statuses are returned as
// *entities.StatusError. Implementations must not retry.
type Transport interface {
	Send(ctx context.Context, req Request) ([]byte, error)
}

// QueryAPI executes RAG queries.
type QueryAPI interface {
	Query(ctx context.Context, req entities.QueryRequest) (*entities.QueryResponse, error)
}

// DocumentAPI manages knowledge-base documents.
type DocumentAPI interface {
	List(ctx context.Context, filter entities.ListFilter) (*entities.DocumentListResponse, error)
	Get(ctx context.Context, documentID int) (*entities.Document, error)
	Upload(ctx context.Context, file entities.UploadFile, departmentID int) (*entities.Document, error)
	Delete(ctx context.Context, documentID int) error
}

// FileLoader reads a local file into an upload payload.
type FileLoader interface {
	Load(ctx context.Context, path string) (*entities.UploadFile, error)

	// SupportedExtensions returns file extensions this loader accepts.
	SupportedExtensions() []string
}

// DocumentStore persists document records for the mock server.
type DocumentStore interface {
	// Create assigns an ID to doc and stores it.
	Create(ctx context.Context, doc *entities.Document, departmentID int) error

	// Get returns the document, or ok=false when it does not exist.
	Get(ctx context.Context, id int) (doc *entities.Document, ok bool, err error)

	// List returns documents newest first, plus the total matching count.
	// departmentID 0 matches all departments.
	List(ctx context.Context, departmentID, skip, limit int) ([]entities.Document, int, error)

	// Update replaces the stored record with the same ID.
	Update(ctx context.Context, doc *entities.Document) error

	// Delete removes the document and reports whether it existed.
	Delete(ctx context.Context, id int) (bool, error)

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	// Departments returns the number of distinct departments with documents.
	Departments(ctx context.Context) (int, error)
}

// FileWatcher monitors a directory for changes.
type FileWatcher interface {
	// Watch starts monitoring the directory and emits events.
	Watch(ctx context.Context, dir string) (<-chan FileEvent, error)

	// Stop stops the watcher.
	Stop() error
}

// FileEvent represents a file system change.
type FileEvent struct {
	Path      string
	Operation FileOperation
}

// FileOperation is the type of file change.
type FileOperation int

const (
	FileCreated FileOperation = iota
	FileModified
	FileDeleted
)

func (op FileOperation) String() string {
	switch op {
	case FileCreated:
		return "created"
	case FileModified:
		return "modified"
	case FileDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}
