package docstore

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/pkg/errors"

	"github.com/ZhangYouJie-Major/AskIt/internal/domain/entities"
	"github.com/ZhangYouJie-Major/AskIt/internal/domain/ports"
)

// SQLiteStore implements ports.DocumentStore on a SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

var _ ports.DocumentStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = "askit-mock.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "creating data directory")
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "initializing schema")
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		filename TEXT NOT NULL,
		original_filename TEXT NOT NULL,
		file_type TEXT NOT NULL,
		file_size INTEGER NOT NULL,
		status TEXT NOT NULL,
		vectorized INTEGER NOT NULL DEFAULT 0,
		chunk_count INTEGER NOT NULL DEFAULT 0,
		department_id INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_department_id ON documents(department_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

const documentColumns = `id, filename, original_filename, file_type, file_size, status, vectorized, chunk_count`

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (entities.Document, error) {
	var doc entities.Document
	err := row.Scan(&doc.ID, &doc.Filename, &doc.OriginalFilename, &doc.FileType,
		&doc.FileSize, &doc.Status, &doc.Vectorized, &doc.ChunkCount)
	return doc, err
}

// Create inserts doc and sets its ID.
func (s *SQLiteStore) Create(ctx context.Context, doc *entities.Document, departmentID int) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (filename, original_filename, file_type, file_size, status, vectorized, chunk_count, department_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, doc.Filename, doc.OriginalFilename, doc.FileType, doc.FileSize, doc.Status, doc.Vectorized, doc.ChunkCount, departmentID)
	if err != nil {
		return errors.Wrap(err, "inserting document")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "reading document id")
	}
	doc.ID = int(id)
	return nil
}

// Get returns a document by ID.
func (s *SQLiteStore) Get(ctx context.Context, id int) (*entities.Document, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "querying document")
	}
	return &doc, true, nil
}

// List returns documents newest first.
func (s *SQLiteStore) List(ctx context.Context, departmentID, skip, limit int) ([]entities.Document, int, error) {
	where := ""
	args := []any{}
	if departmentID != 0 {
		where = " WHERE department_id = ?"
		args = append(args, departmentID)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "counting documents")
	}

	if skip < 0 {
		skip = 0
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents`+where+` ORDER BY id DESC LIMIT ? OFFSET ?`,
		append(args, limit, skip)...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying documents")
	}
	defer rows.Close()

	docs := []entities.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, 0, errors.Wrap(err, "scanning row")
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, "iterating rows")
	}
	return docs, total, nil
}

// Update replaces the stored fields of doc.
func (s *SQLiteStore) Update(ctx context.Context, doc *entities.Document) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE documents
		SET filename = ?, original_filename = ?, file_type = ?, file_size = ?, status = ?, vectorized = ?, chunk_count = ?
		WHERE id = ?
	`, doc.Filename, doc.OriginalFilename, doc.FileType, doc.FileSize, doc.Status, doc.Vectorized, doc.ChunkCount, doc.ID)
	if err != nil {
		return errors.Wrap(err, "updating document")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "reading affected rows")
	}
	if n == 0 {
		return errors.Wrapf(ErrNotFound, "id %d", doc.ID)
	}
	return nil
}

// Delete removes a document.
func (s *SQLiteStore) Delete(ctx context.Context, id int) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return false, errors.Wrap(err, "deleting document")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "reading affected rows")
	}
	return n > 0, nil
}

// Count returns the number of documents.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n)
	return n, errors.Wrap(err, "counting documents")
}

// Departments returns the number of distinct departments.
func (s *SQLiteStore) Departments(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT department_id) FROM documents`).Scan(&n)
	return n, errors.Wrap(err, "counting departments")
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
