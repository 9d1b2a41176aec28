// Package entities contains the AskIt API contract types.
// These are transient value objects: built per call, owned by the caller,
// never mutated by the contract layer.
package entities

import (
	"encoding/json"
	"net/url"
	"strconv"
)

// Document status values reported by the AskIt server.
// The lifecycle is owned by the server; these are observed, never enforced.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Chat roles used in query history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatTurn represents one conversation turn sent as query history.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// QueryRequest is the body of a RAG query.
type QueryRequest struct {
	Question     string
	DepartmentID int
	History      Optional[[]ChatTurn] // chronological order
	TopK         Optional[int]
}

// queryRequestWire is the JSON shape of QueryRequest. Unset optionals are nil
// pointers and dropped by omitempty.
type queryRequestWire struct {
	Question     string      `json:"question"`
	DepartmentID int         `json:"department_id"`
	History      *[]ChatTurn `json:"history,omitempty"`
	TopK         *int        `json:"top_k,omitempty"`
}

// MarshalJSON encodes the request, omitting unset history and top_k.
// A set but nil history is sent as an empty list.
func (r QueryRequest) MarshalJSON() ([]byte, error) {
	history := r.History.ptr()
	if history != nil && *history == nil {
		*history = []ChatTurn{}
	}
	return json.Marshal(queryRequestWire{
		Question:     r.Question,
		DepartmentID: r.DepartmentID,
		History:      history,
		TopK:         r.TopK.ptr(),
	})
}

// UnmarshalJSON decodes the request. A null or missing field stays unset.
func (r *QueryRequest) UnmarshalJSON(data []byte) error {
	var w queryRequestWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = QueryRequest{
		Question:     w.Question,
		DepartmentID: w.DepartmentID,
		History:      fromPtr(w.History),
		TopK:         fromPtr(w.TopK),
	}
	return nil
}

// Source is a retrieved chunk cited by an answer.
type Source struct {
	DocumentID int     `json:"document_id"`
	ChunkID    string  `json:"chunk_id"`
	Filename   string  `json:"filename"`
	Score      float64 `json:"score"`
}

// QueryResponse is the answer with its sources in server relevance order.
type QueryResponse struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

// Document is a knowledge-base document record.
type Document struct {
	ID               int    `json:"id"`
	Filename         string `json:"filename"`
	OriginalFilename string `json:"original_filename"`
	FileType         string `json:"file_type"`
	FileSize         int64  `json:"file_size"`
	Status           string `json:"status"`
	Vectorized       bool   `json:"vectorized"`
	ChunkCount       int    `json:"chunk_count"`
}

// DocumentListResponse is one page of documents.
// Total counts all matching documents and may exceed len(Documents).
type DocumentListResponse struct {
	Total     int        `json:"total"`
	Documents []Document `json:"documents"`
}

// ListFilter narrows a document listing. Unset fields fall back to server defaults.
type ListFilter struct {
	DepartmentID Optional[int]
	Skip         Optional[int]
	Limit        Optional[int]
}

// Values encodes only the set fields as query parameters.
func (f ListFilter) Values() url.Values {
	v := url.Values{}
	setInt(v, "department_id", f.DepartmentID)
	setInt(v, "skip", f.Skip)
	setInt(v, "limit", f.Limit)
	return v
}

func setInt(v url.Values, key string, o Optional[int]) {
	if n, ok := o.Get(); ok {
		v.Set(key, strconv.Itoa(n))
	}
}

// UploadFile is a binary payload to upload.
type UploadFile struct {
	Name string // filename sent in the multipart part
	Data []byte
}

// HealthStatus is the server health probe result.
type HealthStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Stats holds server-wide counters.
type Stats struct {
	Users       int `json:"users"`
	Documents   int `json:"documents"`
	Departments int `json:"departments"`
}
