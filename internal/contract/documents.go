package contract

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/pkg/errors"

	"github.com/ZhangYouJie-Major/AskIt/internal/domain/entities"
	"github.com/ZhangYouJie-Major/AskIt/internal/domain/ports"
)

const (
	DocumentsPath = "/documents/"
	UploadPath    = "/documents/upload"

	// Multipart part names of an upload.
	FilePart       = "file"
	DepartmentPart = "department_id"
)

// DocumentClient implements ports.DocumentAPI.
type DocumentClient struct {
	transport ports.Transport
}

var _ ports.DocumentAPI = (*DocumentClient)(nil)

// NewDocumentClient creates a document contract client.
func NewDocumentClient(transport ports.Transport) *DocumentClient {
	return &DocumentClient{transport: transport}
}

// DocumentPath returns the path of a single document.
func DocumentPath(documentID int) string {
	return DocumentsPath + strconv.Itoa(documentID)
}

// List returns one page of documents in server order.
// Only the set filter fields are sent.
func (c *DocumentClient) List(ctx context.Context, filter entities.ListFilter) (*entities.DocumentListResponse, error) {
	data, err := c.transport.Send(ctx, ports.Request{
		Method: http.MethodGet,
		Path:   DocumentsPath,
		Query:  filter.Values(),
	})
	if err != nil {
		return nil, err
	}
	return decode[entities.DocumentListResponse]("list documents", documentListSchema, data)
}

// Get returns a single document.
func (c *DocumentClient) Get(ctx context.Context, documentID int) (*entities.Document, error) {
	data, err := c.transport.Send(ctx, ports.Request{
		Method: http.MethodGet,
		Path:   DocumentPath(documentID),
	})
	if err != nil {
		return nil, err
	}
	return decode[entities.Document]("get document", documentSchema, data)
}

// Upload sends file as multipart form data. The returned document carries the
// initial ingestion state; vectorization completes later on the server.
func (c *DocumentClient) Upload(ctx context.Context, file entities.UploadFile, departmentID int) (*entities.Document, error) {
	body, contentType, err := encodeUpload(file, departmentID)
	if err != nil {
		return nil, err
	}

	data, err := c.transport.Send(ctx, ports.Request{
		Method:      http.MethodPost,
		Path:        UploadPath,
		Body:        body,
		ContentType: contentType,
	})
	if err != nil {
		return nil, err
	}
	return decode[entities.Document]("upload document", documentSchema, data)
}

// Delete removes a document. The acknowledgement body is ignored.
// Deleting twice is not assumed to be safe.
func (c *DocumentClient) Delete(ctx context.Context, documentID int) error {
	_, err := c.transport.Send(ctx, ports.Request{
		Method: http.MethodDelete,
		Path:   DocumentPath(documentID),
	})
	return err
}

// encodeUpload builds a multipart body with exactly two parts:
// the binary file and the decimal department id.
func encodeUpload(file entities.UploadFile, departmentID int) ([]byte, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile(FilePart, file.Name)
	if err != nil {
		return nil, "", errors.Wrap(err, "creating file part")
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, "", errors.Wrap(err, "writing file part")
	}
	if err := writer.WriteField(DepartmentPart, strconv.Itoa(departmentID)); err != nil {
		return nil, "", errors.Wrap(err, "writing department part")
	}
	if err := writer.Close(); err != nil {
		return nil, "", errors.Wrap(err, "closing multipart body")
	}

	return body.Bytes(), writer.FormDataContentType(), nil
}
