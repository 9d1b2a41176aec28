package usecases

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/ZhangYouJie-Major/AskIt/internal/domain/entities"
	"github.com/ZhangYouJie-Major/AskIt/internal/domain/ports"
)

// mockQueryAPI implements ports.QueryAPI for testing
type mockQueryAPI struct {
	mock.Mock
}

func (m *mockQueryAPI) Query(ctx context.Context, req entities.QueryRequest) (*entities.QueryResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*entities.QueryResponse)
	return resp, args.Error(1)
}

// fakeDocumentAPI implements ports.DocumentAPI with an in-memory registry
type fakeDocumentAPI struct {
	mu        sync.Mutex
	nextID    int
	uploads   []entities.UploadFile
	failNames map[string]error
	gets      []*entities.Document // returned in order by Get, last one repeats
	getErr    error
	getCalls  int
	inFlight  int
	maxFlight int
	block     chan struct{}
}

func (f *fakeDocumentAPI) List(ctx context.Context, filter entities.ListFilter) (*entities.DocumentListResponse, error) {
	return &entities.DocumentListResponse{}, nil
}

func (f *fakeDocumentAPI) Get(ctx context.Context, id int) (*entities.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	i := f.getCalls - 1
	if i >= len(f.gets) {
		i = len(f.gets) - 1
	}
	doc := *f.gets[i]
	return &doc, nil
}

func (f *fakeDocumentAPI) Upload(ctx context.Context, file entities.UploadFile, departmentID int) (*entities.Document, error) {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxFlight {
		f.maxFlight = f.inFlight
	}
	f.mu.Unlock()

	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight--
	if err := f.failNames[file.Name]; err != nil {
		return nil, err
	}
	f.nextID++
	f.uploads = append(f.uploads, file)
	return &entities.Document{
		ID:               f.nextID,
		OriginalFilename: file.Name,
		FileSize:         int64(len(file.Data)),
		Status:           entities.StatusPending,
	}, nil
}

func (f *fakeDocumentAPI) Delete(ctx context.Context, id int) error {
	return nil
}

func (f *fakeDocumentAPI) uploadedNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.uploads))
	for _, u := range f.uploads {
		names = append(names, u.Name)
	}
	return names
}

// fakeLoader serves file contents from a map keyed by path
type fakeLoader struct {
	files map[string]string
}

func (l *fakeLoader) Load(ctx context.Context, path string) (*entities.UploadFile, error) {
	data, ok := l.files[path]
	if !ok {
		return nil, assertErr("missing " + path)
	}
	return &entities.UploadFile{Name: path, Data: []byte(data)}, nil
}

func (l *fakeLoader) SupportedExtensions() []string {
	return []string{".txt"}
}

// fakeWatcher emits events pushed by the test
type fakeWatcher struct {
	events chan ports.FileEvent
}

func (w *fakeWatcher) Watch(ctx context.Context, dir string) (<-chan ports.FileEvent, error) {
	return w.events, nil
}

func (w *fakeWatcher) Stop() error {
	close(w.events)
	return nil
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
