package mockserver_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZhangYouJie-Major/AskIt/internal/adapters/docstore"
	"github.com/ZhangYouJie-Major/AskIt/internal/adapters/httpclient"
	"github.com/ZhangYouJie-Major/AskIt/internal/contract"
	"github.com/ZhangYouJie-Major/AskIt/internal/domain/entities"
	"github.com/ZhangYouJie-Major/AskIt/internal/infrastructure/mockserver"
)

func startServer(t *testing.T, cfg mockserver.Config) (*mockserver.Server, *contract.Client) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := mockserver.New(cfg)
	go srv.Serve(ln)
	t.Cleanup(func() { srv.Shutdown() })

	transport := httpclient.NewClient(httpclient.Config{
		BaseURL: "http://" + ln.Addr().String() + mockserver.DefaultPrefix,
		Timeout: 5 * time.Second,
	})
	return srv, contract.New(transport)
}

func TestEndToEnd_DocumentLifecycle(t *testing.T) {
	_, client := startServer(t, mockserver.Config{ProcessingDelay: 50 * time.Millisecond, ChunkCount: 7})
	ctx := context.Background()

	doc, err := client.Documents.Upload(ctx, entities.UploadFile{Name: "hr.pdf", Data: []byte("%PDF-")}, 3)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusPending, doc.Status)
	assert.Equal(t, int64(5), doc.FileSize)

	list, err := client.Documents.List(ctx, entities.ListFilter{DepartmentID: entities.Some(3)})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)

	list, err = client.Documents.List(ctx, entities.ListFilter{DepartmentID: entities.Some(4)})
	require.NoError(t, err)
	assert.Equal(t, 0, list.Total)
	assert.Empty(t, list.Documents)

	require.Eventually(t, func() bool {
		got, err := client.Documents.Get(ctx, doc.ID)
		return err == nil && got.Vectorized && got.ChunkCount == 7
	}, 2*time.Second, 20*time.Millisecond)

	resp, err := client.Query.Query(ctx, entities.QueryRequest{Question: "What is the leave policy?", DepartmentID: 3})
	require.NoError(t, err)
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, doc.ID, resp.Sources[0].DocumentID)
	assert.Equal(t, "hr.pdf", resp.Sources[0].Filename)

	require.NoError(t, client.Documents.Delete(ctx, doc.ID))

	err = client.Documents.Delete(ctx, doc.ID)
	require.Error(t, err)
	assert.True(t, entities.IsNotFound(err))
	assert.Equal(t, 404, entities.StatusCode(err))
}

func TestEndToEnd_ScriptedQuery(t *testing.T) {
	srv, client := startServer(t, mockserver.Config{
		Answer: func(ctx context.Context, req entities.QueryRequest) (*entities.QueryResponse, error) {
			return &entities.QueryResponse{
				Answer:  "Employees get 15 days.",
				Sources: []entities.Source{{DocumentID: 7, ChunkID: "c1", Filename: "hr.pdf", Score: 0.91}},
			}, nil
		},
	})

	req := entities.QueryRequest{
		Question:     "What is the leave policy?",
		DepartmentID: 3,
		History:      entities.Some([]entities.ChatTurn{{Role: entities.RoleUser, Content: "hello"}}),
		TopK:         entities.Some(5),
	}
	resp, err := client.Query.Query(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, 0.91, resp.Sources[0].Score)

	queries := srv.Queries()
	require.Len(t, queries, 1)
	assert.Equal(t, req, queries[0])
}

func TestEndToEnd_HealthAndStats(t *testing.T) {
	_, client := startServer(t, mockserver.Config{})
	ctx := context.Background()

	health, err := client.Health.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, "healthy", health.Status)

	_, err = client.Documents.Upload(ctx, entities.UploadFile{Name: "a.txt", Data: []byte("a")}, 1)
	require.NoError(t, err)

	stats, err := client.Health.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Documents)
	assert.Equal(t, 1, stats.Departments)
}

func TestEndToEnd_SQLiteStore(t *testing.T) {
	store, err := docstore.NewSQLiteStore(t.TempDir() + "/mock.db")
	require.NoError(t, err)
	defer store.Close()

	_, client := startServer(t, mockserver.Config{Store: store})
	ctx := context.Background()

	for _, name := range []string{"a.md", "b.md", "c.md"} {
		_, err := client.Documents.Upload(ctx, entities.UploadFile{Name: name, Data: []byte(name)}, 2)
		require.NoError(t, err)
	}

	list, err := client.Documents.List(ctx, entities.ListFilter{
		DepartmentID: entities.Some(2), Skip: entities.Some(1), Limit: entities.Some(1),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, list.Total)
	require.Len(t, list.Documents, 1)
	assert.Equal(t, "b.md", list.Documents[0].OriginalFilename)
}

func TestEndToEnd_UploadRejectedByServer(t *testing.T) {
	_, client := startServer(t, mockserver.Config{})

	_, err := client.Documents.Upload(context.Background(), entities.UploadFile{Name: "run.sh", Data: []byte("x")}, 1)
	require.Error(t, err)
	assert.Equal(t, 400, entities.StatusCode(err))
}
