package usecases

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZhangYouJie-Major/AskIt/internal/domain/ports"
)

func TestUploader_UploadPathsKeepsInputOrder(t *testing.T) {
	loader := &fakeLoader{files: map[string]string{"a.txt": "a", "b.txt": "bb", "c.txt": "ccc"}}
	api := &fakeDocumentAPI{}

	results, err := NewUploader(loader, api, 2, 2).UploadPaths(context.Background(), []string{"a.txt", "b.txt", "c.txt"})
	require.NoError(t, err)

	require.Len(t, results, 3)
	for i, name := range []string{"a.txt", "b.txt", "c.txt"} {
		assert.Equal(t, name, results[i].Path)
		require.NoError(t, results[i].Err)
		assert.Equal(t, name, results[i].Document.OriginalFilename)
	}
	assert.ElementsMatch(t, []string{"a.txt", "b.txt", "c.txt"}, api.uploadedNames())
}

func TestUploader_PartialFailure(t *testing.T) {
	loader := &fakeLoader{files: map[string]string{"a.txt": "a", "bad.txt": "x"}}
	api := &fakeDocumentAPI{failNames: map[string]error{"bad.txt": assertErr("rejected")}}

	results, err := NewUploader(loader, api, 1, 1).UploadPaths(context.Background(), []string{"a.txt", "bad.txt", "missing.txt"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 3 uploads failed")
	assert.NoError(t, results[0].Err)
	assert.EqualError(t, results[1].Err, "rejected")
	assert.Error(t, results[2].Err)
}

func TestUploader_BoundsConcurrency(t *testing.T) {
	files := map[string]string{}
	var paths []string
	for _, name := range []string{"1.txt", "2.txt", "3.txt", "4.txt", "5.txt", "6.txt"} {
		files[name] = name
		paths = append(paths, name)
	}
	api := &fakeDocumentAPI{block: make(chan struct{})}
	uploader := NewUploader(&fakeLoader{files: files}, api, 1, 2)

	done := make(chan struct{})
	go func() {
		defer close(done)
		uploader.UploadPaths(context.Background(), paths)
	}()

	time.Sleep(100 * time.Millisecond)
	close(api.block)
	<-done

	assert.Equal(t, 2, api.maxFlight)
	assert.Len(t, api.uploadedNames(), 6)
}

func TestUploader_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewUploader(&fakeLoader{}, &fakeDocumentAPI{}, 1, 1).UploadPaths(ctx, []string{"a.txt"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUploader_WatchUploadsSettledFiles(t *testing.T) {
	loader := &fakeLoader{files: map[string]string{"new.txt": "data", "gone.txt": "x"}}
	api := &fakeDocumentAPI{}
	watcher := &fakeWatcher{events: make(chan ports.FileEvent, 10)}

	var mu sync.Mutex
	var got []UploadResult
	uploader := NewUploader(loader, api, 5, 1)
	uploader.SettleDelay = 50 * time.Millisecond
	uploader.OnResult = func(r UploadResult) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, r)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- uploader.Watch(ctx, watcher, "drop") }()

	watcher.events <- ports.FileEvent{Path: "new.txt", Operation: ports.FileCreated}
	watcher.events <- ports.FileEvent{Path: "new.txt", Operation: ports.FileModified}
	watcher.events <- ports.FileEvent{Path: "gone.txt", Operation: ports.FileCreated}
	watcher.events <- ports.FileEvent{Path: "gone.txt", Operation: ports.FileDeleted}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, 2*time.Second, 10*time.Millisecond)

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, []string{"new.txt"}, api.uploadedNames())

	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)
}

func TestUploader_WatchEndsWhenWatcherStops(t *testing.T) {
	watcher := &fakeWatcher{events: make(chan ports.FileEvent)}
	uploader := NewUploader(&fakeLoader{}, &fakeDocumentAPI{}, 1, 1)

	errCh := make(chan error, 1)
	go func() { errCh <- uploader.Watch(context.Background(), watcher, "drop") }()

	require.NoError(t, watcher.Stop())
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watch did not return")
	}
}
