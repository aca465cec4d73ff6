package artifact

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/voicegw/internal/config"
	"github.com/mattjoyce/voicegw/internal/remote"
	"github.com/mattjoyce/voicegw/internal/remote/mocks"
)

func classifyOperation(docRef string) *remote.Operation {
	op := &remote.Operation{
		ID:         "op-9",
		Type:       remote.OpClassifyTranscript,
		Parameters: remote.Parameters{AudioID: "audio-9"},
	}
	if docRef != "" {
		op.Result = &remote.Result{Document: &remote.Document{Transcript: docRef}}
	}
	return op
}

func TestFetch_WritesArtifact(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	content := []byte(`{"transcript":"hello","topics":["billing"]}`)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(content)
	}))
	defer ts.Close()

	client := mocks.NewMockClient(ctrl)
	client.EXPECT().
		DocumentLink(gomock.Any(), "doc-1").
		Return(ts.URL+"/transient/doc-1", nil)

	dir := t.TempDir()
	d := NewDownloader(client, config.StorageConfig{Dir: dir, Mode: config.ModeLocal})

	require.NoError(t, d.Fetch(context.Background(), classifyOperation("doc-1")))

	got, err := os.ReadFile(filepath.Join(dir, "audio-9.json"))
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestFetch_OverwritesOnRedelivery(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"transcript":"second"}`))
	}))
	defer ts.Close()

	client := mocks.NewMockClient(ctrl)
	client.EXPECT().
		DocumentLink(gomock.Any(), "doc-1").
		Return(ts.URL, nil)

	dir := t.TempDir()
	dest := filepath.Join(dir, "audio-9.json")
	require.NoError(t, os.WriteFile(dest, []byte(`{"transcript":"first"}`), 0o644))

	d := NewDownloader(client, config.StorageConfig{Dir: dir, Mode: config.ModeLocal})
	require.NoError(t, d.Fetch(context.Background(), classifyOperation("doc-1")))

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.JSONEq(t, `{"transcript":"second"}`, string(got))
}

func TestFetch_NotFoundLeavesNoArtifact(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer ts.Close()

	client := mocks.NewMockClient(ctrl)
	client.EXPECT().
		DocumentLink(gomock.Any(), "doc-1").
		Return(ts.URL, nil)

	dir := t.TempDir()
	d := NewDownloader(client, config.StorageConfig{Dir: dir, Mode: config.ModeLocal})

	err := d.Fetch(context.Background(), classifyOperation("doc-1"))
	require.Error(t, err)

	var serr *remote.StatusError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusNotFound, serr.Code)

	_, statErr := os.Stat(filepath.Join(dir, "audio-9.json"))
	assert.True(t, os.IsNotExist(statErr), "no partial artifact may remain")
}

func TestFetch_LinkOnlyModeSkipsDownload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer ts.Close()

	client := mocks.NewMockClient(ctrl)
	client.EXPECT().
		DocumentLink(gomock.Any(), "doc-1").
		Return(ts.URL, nil)

	dir := t.TempDir()
	d := NewDownloader(client, config.StorageConfig{Dir: dir, Mode: config.ModeLinkOnly})

	require.NoError(t, d.Fetch(context.Background(), classifyOperation("doc-1")))
	assert.Zero(t, hits.Load(), "link-only mode must not fetch the artifact")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFetch_NoDocumentReference(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No DocumentLink expectation: a result without a document reference
	// is logged and dropped.
	client := mocks.NewMockClient(ctrl)

	d := NewDownloader(client, config.StorageConfig{Dir: t.TempDir(), Mode: config.ModeLocal})
	require.NoError(t, d.Fetch(context.Background(), classifyOperation("")))
}

func TestFetch_LinkResolutionFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockClient(ctrl)
	client.EXPECT().
		DocumentLink(gomock.Any(), "doc-1").
		Return("", &remote.StatusError{Code: 403, Message: "expired"})

	d := NewDownloader(client, config.StorageConfig{Dir: t.TempDir(), Mode: config.ModeLocal})
	err := d.Fetch(context.Background(), classifyOperation("doc-1"))
	require.Error(t, err)
}
