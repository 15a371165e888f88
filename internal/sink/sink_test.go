package sink

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/specialistvlad/pathscript/internal/ctxlog"
	"github.com/specialistvlad/pathscript/internal/fsutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func artifact() *Artifact {
	return &Artifact{Name: "run.py", RunType: "TPS", Session: "s-1", Text: "import openpathsampling as paths\n"}
}

func TestFile_WritesIntoDirectory(t *testing.T) {
	// Arrange
	ctx := ctxlog.Discard(context.Background())
	dir := t.TempDir()
	f := &File{Path: dir}

	// Act
	err := f.Write(ctx, artifact())

	// Assert
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dir, "run.py"))
	require.NoError(t, err)
	assert.Equal(t, artifact().Text, string(data))
}

func TestFile_Overwrite(t *testing.T) {
	ctx := ctxlog.Discard(context.Background())
	path := filepath.Join(t.TempDir(), "tps.py")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o600))

	err := (&File{Path: path}).Write(ctx, artifact())
	require.ErrorIs(t, err, fsutil.ErrExists)

	require.NoError(t, (&File{Path: path, Overwrite: true}).Write(ctx, artifact()))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, artifact().Text, string(data))
}

func TestFile_TargetDefaultsName(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, filepath.Join(dir, DefaultFileName), (&File{Path: dir}).Target(&Artifact{}))
	assert.Equal(t, filepath.Join(dir, "x.py"), (&File{Path: filepath.Join(dir, "x.py")}).Target(artifact()))
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&Writer{W: &buf}).Write(context.Background(), artifact()))
	assert.Equal(t, artifact().Text, buf.String())
}

func TestUpload(t *testing.T) {
	testCases := []struct {
		name    string
		status  int
		wantErr string
	}{
		{name: "ok", status: http.StatusOK},
		{name: "created", status: http.StatusCreated},
		{name: "forbidden", status: http.StatusForbidden, wantErr: "upload failed with status: 403 Forbidden"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			var (
				gotMethod string
				gotBody   []byte
				gotLength int64
			)
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotMethod = r.Method
				gotLength = r.ContentLength
				gotBody, _ = io.ReadAll(r.Body)
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()
			u := &Upload{URL: srv.URL + "/bucket/run.py?sig=abc", Client: srv.Client()}

			// Act
			err := u.Write(ctxlog.Discard(context.Background()), artifact())

			// Assert
			assert.Equal(t, http.MethodPut, gotMethod)
			assert.Equal(t, artifact().Text, string(gotBody))
			assert.Equal(t, int64(len(artifact().Text)), gotLength)
			if tc.wantErr != "" {
				assert.EqualError(t, err, tc.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestPreview_BadURL(t *testing.T) {
	p := &Preview{URL: "localhost-no-scheme"}

	err := p.Write(ctxlog.Discard(context.Background()), artifact())

	assert.ErrorContains(t, err, "needs a scheme and a host")
}

func TestPreview_Unreachable(t *testing.T) {
	// Nothing listens on the closed test server's address.
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()
	p := &Preview{URL: addr, Timeout: 2 * time.Second}

	err := p.Write(ctxlog.Discard(context.Background()), artifact())

	assert.Error(t, err)
}

func TestPayload(t *testing.T) {
	assert.Equal(t, map[string]any{
		"session":  "s-1",
		"run_type": "TPS",
		"name":     "run.py",
		"text":     "import openpathsampling as paths\n",
	}, payload(artifact()))
}

type failingSink struct{ called *int }

func (f failingSink) Name() string { return "failing" }
func (f failingSink) Write(context.Context, *Artifact) error {
	*f.called++
	return errors.New("boom")
}

func TestDeliver_StopsAtFirstFailure(t *testing.T) {
	calls := 0
	var buf bytes.Buffer

	err := Deliver(ctxlog.Discard(context.Background()), artifact(),
		&Writer{W: &buf}, failingSink{&calls}, failingSink{&calls})

	assert.EqualError(t, err, "failing sink: boom")
	assert.Equal(t, 1, calls)
	assert.Equal(t, artifact().Text, buf.String())
}
