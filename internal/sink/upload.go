package sink

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/specialistvlad/pathscript/internal/ctxlog"
)

// Upload PUTs the script to a pre-signed URL.
type Upload struct {
	URL    string
	Client *http.Client
}

func (u *Upload) Name() string { return "upload" }

func (u *Upload) Write(ctx context.Context, a *Artifact) error {
	logger := ctxlog.FromContext(ctx).With("action", "upload")

	client := u.Client
	if client == nil {
		client = http.DefaultClient
	}

	body := []byte(a.Text)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(a.Name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = int64(len(body))

	logger.Info("Uploading script", "name", a.Name, "size", len(body), "contentType", contentType)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("upload failed with status: %s", resp.Status)
	}

	logger.Info("Successfully uploaded script", "status", resp.Status)
	return nil
}
