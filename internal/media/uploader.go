package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/CliForge/pinterest-ads-cli/internal/errs"
	"github.com/CliForge/pinterest-ads-cli/internal/executor"
	"github.com/CliForge/pinterest-ads-cli/internal/sources"
)

// FileField is the multipart part name object storage expects for the file.
const FileField = "file"

// PresignedUploader posts multipart form uploads. It never sends API
// credentials; the form fields carry the storage authorization.
type PresignedUploader struct {
	client    *http.Client
	userAgent string
}

// NewPresignedUploader creates an uploader. A nil client uses a dedicated
// client with no timeout.
func NewPresignedUploader(client *http.Client) *PresignedUploader {
	if client == nil {
		client = &http.Client{}
	}
	return &PresignedUploader{client: client, userAgent: executor.DefaultUserAgent}
}

// Upload posts fields, in sorted order, followed by the file part. The body
// is streamed from disk with a known Content-Length.
func (u *PresignedUploader) Upload(ctx context.Context, uploadURL string, fields map[string]string, file *sources.SourceFile) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for _, name := range sortedFieldNames(fields) {
		if err := mw.WriteField(name, fields[name]); err != nil {
			return fmt.Errorf("build upload form: %w", err)
		}
	}
	if _, err := mw.CreateFormFile(FileField, file.FileName); err != nil {
		return fmt.Errorf("build upload form: %w", err)
	}
	head := append([]byte(nil), buf.Bytes()...)

	buf.Reset()
	if err := mw.Close(); err != nil {
		return fmt.Errorf("build upload form: %w", err)
	}
	tail := append([]byte(nil), buf.Bytes()...)

	f, err := file.Open()
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", file.Path, err)
	}

	body := io.MultiReader(bytes.NewReader(head), f, bytes.NewReader(tail))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, body)
	if err != nil {
		return fmt.Errorf("%w: upload url: %v", errs.ErrInput, err)
	}
	req.ContentLength = int64(len(head)) + info.Size() + int64(len(tail))
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("User-Agent", u.userAgent)

	resp, err := u.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: upload media: %v", errs.ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	text, _ := io.ReadAll(resp.Body)
	return &errs.UploadFailedError{Status: resp.StatusCode, Body: string(text)}
}
