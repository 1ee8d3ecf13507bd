// Package sources resolves user-supplied file references into local files.
//
// A reference is one of:
//
//	s3://bucket/key          downloaded from object storage
//	http://... https://...   downloaded over HTTP
//	@path, file://path       a local file
//	path                     a local file, when it exists
//
// Downloads land in temporary files owned by the returned SourceFile; Close
// removes them. Callers defer Close immediately after a successful Resolve,
// or use With to scope the file to a callback.
package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/CliForge/pinterest-ads-cli/internal/encoder"
	"github.com/CliForge/pinterest-ads-cli/internal/errs"
	"go.uber.org/zap"
)

// Reference prefixes.
const (
	PrefixS3    = "s3://"
	PrefixHTTP  = "http://"
	PrefixHTTPS = "https://"
	PrefixFile  = "file://"
	PrefixAt    = "@"
)

// SourceFile is a resolved local file.
type SourceFile struct {
	// Path is the local file to read.
	Path string
	// FileName is the display name used for uploads.
	FileName string

	ephemeral bool
}

// Ephemeral reports whether Path is a temporary download removed by Close.
func (f *SourceFile) Ephemeral() bool {
	return f.ephemeral
}

// Open opens the file for reading.
func (f *SourceFile) Open() (*os.File, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Path, err)
	}
	return file, nil
}

// Close removes the backing file of a download. It is safe to call more
// than once and does nothing for local files.
func (f *SourceFile) Close() error {
	if !f.ephemeral {
		return nil
	}
	f.ephemeral = false
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove temp file: %w", err)
	}
	return nil
}

// LooksLikeSource reports whether value is a file reference rather than
// literal content.
func LooksLikeSource(value string) bool {
	for _, prefix := range []string{PrefixAt, PrefixFile, PrefixHTTP, PrefixHTTPS, PrefixS3} {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}
	return exists(value)
}

// Resolver resolves references into SourceFiles.
type Resolver struct {
	httpClient *http.Client
	objects    ObjectFetcher
	tempDir    string
	logger     *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHTTPClient sets the client for http(s) downloads.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Resolver) {
		r.httpClient = client
	}
}

// WithObjectFetcher sets the object storage backend.
func WithObjectFetcher(fetcher ObjectFetcher) Option {
	return func(r *Resolver) {
		r.objects = fetcher
	}
}

// WithTempDir sets where downloads are written. Defaults to os.TempDir.
func WithTempDir(dir string) Option {
	return func(r *Resolver) {
		r.tempDir = dir
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a resolver. Object storage defaults to S3 with the
// standard AWS credential chain.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		httpClient: http.DefaultClient,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.objects == nil {
		r.objects = NewS3Fetcher()
	}
	return r
}

// Resolve classifies value and materializes it as a local file. Object
// storage wins over HTTP, which wins over local paths.
func (r *Resolver) Resolve(ctx context.Context, value string) (*SourceFile, error) {
	switch {
	case strings.HasPrefix(value, PrefixS3):
		return r.downloadObject(ctx, value)
	case strings.HasPrefix(value, PrefixHTTP), strings.HasPrefix(value, PrefixHTTPS):
		return r.downloadHTTP(ctx, value)
	}

	local := localPath(value)
	if !exists(local) {
		return nil, fmt.Errorf("%w: %s", errs.ErrSourceNotFound, value)
	}

	name := filepath.Base(local)
	if name == "." || name == string(filepath.Separator) {
		name = "input"
	}
	return &SourceFile{Path: local, FileName: name}, nil
}

// With resolves value, calls fn, and releases the file on every path.
func (r *Resolver) With(ctx context.Context, value string, fn func(*SourceFile) error) (err error) {
	file, err := r.Resolve(ctx, value)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(file)
}

// ReadAll returns the full contents of the referenced file.
func (r *Resolver) ReadAll(ctx context.Context, value string) ([]byte, error) {
	var data []byte
	err := r.With(ctx, value, func(f *SourceFile) error {
		var err error
		data, err = os.ReadFile(f.Path)
		if err != nil {
			return fmt.Errorf("read source: %w", err)
		}
		return nil
	})
	return data, err
}

// ReadJSON decodes raw as JSON, reading it from the referenced file first
// when raw looks like a file reference.
func (r *Resolver) ReadJSON(ctx context.Context, raw string) (any, error) {
	text := raw
	if LooksLikeSource(raw) {
		data, err := r.ReadAll(ctx, raw)
		if err != nil {
			return nil, err
		}
		text = string(data)
	}
	return encoder.DecodeJSON(text)
}

func (r *Resolver) downloadHTTP(ctx context.Context, rawURL string) (*SourceFile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errs.ErrInput, rawURL, err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: download %s: %v", errs.ErrTransport, rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s (http %d)", errs.ErrSourceNotFound, rawURL, resp.StatusCode)
	}

	file, err := r.toTempFile(func(w *os.File) error {
		if _, err := io.Copy(w, resp.Body); err != nil {
			return fmt.Errorf("%w: download %s: %v", errs.ErrTransport, rawURL, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	file.FileName = urlFileName(rawURL)
	r.logger.Debug("downloaded source", zap.String("url", rawURL), zap.String("path", file.Path))
	return file, nil
}

func (r *Resolver) downloadObject(ctx context.Context, locator string) (*SourceFile, error) {
	bucket, key, err := ParseS3URL(locator)
	if err != nil {
		return nil, err
	}

	file, err := r.toTempFile(func(w *os.File) error {
		return r.objects.Fetch(ctx, bucket, key, w)
	})
	if err != nil {
		return nil, err
	}

	file.FileName = path.Base(key)
	if file.FileName == "." || file.FileName == "/" {
		file.FileName = "s3-object"
	}
	r.logger.Debug("downloaded source", zap.String("bucket", bucket), zap.String("key", key), zap.String("path", file.Path))
	return file, nil
}

// toTempFile creates a temp file, fills it with write, and removes it if
// anything fails.
func (r *Resolver) toTempFile(write func(*os.File) error) (*SourceFile, error) {
	tmp, err := os.CreateTemp(r.tempDir, "pinterest-ads-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	file := &SourceFile{Path: tmp.Name(), ephemeral: true}

	werr := write(tmp)
	cerr := tmp.Close()
	if werr == nil && cerr != nil {
		werr = fmt.Errorf("write temp file: %w", cerr)
	}
	if werr != nil {
		_ = file.Close()
		return nil, werr
	}
	return file, nil
}

// ParseS3URL splits s3://bucket/key.
func ParseS3URL(locator string) (bucket, key string, err error) {
	trimmed, ok := strings.CutPrefix(locator, PrefixS3)
	if !ok {
		return "", "", fmt.Errorf("%w: invalid s3 url: %s", errs.ErrInput, locator)
	}
	bucket, key, _ = strings.Cut(trimmed, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("%w: invalid s3 url: %s", errs.ErrInput, locator)
	}
	return bucket, key, nil
}

func urlFileName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "download"
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "download"
	}
	return name
}

func localPath(value string) string {
	if p, ok := strings.CutPrefix(value, PrefixAt); ok {
		return p
	}
	if p, ok := strings.CutPrefix(value, PrefixFile); ok {
		return p
	}
	return value
}

func exists(p string) bool {
	if p == "" {
		return false
	}
	_, err := os.Stat(p)
	return err == nil
}
