package media

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/CliForge/pinterest-ads-cli/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresignedUploader_Upload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Greater(t, r.ContentLength, int64(0))

		mr, err := r.MultipartReader()
		require.NoError(t, err)

		var names []string
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			names = append(names, part.FormName())

			data, err := io.ReadAll(part)
			require.NoError(t, err)
			switch part.FormName() {
			case "file":
				assert.Equal(t, "clip.mp4", part.FileName())
				assert.Equal(t, "video", string(data))
			case "key":
				assert.Equal(t, "uploads/m1", string(data))
			}
		}
		assert.Equal(t, []string{"key", "policy", "x-amz-signature", "file"}, names)

		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	u := NewPresignedUploader(server.Client())
	err := u.Upload(context.Background(), server.URL, map[string]string{
		"x-amz-signature": "sig",
		"policy":          "p",
		"key":             "uploads/m1",
	}, testFile(t))
	require.NoError(t, err)
}

func TestPresignedUploader_Failure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("<Error>AccessDenied</Error>"))
	}))
	defer server.Close()

	err := NewPresignedUploader(server.Client()).Upload(context.Background(), server.URL, nil, testFile(t))
	require.Error(t, err)

	var uploadErr *errs.UploadFailedError
	require.True(t, errors.As(err, &uploadErr))
	assert.Equal(t, 403, uploadErr.Status)
	assert.Contains(t, uploadErr.Body, "AccessDenied")
}

func TestPresignedUploader_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	err := NewPresignedUploader(nil).Upload(context.Background(), server.URL, nil, testFile(t))
	assert.True(t, errors.Is(err, errs.ErrTransport))
}
