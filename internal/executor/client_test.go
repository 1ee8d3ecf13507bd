package executor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/CliForge/pinterest-ads-cli/internal/encoder"
	"github.com/CliForge/pinterest-ads-cli/internal/errs"
	"github.com/CliForge/pinterest-ads-cli/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock HTTP transport for testing
type mockTransport struct {
	roundTripFunc func(*http.Request) (*http.Response, error)
}

func (m *mockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.roundTripFunc(req)
}

func newMockHTTPClient(handler func(*http.Request) (*http.Response, error)) *http.Client {
	return &http.Client{
		Transport: &mockTransport{roundTripFunc: handler},
	}
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func newTestClient(t *testing.T, baseURL string, httpClient *http.Client) *Client {
	t.Helper()
	client, err := NewClient(&ClientConfig{BaseURL: baseURL, HTTPClient: httpClient})
	require.NoError(t, err)
	return client
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(nil)
	assert.Error(t, err)

	_, err = NewClient(&ClientConfig{})
	assert.True(t, errors.Is(err, errs.ErrConfiguration))

	client, err := NewClient(&ClientConfig{BaseURL: "https://api.example.com"})
	require.NoError(t, err)
	assert.Equal(t, DefaultUserAgent, client.userAgent)
	assert.Equal(t, "https://api.example.com", client.BaseURL())
}

func TestClient_BuildURL(t *testing.T) {
	client := newTestClient(t, "https://api.pinterest.com/v5/", nil)

	tests := []struct {
		path string
		want string
	}{
		{path: "/ad_accounts", want: "https://api.pinterest.com/v5/ad_accounts"},
		{path: "ad_accounts", want: "https://api.pinterest.com/v5/ad_accounts"},
		{path: "", want: "https://api.pinterest.com/v5"},
		{path: "/", want: "https://api.pinterest.com/v5"},
		{path: "https://other.example.com/x", want: "https://other.example.com/x"},
		{path: "http://localhost:8080/y", want: "http://localhost:8080/y"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, client.BuildURL(tt.path))
		})
	}
}

func TestClient_Send(t *testing.T) {
	var got *http.Request
	var gotBody string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"123","budget":1.50}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, server.Client())
	cred := auth.Bearer("tok")
	query := encoder.Query{{Key: "b", Value: "2"}, {Key: "a", Value: "1"}, {Key: "b", Value: "3"}}

	resp, err := client.Send(context.Background(), "post", client.BuildURL("/campaigns"), &cred, query, JSONBody(map[string]any{"name": "x<y"}))
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/campaigns", got.URL.Path)
	assert.Equal(t, "b=2&a=1&b=3", got.URL.RawQuery)
	assert.Equal(t, "Bearer tok", got.Header.Get("Authorization"))
	assert.Equal(t, "application/json", got.Header.Get("Accept"))
	assert.Equal(t, ContentTypeJSON, got.Header.Get("Content-Type"))
	assert.Equal(t, DefaultUserAgent, got.Header.Get("User-Agent"))
	assert.Equal(t, `{"name":"x<y"}`, gotBody)

	assert.Equal(t, map[string]any{"id": "123", "budget": json.Number("1.50")}, resp)
}

func TestClient_SendForm(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, ContentTypeForm, r.Header.Get("Content-Type"))
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "id", user)
		assert.Equal(t, "secret", pass)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, []string{"a", "b"}, r.PostForm["scope"])
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, server.Client())
	cred := auth.Basic("id", "secret")
	form := encoder.Query{{Key: "scope", Value: "a"}, {Key: "scope", Value: "b"}}

	_, err := client.Send(context.Background(), "POST", server.URL, &cred, nil, FormBody(form))
	require.NoError(t, err)
}

func TestClient_QueryAppendsToExistingQuery(t *testing.T) {
	var rawQuery string
	client := newTestClient(t, "https://api.example.com", newMockHTTPClient(func(r *http.Request) (*http.Response, error) {
		rawQuery = r.URL.RawQuery
		return jsonResponse(200, `{}`), nil
	}))

	_, err := client.Get(context.Background(), "https://api.example.com/x?a=1", nil, encoder.Query{{Key: "b", Value: "2"}})
	require.NoError(t, err)
	assert.Equal(t, "a=1&b=2", rawQuery)
}

func TestClient_Responses(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    any
		wantErr error
	}{
		{name: "empty success is null", status: 204, body: "", want: nil},
		{name: "whitespace success is null", status: 200, body: " \n", want: nil},
		{name: "empty error", status: 500, body: "", wantErr: errs.ErrEmptyErrorResponse},
		{name: "non JSON success", status: 200, body: "<html>", wantErr: errs.ErrDecode},
		{name: "non JSON error", status: 502, body: "Bad Gateway", wantErr: errs.ErrDecode},
		{name: "array body", status: 200, body: `[1,"a"]`, want: []any{json.Number("1"), "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, "https://api.example.com", newMockHTTPClient(func(r *http.Request) (*http.Response, error) {
				return jsonResponse(tt.status, tt.body), nil
			}))

			got, err := client.Get(context.Background(), "https://api.example.com/x", nil, nil)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_APIError(t *testing.T) {
	client := newTestClient(t, "https://api.example.com", newMockHTTPClient(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(404, `{"code":2,"message":"Ad account not found"}`), nil
	}))

	_, err := client.Do(context.Background(), &Request{Operation: "ad-accounts get", Method: "GET", URL: "https://api.example.com/ad_accounts/1"})
	require.Error(t, err)

	apiErr, ok := errs.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, 404, apiErr.Status)
	assert.Equal(t, "ad-accounts get", apiErr.Operation)
	assert.Equal(t, map[string]any{"code": json.Number("2"), "message": "Ad account not found"}, apiErr.Body)
	assert.Contains(t, err.Error(), "http 404")
}

func TestClient_NoRetry(t *testing.T) {
	calls := 0
	client := newTestClient(t, "https://api.example.com", newMockHTTPClient(func(r *http.Request) (*http.Response, error) {
		calls++
		return jsonResponse(503, `{"message":"unavailable"}`), nil
	}))

	_, err := client.Get(context.Background(), "https://api.example.com/x", nil, nil)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestClient_RequestValidation(t *testing.T) {
	client := newTestClient(t, "https://api.example.com", newMockHTTPClient(func(r *http.Request) (*http.Response, error) {
		t.Fatal("no request expected")
		return nil, nil
	}))
	ctx := context.Background()

	_, err := client.Send(ctx, "TRACE", "https://api.example.com", nil, nil, nil)
	assert.True(t, errors.Is(err, errs.ErrUnsupportedMethod))

	_, err = client.Send(ctx, "GET", "https://api.example.com", nil, nil, JSONBody(map[string]any{}))
	assert.True(t, errors.Is(err, errs.ErrBodyNotAllowed))

	_, err = client.Send(ctx, "DELETE", "https://api.example.com", nil, nil, FormBody(nil))
	assert.True(t, errors.Is(err, errs.ErrBodyNotAllowed))

	bad := auth.Bearer("a\nb")
	_, err = client.Send(ctx, "GET", "https://api.example.com", &bad, nil, nil)
	assert.True(t, errors.Is(err, errs.ErrInvalidCredential))
}

func TestClient_TransportError(t *testing.T) {
	client := newTestClient(t, "https://api.example.com", newMockHTTPClient(func(r *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	}))

	_, err := client.Get(context.Background(), "https://api.example.com/x", nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrTransport))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestClient_RoundTripIsByteStable(t *testing.T) {
	payload := `{"z":1,"a":{"n":1.0,"big":12345678901234567890,"s":"<&>"},"list":[true,null,-0.5e10]}`
	client := newTestClient(t, "https://api.example.com", newMockHTTPClient(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(200, payload), nil
	}))

	first, err := client.Get(context.Background(), "https://api.example.com/x", nil, nil)
	require.NoError(t, err)

	once, err := encoder.CompactJSON(first)
	require.NoError(t, err)

	decoded, err := DecodeJSON([]byte(once))
	require.NoError(t, err)
	twice, err := encoder.CompactJSON(decoded)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
	assert.Contains(t, once, `"big":12345678901234567890`)
	assert.Contains(t, once, `"n":1.0`)
}
