// Package executor turns a resolved operation invocation into an HTTP call.
//
// # Execution Flow
//
//  1. Look up the operation in the command tree
//  2. Select the credential from the operation's security requirements
//  3. Resolve the path and encode the query
//  4. Build the request body, if any
//  5. Send one request, or sweep all pages when pagination is requested
//
// # Example Usage
//
//	exec, _ := executor.New(&executor.Config{
//	    Tree:        tree,
//	    Client:      client,
//	    Credentials: creds,
//	})
//
//	result, err := exec.Invoke(ctx, &executor.Invocation{
//	    Resource:  "campaigns",
//	    Operation: "list",
//	    Inputs:    &encoder.Inputs{Values: map[string][]string{"page_size": {"25"}}},
//	    All:       true,
//	})
//
// Responses are returned as decoded JSON with numbers kept as json.Number, so
// re-serializing a result reproduces the server's number text.
package executor

import (
	"context"
	"fmt"

	"github.com/CliForge/pinterest-ads-cli/internal/encoder"
	"github.com/CliForge/pinterest-ads-cli/internal/pagination"
	"github.com/CliForge/pinterest-ads-cli/pkg/auth"
	"github.com/CliForge/pinterest-ads-cli/pkg/commandtree"
	"go.uber.org/zap"
)

// Executor executes command tree operations.
type Executor struct {
	tree         *commandtree.CommandTree
	client       *Client
	credentials  auth.Credentials
	pathDefaults map[string]string
	readJSON     ReadJSONFunc
	logger       *zap.Logger
}

// Config configures the executor.
type Config struct {
	Tree        *commandtree.CommandTree
	Client      *Client
	Credentials auth.Credentials
	// PathDefaults fill path parameters that have no explicit value.
	PathDefaults map[string]string
	// ReadJSON decodes --body, --form and deep-object values. Defaults to
	// literal JSON only.
	ReadJSON ReadJSONFunc
	Logger   *zap.Logger
}

// New creates a new executor.
func New(config *Config) (*Executor, error) {
	if config == nil {
		return nil, fmt.Errorf("executor config is required")
	}
	if config.Tree == nil {
		return nil, fmt.Errorf("command tree is required")
	}
	if config.Client == nil {
		return nil, fmt.Errorf("client is required")
	}

	readJSON := config.ReadJSON
	if readJSON == nil {
		readJSON = encoder.DecodeJSON
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Executor{
		tree:         config.Tree,
		client:       config.Client,
		credentials:  config.Credentials,
		pathDefaults: config.PathDefaults,
		readJSON:     readJSON,
		logger:       logger,
	}, nil
}

// Client returns the underlying API client.
func (e *Executor) Client() *Client {
	return e.client
}

// Invocation is one call of a command tree operation.
type Invocation struct {
	Resource  string
	Operation string
	Inputs    *encoder.Inputs
	Body      BodyInputs
	// All sweeps every page when the operation is paginated.
	All        bool
	Pagination pagination.Options
}

// Invoke runs the operation and returns the decoded response. Paginated
// sweeps return {"items": [...]}.
func (e *Executor) Invoke(ctx context.Context, inv *Invocation) (any, error) {
	op, err := e.tree.Find(inv.Resource, inv.Operation)
	if err != nil {
		return nil, err
	}
	name := inv.Resource + " " + inv.Operation

	cred, err := auth.Select(op.Security, e.credentials)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	target, err := encoder.New(e.readJSON).Encode(op, inv.Inputs, e.pathDefaults)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	url := e.client.BuildURL(target.Path)

	body, err := PrepareBody(op, inv.Body, e.readJSON)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	if inv.All && op.Paginated {
		e.logger.Debug("paginating", zap.String("operation", name))
		return pagination.New(e.client, e.logger).All(ctx, op.Method, url, &cred, target.Query, inv.Pagination)
	}

	return e.client.Do(ctx, &Request{
		Operation:  name,
		Method:     op.Method,
		URL:        url,
		Credential: &cred,
		Query:      target.Query,
		Body:       body,
	})
}

// RawRequest is a call outside the command tree.
type RawRequest struct {
	Method string
	Path   string
	// Auth is "bearer", "basic" or "conversion".
	Auth   string
	Params string
	Body   BodyInputs
}

// Raw sends an arbitrary request. Params are encoded without deep-object
// knowledge.
func (e *Executor) Raw(ctx context.Context, req *RawRequest) (any, error) {
	cred, err := auth.ForScheme(req.Auth, e.credentials)
	if err != nil {
		return nil, err
	}

	query, err := encoder.ParseParams(req.Params, nil)
	if err != nil {
		return nil, err
	}

	body, err := PrepareRawBody(req.Body, e.readJSON)
	if err != nil {
		return nil, err
	}

	return e.client.Do(ctx, &Request{
		Operation:  "raw",
		Method:     req.Method,
		URL:        e.client.BuildURL(req.Path),
		Credential: &cred,
		Query:      query,
		Body:       body,
	})
}
