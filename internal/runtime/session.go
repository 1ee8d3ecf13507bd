package runtime

import (
	"context"
	"fmt"

	"github.com/CliForge/pinterest-ads-cli/internal/executor"
	"github.com/CliForge/pinterest-ads-cli/internal/sources"
	"github.com/CliForge/pinterest-ads-cli/pkg/auth"
	"github.com/CliForge/pinterest-ads-cli/pkg/auth/storage"
	"go.uber.org/zap"
)

// tokenStore returns the token storage, creating it from configuration on
// first use.
func (rt *Runtime) tokenStore() (storage.TokenStorage, error) {
	if rt.tokenStorage != nil {
		return rt.tokenStorage, nil
	}
	s, err := storage.New(rt.cfg.Storage(), AppName)
	if err != nil {
		return nil, fmt.Errorf("failed to open token storage: %w", err)
	}
	rt.tokenStorage = s
	return s, nil
}

// credentials returns the configured credentials. A missing access token is
// looked up in token storage; storage failures are logged and otherwise
// ignored so that commands needing other credentials still run.
func (rt *Runtime) credentials(ctx context.Context) auth.Credentials {
	creds := rt.cfg.Credentials()
	if creds.AccessToken != "" {
		return creds
	}

	store, err := rt.tokenStore()
	if err != nil {
		rt.logger.Debug("token storage unavailable", zap.Error(err))
		return creds
	}

	token, source, err := auth.NewTokenResolver("", auth.WithStorage(store)).Resolve(ctx)
	if err != nil {
		rt.logger.Debug("failed to load stored token", zap.Error(err))
		return creds
	}
	if token != "" {
		rt.logger.Debug("using stored access token", zap.String("source", string(source)))
		creds.AccessToken = token
	}
	return creds
}

// sourceResolver resolves --body, --form and --file references.
func (rt *Runtime) sourceResolver() *sources.Resolver {
	opts := append([]sources.Option{sources.WithLogger(rt.logger)}, rt.sourceOptions...)
	return sources.NewResolver(opts...)
}

// newClient creates the API client.
func (rt *Runtime) newClient() (*executor.Client, error) {
	return executor.NewClient(&executor.ClientConfig{
		BaseURL:    rt.cfg.BaseURL,
		HTTPClient: rt.httpClient,
		Timeout:    rt.cfg.RequestTimeout(),
		UserAgent:  userAgent(rt.version),
		Logger:     rt.logger,
	})
}

// newExecutor creates the operation executor for one command.
func (rt *Runtime) newExecutor(ctx context.Context) (*executor.Executor, error) {
	client, err := rt.newClient()
	if err != nil {
		return nil, err
	}

	resolver := rt.sourceResolver()
	return executor.New(&executor.Config{
		Tree:         rt.tree,
		Client:       client,
		Credentials:  rt.credentials(ctx),
		PathDefaults: rt.cfg.PathDefaults(),
		ReadJSON: func(raw string) (any, error) {
			return resolver.ReadJSON(ctx, raw)
		},
		Logger: rt.logger,
	})
}

func userAgent(version string) string {
	if version == "" || version == "dev" {
		return executor.DefaultUserAgent
	}
	return "pinterest-ads-cli/" + version
}
