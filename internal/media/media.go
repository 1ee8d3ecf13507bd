// Package media uploads media files through the register, presigned upload
// and processing-poll workflow.
//
// The orchestrator is an explicit state machine:
//
//	Registering → Uploading → Polling → Done
//	                 │           │
//	                 └─────┬─────┘
//	                       ▼
//	                     Failed
//
// Polling only happens when the caller asks to wait. It runs on an injected
// Clock with a fixed interval and a wall-clock budget, so tests drive it with
// a fake clock and a scripted status sequence.
package media

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/CliForge/pinterest-ads-cli/internal/encoder"
	"github.com/CliForge/pinterest-ads-cli/internal/errs"
	"github.com/CliForge/pinterest-ads-cli/internal/executor"
	"github.com/CliForge/pinterest-ads-cli/internal/sources"
	"github.com/CliForge/pinterest-ads-cli/pkg/auth"
	"go.uber.org/zap"
)

// Polling defaults.
const (
	DefaultPollInterval = 2 * time.Second
	DefaultTimeout      = 180 * time.Second
)

// Media processing statuses reported by the API.
const (
	StatusRegistered = "registered"
	StatusProcessing = "processing"
	StatusSucceeded  = "succeeded"
	StatusFailed     = "failed"
)

// State is a step of the upload workflow.
type State string

const (
	StateIdle        State = "idle"
	StateRegistering State = "registering"
	StateUploading   State = "uploading"
	StatePolling     State = "polling"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

// API is the subset of the API client the workflow needs.
type API interface {
	BuildURL(path string) string
	Send(ctx context.Context, method, url string, cred *auth.Credential, query encoder.Query, body *executor.Body) (any, error)
}

// Uploader posts a file to a presigned object storage endpoint.
type Uploader interface {
	Upload(ctx context.Context, uploadURL string, fields map[string]string, file *sources.SourceFile) error
}

// Clock abstracts time for the poll loop.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

func (wallClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Registration is the response of the media registration endpoint.
type Registration struct {
	MediaID          string
	UploadURL        string
	UploadParameters map[string]any
	Raw              map[string]any
}

// Fields returns the string-valued upload parameters. Other values are
// skipped.
func (r *Registration) Fields() map[string]string {
	out := make(map[string]string, len(r.UploadParameters))
	for k, v := range r.UploadParameters {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

// ParseRegistration validates a registration response.
func ParseRegistration(resp any) (*Registration, error) {
	obj, ok := resp.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: response is not an object", errs.ErrMalformedRegistration)
	}

	mediaID, ok := obj["media_id"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: missing media_id", errs.ErrMalformedRegistration)
	}
	uploadURL, ok := obj["upload_url"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: missing upload_url", errs.ErrMalformedRegistration)
	}
	params, ok := obj["upload_parameters"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: missing upload_parameters", errs.ErrMalformedRegistration)
	}

	return &Registration{
		MediaID:          mediaID,
		UploadURL:        uploadURL,
		UploadParameters: params,
		Raw:              obj,
	}, nil
}

// Orchestrator runs the upload workflow.
type Orchestrator struct {
	api      API
	cred     auth.Credential
	uploader Uploader
	clock    Clock
	interval time.Duration
	timeout  time.Duration
	observer func(State, string)
	logger   *zap.Logger

	state State
	polls int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithUploader replaces the presigned uploader.
func WithUploader(u Uploader) Option {
	return func(o *Orchestrator) { o.uploader = u }
}

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(o *Orchestrator) { o.clock = c }
}

// WithPolling overrides the poll interval and time budget.
func WithPolling(interval, timeout time.Duration) Option {
	return func(o *Orchestrator) {
		o.interval = interval
		o.timeout = timeout
	}
}

// WithObserver receives every state change and poll status.
func WithObserver(fn func(state State, detail string)) Option {
	return func(o *Orchestrator) { o.observer = fn }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// New creates an orchestrator that calls the API with cred.
func New(api API, cred auth.Credential, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		api:      api,
		cred:     cred,
		clock:    wallClock{},
		interval: DefaultPollInterval,
		timeout:  DefaultTimeout,
		logger:   zap.NewNop(),
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.uploader == nil {
		o.uploader = NewPresignedUploader(nil)
	}
	return o
}

// State returns the current workflow state.
func (o *Orchestrator) State() State {
	return o.state
}

// Polls returns how many status polls were issued.
func (o *Orchestrator) Polls() int {
	return o.polls
}

// Upload registers the media, uploads file, and, when wait is set, polls
// until processing finishes. Without wait it returns the registration
// response; with wait it returns the final media resource.
func (o *Orchestrator) Upload(ctx context.Context, mediaType string, file *sources.SourceFile, wait bool) (any, error) {
	o.polls = 0

	o.transition(StateRegistering, mediaType)
	resp, err := o.api.Send(ctx, http.MethodPost, o.api.BuildURL("/media"), &o.cred, nil,
		executor.JSONBody(map[string]any{"media_type": mediaType}))
	if err != nil {
		return nil, o.fail(err)
	}
	reg, err := ParseRegistration(resp)
	if err != nil {
		return nil, o.fail(err)
	}

	o.transition(StateUploading, file.FileName)
	if err := o.uploader.Upload(ctx, reg.UploadURL, reg.Fields(), file); err != nil {
		return nil, o.fail(err)
	}

	if !wait {
		o.transition(StateDone, reg.MediaID)
		return reg.Raw, nil
	}

	final, err := o.poll(ctx, reg.MediaID)
	if err != nil {
		return nil, o.fail(err)
	}
	o.transition(StateDone, reg.MediaID)
	return final, nil
}

func (o *Orchestrator) poll(ctx context.Context, mediaID string) (any, error) {
	o.transition(StatePolling, mediaID)
	url := o.api.BuildURL("/media/" + encoder.EscapePathSegment(mediaID))
	start := o.clock.Now()

	for {
		resp, err := o.api.Send(ctx, http.MethodGet, url, &o.cred, nil, nil)
		if err != nil {
			return nil, err
		}
		o.polls++

		status := "unknown"
		if obj, ok := resp.(map[string]any); ok {
			if s, ok := obj["status"].(string); ok {
				status = s
			}
		}
		o.notify(StatePolling, status)
		o.logger.Debug("media status", zap.String("media_id", mediaID), zap.String("status", status), zap.Int("poll", o.polls))

		switch status {
		case StatusSucceeded:
			return resp, nil
		case StatusFailed:
			return nil, fmt.Errorf("%w: media %s", errs.ErrProcessingFailed, mediaID)
		case StatusRegistered, StatusProcessing:
		default:
			return nil, &errs.UnexpectedStatusError{Status: status}
		}

		if o.clock.Now().Sub(start) >= o.timeout {
			return nil, fmt.Errorf("%w: media %s after %s", errs.ErrProcessingTimeout, mediaID, o.timeout)
		}
		if err := o.clock.Sleep(ctx, o.interval); err != nil {
			return nil, err
		}
	}
}

func (o *Orchestrator) transition(state State, detail string) {
	o.state = state
	o.logger.Debug("media upload", zap.String("state", string(state)), zap.String("detail", detail))
	o.notify(state, detail)
}

func (o *Orchestrator) notify(state State, detail string) {
	if o.observer != nil {
		o.observer(state, detail)
	}
}

func (o *Orchestrator) fail(err error) error {
	o.transition(StateFailed, err.Error())
	return err
}

// sortedFieldNames returns the field names in ascending order.
func sortedFieldNames(fields map[string]string) []string {
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
