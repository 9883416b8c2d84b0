package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"modelhub/internal/logger"

	"github.com/sirupsen/logrus"
)

// ListTimeout bounds every model-listing request
const ListTimeout = 5 * time.Second

// maxLoggedBody caps how much of a raw payload goes into a log line
const maxLoggedBody = 2048

// decodeFunc turns a raw listing body into normalized models
type decodeFunc func(body []byte) ([]ModelInfo, error)

// Base implements the shared listing and instantiation flow. Variants embed it
// and supply the listing path and their own response decoder.
type Base struct {
	name       string
	kind       Kind
	config     Config
	static     []ModelInfo
	listPath   string
	requireKey bool
	decode     decodeFunc

	client     *http.Client
	timeout    time.Duration
	newHandle  HandleFactory
	handlePath string
	handleKey  string
}

// Option customizes an adapter at construction
type Option func(*Base)

// WithHTTPClient replaces the HTTP client used for listings
func WithHTTPClient(client *http.Client) Option {
	return func(b *Base) {
		b.client = client
	}
}

// WithTimeout overrides the listing timeout
func WithTimeout(d time.Duration) Option {
	return func(b *Base) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// WithHandleFactory replaces the model-handle constructor
func WithHandleFactory(f HandleFactory) Option {
	return func(b *Base) {
		b.newHandle = f
	}
}

func newBase(name string, kind Kind, cfg Config, listPath string, requireKey bool, static []ModelInfo, decode decodeFunc, opts []Option) *Base {
	b := &Base{
		name:       name,
		kind:       kind,
		config:     cfg,
		static:     static,
		listPath:   listPath,
		requireKey: requireKey,
		decode:     decode,
		client:     &http.Client{},
		timeout:    ListTimeout,
		newHandle:  NewGenkitHandle,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Base) Name() string   { return b.name }
func (b *Base) Kind() Kind     { return b.kind }
func (b *Base) Config() Config { return b.config }

// StaticModels returns a copy of the fixed model list
func (b *Base) StaticModels() []ModelInfo {
	out := make([]ModelInfo, len(b.static))
	copy(out, b.static)
	return out
}

// Credentials resolves this adapter's base URL and API key
func (b *Base) Credentials(apiKeys APIKeys, settings ProviderSettings, env Env) Credentials {
	return Resolve(b.name, b.config, apiKeys, settings, env)
}

func (b *Base) missing(creds Credentials) string {
	if creds.BaseURL == "" {
		return "base URL"
	}
	if b.requireKey && creds.APIKey == "" {
		return "API key"
	}
	return ""
}

// DynamicModels returns the live listing, or an empty slice on any failure
func (b *Base) DynamicModels(ctx context.Context, req ListRequest) []ModelInfo {
	return b.ListDynamic(ctx, req).Models
}

// ListDynamic fetches and decodes the backend's model listing
func (b *Base) ListDynamic(ctx context.Context, req ListRequest) ListResult {
	log := logger.Provider(b.name)

	if !req.Settings.For(b.name).IsEnabled() {
		log.Debug("Provider disabled, skipping model listing")
		return ListResult{Models: []ModelInfo{}, Status: StatusDisabled, Err: ErrProviderDisabled}
	}

	creds := b.Credentials(req.APIKeys, req.Settings, req.Env)
	if missing := b.missing(creds); missing != "" {
		log.WithField("missing", missing).Warn("No credentials resolved, returning no dynamic models")
		return ListResult{Models: []ModelInfo{}, Status: StatusNoCredentials, Err: ErrMissingCredentials}
	}

	body, err := b.fetchListing(ctx, creds)
	if err != nil {
		log.WithError(err).Error("Error fetching model listing")
		return failed(err)
	}

	models, err := b.decode(body)
	if err != nil {
		log.WithFields(logrus.Fields{
			"error": err.Error(),
			"body":  truncate(body),
		}).Error("Error decoding model listing")
		return failed(err)
	}

	log.WithField("count", len(models)).Info("Fetched dynamic models")
	return ListResult{Models: models, Status: StatusOK}
}

func (b *Base) fetchListing(ctx context.Context, creds Credentials) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	url := creds.BaseURL + b.listPath
	logger.Provider(b.name).WithField("url", url).Debug("Requesting model listing")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if creds.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+creds.APIKey)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncate(body))
	}
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}
	return body, nil
}

// ModelInstance builds a handle for opts.Model, failing hard without credentials
func (b *Base) ModelInstance(ctx context.Context, opts InstanceOptions) (ModelHandle, error) {
	if !opts.Settings.For(b.name).IsEnabled() {
		return nil, &ConfigError{Provider: b.name, Missing: "enabled provider", Err: ErrProviderDisabled}
	}

	creds := b.Credentials(opts.APIKeys, opts.Settings, opts.Env)
	if missing := b.missing(creds); missing != "" {
		logger.Provider(b.name).WithField("missing", missing).Error("Cannot create model instance")
		return nil, &ConfigError{Provider: b.name, Missing: missing, Err: ErrMissingCredentials}
	}
	if opts.Model == "" {
		return nil, fmt.Errorf("%s: model is required", b.name)
	}

	apiKey := creds.APIKey
	if apiKey == "" {
		apiKey = b.handleKey
	}

	handle, err := b.newHandle(ctx, HandleSpec{
		Provider: b.name,
		BaseURL:  creds.BaseURL + b.handlePath,
		APIKey:   apiKey,
		Model:    opts.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: error creating model handle: %w", b.name, err)
	}

	logger.Provider(b.name).WithField("model", opts.Model).Debug("Created model instance")
	return handle, nil
}

func failed(err error) ListResult {
	return ListResult{Models: []ModelInfo{}, Status: StatusFailed, Err: err}
}

// decodeListField parses body as a JSON object and decodes field, which must be an array
func decodeListField(body []byte, field string, out any) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}

	raw, ok := obj[field]
	if !ok {
		return fmt.Errorf("%w: missing %q field", errUnexpectedShape, field)
	}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '[' {
		return fmt.Errorf("%w: %q is not a list", errUnexpectedShape, field)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", errUnexpectedShape, err)
	}
	return nil
}

func truncate(body []byte) string {
	if len(body) > maxLoggedBody {
		return string(body[:maxLoggedBody]) + "..."
	}
	return string(body)
}
