package chat

import (
	"context"
	"fmt"

	"modelhub/internal/provider"
)

// Providers is the lookup the orchestrator needs; *provider.Registry satisfies it
type Providers interface {
	Get(name string) (provider.Provider, error)
	Default() provider.Provider
}

// TransportRequest is one streaming chat call
type TransportRequest struct {
	Provider string
	Model    string
	Messages []provider.Message
	APIKeys  provider.APIKeys
	Options  provider.GenerateOptions
}

// Transport streams a chat completion; the orchestrator never speaks the wire protocol itself
type Transport interface {
	Stream(ctx context.Context, req TransportRequest, onChunk func(string) error) (*provider.Usage, error)
}

// HandleTransport streams through provider model handles, building one per call
// so credential changes apply to the next message.
type HandleTransport struct {
	providers Providers
	settings  provider.ProviderSettings
	env       provider.Env
}

// NewHandleTransport creates a transport over the given providers
func NewHandleTransport(providers Providers, settings provider.ProviderSettings, env provider.Env) *HandleTransport {
	return &HandleTransport{providers: providers, settings: settings, env: env}
}

func (t *HandleTransport) Stream(ctx context.Context, req TransportRequest, onChunk func(string) error) (*provider.Usage, error) {
	handle, err := t.handle(ctx, req)
	if err != nil {
		return nil, err
	}

	usage, err := handle.Stream(ctx, req.Messages, req.Options, onChunk)
	if err != nil {
		return nil, fmt.Errorf("%s stream failed: %w", req.Provider, err)
	}
	return usage, nil
}

// Generate runs one non-streamed completion
func (t *HandleTransport) Generate(ctx context.Context, req TransportRequest) (string, *provider.Usage, error) {
	handle, err := t.handle(ctx, req)
	if err != nil {
		return "", nil, err
	}

	text, usage, err := handle.Generate(ctx, req.Messages, req.Options)
	if err != nil {
		return "", nil, fmt.Errorf("%s generate failed: %w", req.Provider, err)
	}
	return text, usage, nil
}

func (t *HandleTransport) handle(ctx context.Context, req TransportRequest) (provider.ModelHandle, error) {
	p, err := t.providers.Get(req.Provider)
	if err != nil {
		return nil, err
	}

	return p.ModelInstance(ctx, provider.InstanceOptions{
		Model:    req.Model,
		Env:      t.env,
		APIKeys:  req.APIKeys,
		Settings: t.settings,
	})
}
