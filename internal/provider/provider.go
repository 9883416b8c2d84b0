package provider

import "context"

// Kind tags which backend variant an adapter speaks to
type Kind string

const (
	KindFeatherless Kind = "featherless"
	KindOllama      Kind = "ollama"
	KindOpenRouter  Kind = "openrouter"
)

// Provider is the contract every LLM backend integration satisfies
type Provider interface {
	// Name is the selector key and the Provider field stamped on every ModelInfo
	Name() string
	Kind() Kind
	Config() Config

	// StaticModels is always available, even without network access
	StaticModels() []ModelInfo

	// DynamicModels fetches the live listing and degrades to an empty slice on any failure
	DynamicModels(ctx context.Context, req ListRequest) []ModelInfo

	// ListDynamic is DynamicModels with the outcome kept for diagnostics
	ListDynamic(ctx context.Context, req ListRequest) ListResult

	// ModelInstance builds a handle bound to resolved credentials; it fails when none resolve
	ModelInstance(ctx context.Context, opts InstanceOptions) (ModelHandle, error)
}

// ListRequest carries the credential inputs of a dynamic listing
type ListRequest struct {
	APIKeys  APIKeys
	Settings ProviderSettings
	Env      Env
}

// InstanceOptions carries the inputs of model-instance construction
type InstanceOptions struct {
	Model    string
	Env      Env
	APIKeys  APIKeys
	Settings ProviderSettings
}

// ListStatus classifies the outcome of a dynamic listing
type ListStatus string

const (
	StatusOK            ListStatus = "ok"
	StatusNoCredentials ListStatus = "no_credentials"
	StatusDisabled      ListStatus = "disabled"
	StatusFailed        ListStatus = "failed"
)

// ListResult separates "no models" from "fetch failed"; Models is never nil
type ListResult struct {
	Models []ModelInfo
	Status ListStatus
	Err    error
}
