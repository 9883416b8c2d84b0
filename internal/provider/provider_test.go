package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHandle struct {
	spec HandleSpec
}

func (h *fakeHandle) Provider() string { return h.spec.Provider }
func (h *fakeHandle) Model() string    { return h.spec.Model }
func (h *fakeHandle) Generate(ctx context.Context, messages []Message, opts GenerateOptions) (string, *Usage, error) {
	return "", nil, nil
}
func (h *fakeHandle) Stream(ctx context.Context, messages []Message, opts GenerateOptions, onChunk func(string) error) (*Usage, error) {
	return nil, nil
}

func fakeFactory(captured *HandleSpec) HandleFactory {
	return func(ctx context.Context, spec HandleSpec) (ModelHandle, error) {
		*captured = spec
		return &fakeHandle{spec: spec}, nil
	}
}

// listingServer serves body at path and records the request headers
func listingServer(t *testing.T, path string, status int, body string) (*httptest.Server, *http.Header) {
	t.Helper()
	var headers http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != path {
			http.NotFound(w, r)
			return
		}
		headers = r.Header.Clone()
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &headers
}

func TestFeatherless_DynamicModels(t *testing.T) {
	srv, headers := listingServer(t, "/models", http.StatusOK,
		`{"models":[{"id":"m1","details":{"name":"Model One","size":"7B","context_length":8192}}]}`)

	p := NewFeatherless()
	models := p.DynamicModels(context.Background(), ListRequest{
		APIKeys: APIKeys{FeatherlessName: "secret"},
		Env:     Env{"FEATHERLESS_API_BASE_URL": srv.URL},
	})

	require.Len(t, models, 1)
	assert.Equal(t, ModelInfo{Name: "m1", Label: "Model One (7B)", Provider: "Featherless", MaxTokenAllowed: 8192}, models[0])
	assert.Equal(t, "Bearer secret", headers.Get("Authorization"))
	assert.Equal(t, "application/json", headers.Get("Accept"))
}

func TestFeatherless_DefaultsWhenDetailsMissing(t *testing.T) {
	srv, _ := listingServer(t, "/models", http.StatusOK,
		`{"models":[{"id":"org/tiny-model"},{"id":""}]}`)

	models := NewFeatherless().DynamicModels(context.Background(), ListRequest{
		Env: Env{"FEATHERLESS_API_BASE_URL": srv.URL, "FEATHERLESS_API_KEY": "k"},
	})

	require.Len(t, models, 1)
	assert.Equal(t, "tiny-model", models[0].Label)
	assert.Equal(t, DefaultMaxTokens, models[0].MaxTokenAllowed)
}

func TestOllama_DynamicModels(t *testing.T) {
	srv, headers := listingServer(t, "/api/tags", http.StatusOK, `{"models":[{"name":"llama2"}]}`)

	models := NewOllama().DynamicModels(context.Background(), ListRequest{
		Settings: ProviderSettings{OllamaName: {BaseURL: srv.URL}},
	})

	require.Len(t, models, 1)
	assert.Equal(t, ModelInfo{Name: "llama2", Label: "llama2", Provider: "Ollama", MaxTokenAllowed: 4096}, models[0])
	assert.Empty(t, headers.Get("Authorization"))
}

func TestOllama_ParameterSizeInLabel(t *testing.T) {
	srv, _ := listingServer(t, "/api/tags", http.StatusOK,
		`{"models":[{"name":"mistral:latest","details":{"parameter_size":"7.2B"}}]}`)

	models := NewOllama().DynamicModels(context.Background(), ListRequest{
		Env: Env{"OLLAMA_API_BASE_URL": srv.URL},
	})

	require.Len(t, models, 1)
	assert.Equal(t, "mistral:latest (7.2B)", models[0].Label)
}

func TestOpenRouter_DynamicModels(t *testing.T) {
	srv, _ := listingServer(t, "/models", http.StatusOK,
		`{"data":[{"id":"a/b","name":"A B","context_length":32000},{"id":"c/d"}]}`)

	models := NewOpenRouter().DynamicModels(context.Background(), ListRequest{
		APIKeys: APIKeys{OpenRouterName: "k"},
		Env:     Env{"OPENROUTER_API_BASE_URL": srv.URL},
	})

	require.Len(t, models, 2)
	assert.Equal(t, ModelInfo{Name: "a/b", Label: "A B", Provider: "OpenRouter", MaxTokenAllowed: 32000}, models[0])
	assert.Equal(t, ModelInfo{Name: "c/d", Label: "c/d", Provider: "OpenRouter", MaxTokenAllowed: 4096}, models[1])
}

func TestDynamicModels_ProviderStampedOnEveryModel(t *testing.T) {
	srv, _ := listingServer(t, "/models", http.StatusOK,
		`{"models":[{"id":"a"},{"id":"b"},{"id":"c","details":{"name":"C"}}]}`)

	p := NewFeatherless()
	models := p.DynamicModels(context.Background(), ListRequest{
		APIKeys: APIKeys{FeatherlessName: "k"},
		Env:     Env{"FEATHERLESS_API_BASE_URL": srv.URL},
	})

	require.Len(t, models, 3)
	for _, m := range models {
		assert.Equal(t, p.Name(), m.Provider)
	}
}

func TestDynamicModels_MissingCredentials(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	tests := []struct {
		name string
		p    Provider
		req  ListRequest
	}{
		{"featherless without key", NewFeatherless(), ListRequest{Env: Env{"FEATHERLESS_API_BASE_URL": srv.URL}}},
		{"openrouter without key", NewOpenRouter(), ListRequest{}},
		{"featherless with empty key", NewFeatherless(), ListRequest{APIKeys: APIKeys{FeatherlessName: ""}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var res ListResult
			assert.NotPanics(t, func() {
				res = tt.p.ListDynamic(context.Background(), tt.req)
			})
			assert.NotNil(t, res.Models)
			assert.Empty(t, res.Models)
			assert.Equal(t, StatusNoCredentials, res.Status)
			assert.ErrorIs(t, res.Err, ErrMissingCredentials)
		})
	}
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestDynamicModels_MalformedBodies(t *testing.T) {
	bodies := []string{
		`not json`,
		`"not json"`,
		`{"models":`,
		`{"models":"nope"}`,
		`{"items":[]}`,
		`[]`,
		`{"models":[{"id":5}]}`,
	}

	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			srv, _ := listingServer(t, "/models", http.StatusOK, body)
			res := NewFeatherless().ListDynamic(context.Background(), ListRequest{
				APIKeys: APIKeys{FeatherlessName: "k"},
				Env:     Env{"FEATHERLESS_API_BASE_URL": srv.URL},
			})
			assert.Equal(t, []ModelInfo{}, res.Models)
			assert.Equal(t, StatusFailed, res.Status)
			assert.Error(t, res.Err)
		})
	}
}

func TestDynamicModels_NonSuccessStatus(t *testing.T) {
	srv, _ := listingServer(t, "/api/tags", http.StatusUnauthorized, `{"error":"bad key"}`)

	res := NewOllama().ListDynamic(context.Background(), ListRequest{
		Env: Env{"OLLAMA_API_BASE_URL": srv.URL},
	})

	assert.Empty(t, res.Models)
	assert.Equal(t, StatusFailed, res.Status)
	assert.Contains(t, res.Err.Error(), "401")
	assert.Contains(t, res.Err.Error(), "bad key")
}

func TestDynamicModels_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	p := NewOllama(WithTimeout(50 * time.Millisecond))

	start := time.Now()
	models := p.DynamicModels(context.Background(), ListRequest{
		Env: Env{"OLLAMA_API_BASE_URL": srv.URL},
	})

	assert.Empty(t, models)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestDynamicModels_DefaultTimeout(t *testing.T) {
	assert.Equal(t, 5*time.Second, ListTimeout)
	assert.Equal(t, ListTimeout, NewOllama().timeout)
}

func TestDynamicModels_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	res := NewOllama().ListDynamic(context.Background(), ListRequest{Env: Env{"OLLAMA_API_BASE_URL": url}})
	assert.Empty(t, res.Models)
	assert.Equal(t, StatusFailed, res.Status)
}

func TestDynamicModels_Disabled(t *testing.T) {
	disabled := false
	res := NewOllama().ListDynamic(context.Background(), ListRequest{
		Settings: ProviderSettings{OllamaName: {Enabled: &disabled}},
	})

	assert.Empty(t, res.Models)
	assert.Equal(t, StatusDisabled, res.Status)
}

func TestDynamicModels_LowercaseProviderNames(t *testing.T) {
	srv, headers := listingServer(t, "/models", http.StatusOK,
		`{"models":[{"id":"m1","details":{"name":"Model One","size":"7B"}}]}`)

	res := NewFeatherless().ListDynamic(context.Background(), ListRequest{
		APIKeys:  APIKeys{"featherless": "k"},
		Settings: ProviderSettings{"featherless": {BaseURL: srv.URL}},
	})

	assert.Equal(t, StatusOK, res.Status)
	assert.Len(t, res.Models, 1)
	assert.Equal(t, "Bearer k", headers.Get("Authorization"))

	disabled := false
	res = NewOllama().ListDynamic(context.Background(), ListRequest{
		Settings: ProviderSettings{"ollama": {Enabled: &disabled}},
	})
	assert.Equal(t, StatusDisabled, res.Status)
}

func TestStaticModels(t *testing.T) {
	p := NewFeatherless()
	static := p.StaticModels()
	require.NotEmpty(t, static)
	for _, m := range static {
		assert.Equal(t, FeatherlessName, m.Provider)
	}

	// returned slice is a copy
	static[0].Name = "changed"
	assert.NotEqual(t, "changed", p.StaticModels()[0].Name)

	assert.Empty(t, NewOllama().StaticModels())
}

func TestModelInstance_MissingKey(t *testing.T) {
	var captured HandleSpec
	p := NewFeatherless(WithHandleFactory(fakeFactory(&captured)))

	handle, err := p.ModelInstance(context.Background(), InstanceOptions{Model: "m1"})

	require.Error(t, err)
	assert.Nil(t, handle)
	assert.ErrorIs(t, err, ErrMissingCredentials)

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "API key", cfgErr.Missing)
	assert.Empty(t, captured.Model)
}

func TestModelInstance_BindsCredentials(t *testing.T) {
	var captured HandleSpec
	p := NewFeatherless(WithHandleFactory(fakeFactory(&captured)))

	handle, err := p.ModelInstance(context.Background(), InstanceOptions{
		Model:   "m1",
		APIKeys: APIKeys{FeatherlessName: "k"},
		Env:     Env{"FEATHERLESS_API_BASE_URL": "https://feather.example/v1/"},
	})

	require.NoError(t, err)
	assert.Equal(t, "m1", handle.Model())
	assert.Equal(t, HandleSpec{
		Provider: FeatherlessName,
		BaseURL:  "https://feather.example/v1",
		APIKey:   "k",
		Model:    "m1",
	}, captured)
}

func TestModelInstance_OllamaNeedsNoKey(t *testing.T) {
	var captured HandleSpec
	p := NewOllama(WithHandleFactory(fakeFactory(&captured)))

	_, err := p.ModelInstance(context.Background(), InstanceOptions{Model: "llama2"})

	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:11434/v1", captured.BaseURL)
	assert.Equal(t, "ollama", captured.APIKey)
}

func TestModelInstance_Disabled(t *testing.T) {
	var captured HandleSpec
	disabled := false
	p := NewOllama(WithHandleFactory(fakeFactory(&captured)))

	_, err := p.ModelInstance(context.Background(), InstanceOptions{
		Model:    "llama2",
		Settings: ProviderSettings{OllamaName: {Enabled: &disabled}},
	})

	assert.ErrorIs(t, err, ErrProviderDisabled)
}

func TestModelInstance_RequiresModel(t *testing.T) {
	var captured HandleSpec
	p := NewOllama(WithHandleFactory(fakeFactory(&captured)))

	_, err := p.ModelInstance(context.Background(), InstanceOptions{})
	assert.Error(t, err)
}
