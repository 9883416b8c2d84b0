package testutil

import (
	"context"
	"errors"

	"modelhub/internal/provider"
	"modelhub/internal/repository/db"
)

// MockDatabase is a mock implementation of db.Database for testing
type MockDatabase struct {
	// User mocks
	GetUserByUsernameFunc func(username string) (*db.User, error)
	CreateUserFunc        func(username, email, password string) (*db.User, error)

	// Selection mocks
	GetSelectionFunc  func(userID string) (*db.Selection, error)
	SaveSelectionFunc func(userID, provider, model string) error

	// Conversation mocks
	CreateConversationFunc     func(userID, title string) (*db.Conversation, error)
	GetConversationFunc        func(id string) (*db.Conversation, error)
	GetConversationsByUserFunc func(userID string) ([]db.Conversation, error)

	// Message mocks
	AddMessageFunc              func(conversationID, role, content, provider, model string) (*db.Message, error)
	GetConversationMessagesFunc func(conversationID string) ([]db.Message, error)
}

// User methods
func (m *MockDatabase) GetUserByUsername(username string) (*db.User, error) {
	if m.GetUserByUsernameFunc != nil {
		return m.GetUserByUsernameFunc(username)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) CreateUser(username, email, password string) (*db.User, error) {
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(username, email, password)
	}
	return nil, errors.New("not implemented")
}

// Selection methods
func (m *MockDatabase) GetSelection(userID string) (*db.Selection, error) {
	if m.GetSelectionFunc != nil {
		return m.GetSelectionFunc(userID)
	}
	return nil, db.ErrNotFound
}

func (m *MockDatabase) SaveSelection(userID, provider, model string) error {
	if m.SaveSelectionFunc != nil {
		return m.SaveSelectionFunc(userID, provider, model)
	}
	return nil
}

// Conversation methods
func (m *MockDatabase) CreateConversation(userID, title string) (*db.Conversation, error) {
	if m.CreateConversationFunc != nil {
		return m.CreateConversationFunc(userID, title)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) GetConversation(id string) (*db.Conversation, error) {
	if m.GetConversationFunc != nil {
		return m.GetConversationFunc(id)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) GetConversationsByUser(userID string) ([]db.Conversation, error) {
	if m.GetConversationsByUserFunc != nil {
		return m.GetConversationsByUserFunc(userID)
	}
	return nil, errors.New("not implemented")
}

// Message methods
func (m *MockDatabase) AddMessage(conversationID, role, content, provider, model string) (*db.Message, error) {
	if m.AddMessageFunc != nil {
		return m.AddMessageFunc(conversationID, role, content, provider, model)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) GetConversationMessages(conversationID string) ([]db.Message, error) {
	if m.GetConversationMessagesFunc != nil {
		return m.GetConversationMessagesFunc(conversationID)
	}
	return nil, errors.New("not implemented")
}

// MockProvider is a mock implementation of provider.Provider for testing
type MockProvider struct {
	NameValue         string
	KindValue         provider.Kind
	Static            []provider.ModelInfo
	DynamicModelsFunc func(ctx context.Context, req provider.ListRequest) []provider.ModelInfo
	ModelInstanceFunc func(ctx context.Context, opts provider.InstanceOptions) (provider.ModelHandle, error)
}

func (m *MockProvider) Name() string            { return m.NameValue }
func (m *MockProvider) Kind() provider.Kind     { return m.KindValue }
func (m *MockProvider) Config() provider.Config { return provider.Config{} }

func (m *MockProvider) StaticModels() []provider.ModelInfo {
	out := make([]provider.ModelInfo, len(m.Static))
	copy(out, m.Static)
	return out
}

func (m *MockProvider) DynamicModels(ctx context.Context, req provider.ListRequest) []provider.ModelInfo {
	return m.ListDynamic(ctx, req).Models
}

func (m *MockProvider) ListDynamic(ctx context.Context, req provider.ListRequest) provider.ListResult {
	if m.DynamicModelsFunc != nil {
		return provider.ListResult{Models: m.DynamicModelsFunc(ctx, req), Status: provider.StatusOK}
	}
	return provider.ListResult{Models: []provider.ModelInfo{}, Status: provider.StatusOK}
}

func (m *MockProvider) ModelInstance(ctx context.Context, opts provider.InstanceOptions) (provider.ModelHandle, error) {
	if m.ModelInstanceFunc != nil {
		return m.ModelInstanceFunc(ctx, opts)
	}
	return nil, errors.New("not implemented")
}

// MockModelHandle is a mock implementation of provider.ModelHandle for testing
type MockModelHandle struct {
	ProviderName string
	ModelName    string
	GenerateFunc func(ctx context.Context, messages []provider.Message, opts provider.GenerateOptions) (string, *provider.Usage, error)
	StreamFunc   func(ctx context.Context, messages []provider.Message, opts provider.GenerateOptions, onChunk func(string) error) (*provider.Usage, error)
}

func (m *MockModelHandle) Provider() string { return m.ProviderName }
func (m *MockModelHandle) Model() string    { return m.ModelName }

func (m *MockModelHandle) Generate(ctx context.Context, messages []provider.Message, opts provider.GenerateOptions) (string, *provider.Usage, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, messages, opts)
	}
	return "", nil, errors.New("not implemented")
}

func (m *MockModelHandle) Stream(ctx context.Context, messages []provider.Message, opts provider.GenerateOptions, onChunk func(string) error) (*provider.Usage, error) {
	if m.StreamFunc != nil {
		return m.StreamFunc(ctx, messages, opts, onChunk)
	}
	return nil, errors.New("not implemented")
}

// Models builds ModelInfo values for a provider from names
func Models(providerName string, names ...string) []provider.ModelInfo {
	out := make([]provider.ModelInfo, 0, len(names))
	for _, n := range names {
		out = append(out, provider.ModelInfo{Name: n, Label: n, Provider: providerName, MaxTokenAllowed: provider.DefaultMaxTokens})
	}
	return out
}
