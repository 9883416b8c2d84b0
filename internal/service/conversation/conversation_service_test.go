package conversation

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"modelhub/internal/repository/db"
	"modelhub/internal/testutil"
)

// memoryDB wires a MockDatabase to in-memory conversation storage
func memoryDB() (*testutil.MockDatabase, map[string]*db.Conversation, map[string][]db.Message) {
	conversations := make(map[string]*db.Conversation)
	messages := make(map[string][]db.Message)
	mockDB := &testutil.MockDatabase{}

	mockDB.CreateConversationFunc = func(userID, title string) (*db.Conversation, error) {
		conv := &db.Conversation{ID: "conv-" + string(rune('a'+len(conversations))), UserID: userID, Title: title}
		conversations[conv.ID] = conv
		return conv, nil
	}
	mockDB.GetConversationFunc = func(id string) (*db.Conversation, error) {
		if conv, ok := conversations[id]; ok {
			return conv, nil
		}
		return nil, db.ErrNotFound
	}
	mockDB.AddMessageFunc = func(conversationID, role, content, provider, model string) (*db.Message, error) {
		msg := db.Message{ConversationID: conversationID, Role: role, Content: content, Provider: provider, Model: model}
		messages[conversationID] = append(messages[conversationID], msg)
		return &msg, nil
	}
	mockDB.GetConversationMessagesFunc = func(conversationID string) ([]db.Message, error) {
		return messages[conversationID], nil
	}

	return mockDB, conversations, messages
}

func TestCreate_TruncatesTitle(t *testing.T) {
	mockDB, _, _ := memoryDB()
	service := NewConversationService(mockDB)

	conv, err := service.Create("user-1", strings.Repeat("é", 150))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if got := len([]rune(conv.Title)); got != 100 {
		t.Errorf("Title length = %d runes, want 100", got)
	}
}

func TestGetUserConversations(t *testing.T) {
	mockDB := &testutil.MockDatabase{}
	now := time.Now()
	mockDB.GetConversationsByUserFunc = func(userID string) ([]db.Conversation, error) {
		return []db.Conversation{
			{ID: "c1", UserID: userID, Title: "First", CreatedAt: now, UpdatedAt: now},
			{ID: "c2", UserID: userID, Title: "Second", CreatedAt: now, UpdatedAt: now},
		}, nil
	}

	service := NewConversationService(mockDB)
	result, err := service.GetUserConversations("user-1")
	if err != nil {
		t.Fatalf("GetUserConversations() error = %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("Expected 2 conversations, got %d", len(result))
	}
	if result[0].ID != "c1" || result[1].Title != "Second" {
		t.Errorf("Unexpected conversations: %+v", result)
	}
}

func TestGetUserConversations_DatabaseError(t *testing.T) {
	mockDB := &testutil.MockDatabase{}
	mockDB.GetConversationsByUserFunc = func(userID string) ([]db.Conversation, error) {
		return nil, errors.New("connection refused")
	}

	service := NewConversationService(mockDB)
	if _, err := service.GetUserConversations("user-1"); err == nil {
		t.Error("Expected error, got nil")
	}
}

func TestAuthorize(t *testing.T) {
	mockDB, _, _ := memoryDB()
	service := NewConversationService(mockDB)
	conv, _ := service.Create("owner", "hello")

	if _, err := service.Authorize(conv.ID, "owner"); err != nil {
		t.Errorf("Authorize() for owner error = %v", err)
	}
	if _, err := service.Authorize(conv.ID, "intruder"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Authorize() for intruder error = %v, want ErrUnauthorized", err)
	}
	if _, err := service.Authorize("missing", "owner"); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("Authorize() for missing conversation error = %v, want ErrNotFound", err)
	}
}

func TestMessagesAndAppend(t *testing.T) {
	mockDB, _, _ := memoryDB()
	service := NewConversationService(mockDB)
	conv, _ := service.Create("user-1", "hello")

	if err := service.Append(conv.ID, "user", "hello", "", ""); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := service.Append(conv.ID, "assistant", "hi", "Ollama", "llama2"); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	messages, err := service.Messages(conv.ID)
	if err != nil {
		t.Fatalf("Messages() error = %v", err)
	}
	if len(messages) != 2 || messages[0].Role != "user" || messages[1].Content != "hi" {
		t.Errorf("Unexpected messages: %+v", messages)
	}
}

func TestExportImport_RoundTrip(t *testing.T) {
	mockDB, _, stored := memoryDB()
	service := NewConversationService(mockDB)

	conv, _ := service.Create("user-1", "Trip planning")
	service.Append(conv.ID, "user", "Where to go?", "", "")
	service.Append(conv.ID, "assistant", "Lisbon.", "OpenRouter", "openai/gpt-4o-mini")
	service.Append(conv.ID, "user", "Why?", "", "")

	data, err := service.Export(conv.ID, "user-1")
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var doc Export
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Export produced invalid JSON: %v", err)
	}
	if doc.Version != ExportVersion || doc.Title != "Trip planning" || len(doc.Messages) != 3 {
		t.Fatalf("Unexpected export document: %+v", doc)
	}

	imported, err := service.Import("user-2", data)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if imported.ID == conv.ID {
		t.Error("Import should create a new conversation")
	}
	if imported.UserID != "user-2" {
		t.Errorf("Imported conversation owner = %s, want user-2", imported.UserID)
	}

	got := stored[imported.ID]
	want := stored[conv.ID]
	if len(got) != len(want) {
		t.Fatalf("Imported %d messages, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Role != want[i].Role || got[i].Content != want[i].Content || got[i].Model != want[i].Model {
			t.Errorf("Message %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestExport_Unauthorized(t *testing.T) {
	mockDB, _, _ := memoryDB()
	service := NewConversationService(mockDB)
	conv, _ := service.Create("owner", "secret")

	if _, err := service.Export(conv.ID, "intruder"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Export() error = %v, want ErrUnauthorized", err)
	}
}

func TestImport_InvalidDocuments(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", "not json"},
		{"wrong version", `{"version": 99, "messages": []}`},
		{"missing role", `{"version": 1, "messages": [{"content": "hi"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDB, conversations, _ := memoryDB()
			service := NewConversationService(mockDB)

			if _, err := service.Import("user-1", []byte(tt.payload)); !errors.Is(err, ErrInvalidExport) {
				t.Errorf("Import() error = %v, want ErrInvalidExport", err)
			}
			if len(conversations) != 0 {
				t.Error("Invalid import should not create a conversation")
			}
		})
	}
}

func TestImport_DefaultTitle(t *testing.T) {
	mockDB, _, _ := memoryDB()
	service := NewConversationService(mockDB)

	conv, err := service.Import("user-1", []byte(`{"version": 1, "messages": []}`))
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if conv.Title != "Imported conversation" {
		t.Errorf("Title = %q, want default", conv.Title)
	}
}
