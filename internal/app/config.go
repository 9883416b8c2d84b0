package app

import (
	"modelhub/internal/config"
	"modelhub/internal/provider"
	"modelhub/internal/repository/db"
	"modelhub/internal/service/chat"
	"modelhub/internal/service/conversation"
	"modelhub/internal/service/summary"
)

// Config holds all application dependencies and configuration
type Config struct {
	// Database interface for data persistence
	DB db.Database
	// Centralized application configuration
	AppConfig *config.AppConfig
	// Registered provider adapters
	Providers *provider.Registry
	// One chat orchestrator per user
	Sessions *chat.Manager
	// Conversation history shared by all sessions
	Conversations *conversation.ConversationService
	// Summaries with the caller's selected model
	Summaries *summary.SummaryService
}

// NewConfig wires the services over database and registry
func NewConfig(database db.Database, appConfig *config.AppConfig, registry *provider.Registry) *Config {
	c := &Config{
		DB:            database,
		AppConfig:     appConfig,
		Providers:     registry,
		Conversations: conversation.NewConversationService(database),
	}
	c.Sessions = chat.NewManager(c.newOrchestrator)
	c.Summaries = summary.NewSummaryService(
		c.Conversations,
		chat.NewHandleTransport(registry, c.Settings(), c.Env()),
		appConfig.Chat.SummarizationPrompt,
	)
	return c
}

// Settings returns the per-provider settings from the providers file
func (c *Config) Settings() provider.ProviderSettings {
	return c.AppConfig.Providers.Settings()
}

// Env returns the server environment handed to adapters
func (c *Config) Env() provider.Env {
	return c.AppConfig.Env
}

func (c *Config) newOrchestrator(userID string) (*chat.Orchestrator, error) {
	chatCfg := c.AppConfig.Chat
	temperature, topP := chatCfg.Temperature, chatCfg.TopP

	return chat.NewOrchestrator(chat.Options{
		Providers:    c.Providers,
		Store:        chat.NewDBSelectionStore(c.DB, userID),
		Transport:    chat.NewHandleTransport(c.Providers, c.Settings(), c.Env()),
		History:      c.Conversations,
		Settings:     c.Settings(),
		Env:          c.Env(),
		Default:      chat.Selection{Provider: chatCfg.DefaultProvider},
		SystemPrompt: chatCfg.DefaultSystemPrompt,
		Generate: provider.GenerateOptions{
			Temperature: &temperature,
			TopP:        &topP,
			MaxTokens:   provider.DefaultMaxTokens,
		},
	})
}
