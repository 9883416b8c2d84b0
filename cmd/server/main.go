package main

import (
	"net/http"

	"modelhub/internal/api/handlers"
	"modelhub/internal/app"
	"modelhub/internal/auth"
	"modelhub/internal/config"
	"modelhub/internal/logger"
	"modelhub/internal/provider"
	"modelhub/internal/repository/postgres"

	"github.com/sirupsen/logrus"
)

const allowedHeaders = "Content-Type, Authorization, " + handlers.ProviderKeysHeader

func enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	}
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		logger.Log.WithError(err).Fatal("Failed to load .env")
	}

	appConfig, err := config.LoadConfig()
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load configuration")
	}

	logger.Log.Info("Initializing database...")
	database, err := postgres.NewPostgresDB(appConfig.Database)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to initialize database")
	}
	defer database.Close()

	if err := postgres.SeedDemoUser(database); err != nil {
		logger.Log.WithError(err).Fatal("Failed to seed demo user")
	}

	registry := provider.DefaultRegistry(provider.WithHandleFactory(provider.HandleFactoryFor(appConfig.Chat.Backend)))
	deps := app.NewConfig(database, appConfig, registry)
	authService := auth.NewService(database, appConfig.Auth)
	h := handlers.NewHandlers(deps)

	mux := http.NewServeMux()
	public := func(pattern string, handler http.HandlerFunc) {
		mux.HandleFunc(pattern, enableCORS(handler))
	}
	protected := func(pattern string, handler http.HandlerFunc) {
		mux.HandleFunc(pattern, enableCORS(authService.Middleware(handler)))
	}

	// CORS preflight for every route
	mux.HandleFunc("OPTIONS /api/", enableCORS(func(w http.ResponseWriter, r *http.Request) {}))

	public("POST /api/login", authService.LoginHandler)
	public("POST /api/register", authService.RegisterHandler)
	public("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	protected("GET /api/providers", h.GetProvidersHandler)
	protected("GET /api/providers/{name}/models", h.GetProviderModelsHandler)
	protected("GET /api/selection", h.GetSelectionHandler)
	protected("POST /api/selection/provider", h.SelectProviderHandler)
	protected("POST /api/selection/model", h.SelectModelHandler)
	protected("POST /api/chat/stream", h.ChatStreamHandler)
	protected("POST /api/chat/stop", h.StopHandler)
	protected("GET /api/conversations", h.GetConversationsHandler)
	protected("GET /api/conversations/{id}/export", h.ExportConversationHandler)
	protected("POST /api/conversations/import", h.ImportConversationHandler)
	protected("POST /api/conversations/{id}/summary", h.SummarizeConversationHandler)

	port := appConfig.Server.Port
	logger.Log.WithFields(logrus.Fields{
		"port":      port,
		"providers": registry.Names(),
		"default":   appConfig.Chat.DefaultProvider,
		"backend":   appConfig.Chat.Backend,
	}).Info("Server starting")

	if err := http.ListenAndServe(":"+port, mux); err != nil {
		logger.Log.WithError(err).Fatal("Server failed to start")
	}
}
