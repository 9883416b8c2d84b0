package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"modelhub/internal/config"
	"modelhub/internal/logger"
	"modelhub/internal/repository/db"
	"modelhub/pkg/validation"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type contextKey string

// UserContextKey holds the authenticated username in request contexts
const UserContextKey contextKey = "user"

type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Service issues and verifies tokens and serves the login/register endpoints
type Service struct {
	db         db.Database
	secret     []byte
	expiration time.Duration
	validator  *validation.AuthRequestValidator
}

// NewService creates an auth service signing tokens with cfg.JWTSecret
func NewService(database db.Database, cfg config.AuthConfig) *Service {
	expiration := cfg.TokenExpiration
	if expiration <= 0 {
		expiration = 24 * time.Hour
	}
	return &Service{
		db:         database,
		secret:     cfg.JWTSecret,
		expiration: expiration,
		validator:  validation.NewAuthRequestValidator(),
	}
}

// UsernameFromContext returns the username stored by Middleware
func UsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UserContextKey).(string)
	return username, ok && username != ""
}

// sendError sends a standardized JSON error response
func sendError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	errResp := ErrorResponse{
		Code:    status,
		Message: message,
	}
	if err != nil {
		errResp.Error = err.Error()
	}
	json.NewEncoder(w).Encode(errResp)
}

func (s *Service) GenerateToken(username string) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}

// LoginHandler authenticates user and returns JWT token
func (s *Service) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := s.validator.ValidateLoginRequest(req.Username, req.Password); err != nil {
		sendError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	user, err := s.db.GetUserByUsername(req.Username)
	if err != nil {
		logger.Log.WithField("username", req.Username).Warn("Login failed: user not found")
		sendError(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		logger.Log.WithField("username", req.Username).Warn("Login failed: invalid password")
		sendError(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}

	token, err := s.GenerateToken(user.Username)
	if err != nil {
		logger.Log.WithError(err).Error("Error generating token")
		sendError(w, http.StatusInternalServerError, "Error generating token", err)
		return
	}

	logger.Log.WithField("username", user.Username).Info("User logged in")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(LoginResponse{Token: token})
}

// RegisterHandler creates a new user account
func (s *Service) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := s.validator.ValidateRegisterRequest(req.Username, req.Email, req.Password); err != nil {
		sendError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	user, err := s.db.CreateUser(req.Username, req.Email, req.Password)
	if err != nil {
		logger.Log.WithError(err).WithField("username", req.Username).Warn("Registration failed")
		if errors.Is(err, db.ErrUsernameTaken) {
			sendError(w, http.StatusConflict, "Username already exists", err)
			return
		}
		sendError(w, http.StatusInternalServerError, "Error creating user", err)
		return
	}

	token, err := s.GenerateToken(user.Username)
	if err != nil {
		logger.Log.WithError(err).Error("Error generating token")
		sendError(w, http.StatusInternalServerError, "Error generating token", err)
		return
	}

	logger.Log.WithField("username", user.Username).Info("User registered")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(RegisterResponse{
		Message: "User registered successfully",
		Token:   token,
	})
}

// Middleware rejects requests without a valid bearer token
func (s *Service) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			sendError(w, http.StatusUnauthorized, "Missing authorization header", nil)
			return
		}

		bearerToken := strings.Split(authHeader, " ")
		if len(bearerToken) != 2 || bearerToken[0] != "Bearer" {
			sendError(w, http.StatusUnauthorized, "Invalid authorization header format", nil)
			return
		}

		claims, err := s.ValidateToken(bearerToken[1])
		if err != nil {
			sendError(w, http.StatusUnauthorized, "Invalid token", err)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}
