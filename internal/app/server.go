package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"changehub/backend/internal/model"
	"changehub/backend/internal/repository"
	"changehub/backend/internal/service"
)

type contextKey string

const identityContextKey contextKey = "authIdentity"

type Server struct {
	cfg          Config
	db           *sql.DB
	tokens       *TokenManager
	users        repository.UserRepository
	campaigns    *service.CampaignService
	events       *service.EventService
	loginLimiter *loginLimiter
	mux          *http.ServeMux
	http         *http.Server
}

func NewServer(cfg Config) (*Server, error) {
	db, err := OpenStore(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	s := newServer(cfg, db)

	if cfg.AdminInitEnabled {
		if err := s.InitFirstAdmin(context.Background(), cfg.AdminInitUsername, cfg.AdminInitPassword); err != nil {
			db.Close()
			return nil, err
		}
	}
	return s, nil
}

// newServer wires the server around an already-open store. Tests use it
// directly with an in-memory database.
func newServer(cfg Config, db *sql.DB) *Server {
	users := repository.NewSQLUserRepository(db)
	s := &Server{
		cfg:          cfg,
		db:           db,
		tokens:       NewTokenManager(cfg.JWTSecret, cfg.TokenTTL),
		users:        users,
		campaigns:    service.NewCampaignService(repository.NewSQLCampaignRepository(db), users),
		events:       service.NewEventService(repository.NewSQLEventRepository(db), users),
		loginLimiter: newLoginLimiter(cfg.LoginRatePerMin, cfg.LoginRateBurst),
		mux:          http.NewServeMux(),
	}
	s.registerRoutes()
	s.http = &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) Close() error {
	return s.db.Close()
}

func (s *Server) ListenAndServe() error {
	log.Printf("backend listening on %s", s.http.Addr)
	return s.http.ListenAndServe()
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("POST /auth/register", s.handleRegister)
	s.mux.HandleFunc("POST /auth/login", s.handleLogin)
	s.mux.Handle("GET /auth/me", s.withAuth(http.HandlerFunc(s.handleMe)))

	s.mux.Handle("GET /users/profile", s.withAuth(http.HandlerFunc(s.handleGetProfile)))
	s.mux.Handle("PUT /users/profile", s.withAuth(http.HandlerFunc(s.handleUpdateProfile)))
	s.mux.Handle("GET /users/admin", s.withAuth(s.withRole(http.HandlerFunc(s.handleAdminPing), model.UserRoleAdmin)))
	s.mux.Handle("GET /users/user", s.withAuth(s.withRole(http.HandlerFunc(s.handleUserPing), model.UserRoleAdmin, model.UserRoleUser)))

	s.mux.HandleFunc("GET /campaigns", s.handleListCampaigns)
	s.mux.HandleFunc("GET /campaigns/{id}", s.handleGetCampaign)
	s.mux.Handle("POST /campaigns", s.withAuth(s.withRole(http.HandlerFunc(s.handleCreateCampaign), model.UserRoleAdmin)))
	s.mux.Handle("PUT /campaigns/{id}", s.withAuth(s.withRole(http.HandlerFunc(s.handleUpdateCampaign), model.UserRoleAdmin)))
	s.mux.Handle("DELETE /campaigns/{id}", s.withAuth(s.withRole(http.HandlerFunc(s.handleDeleteCampaign), model.UserRoleAdmin)))
	s.mux.Handle("POST /campaigns/{id}/join", s.withAuth(http.HandlerFunc(s.handleJoinCampaign)))
	s.mux.Handle("POST /campaigns/{id}/leave", s.withAuth(http.HandlerFunc(s.handleLeaveCampaign)))

	s.mux.HandleFunc("GET /events", s.handleListEvents)
	s.mux.HandleFunc("GET /events/{id}", s.handleGetEvent)
	s.mux.Handle("POST /events", s.withAuth(s.withRole(http.HandlerFunc(s.handleCreateEvent), model.UserRoleAdmin)))
	s.mux.Handle("PUT /events/{id}", s.withAuth(s.withRole(http.HandlerFunc(s.handleUpdateEvent), model.UserRoleAdmin)))
	s.mux.Handle("DELETE /events/{id}", s.withAuth(s.withRole(http.HandlerFunc(s.handleDeleteEvent), model.UserRoleAdmin)))
	s.mux.Handle("POST /events/{id}/register", s.withAuth(http.HandlerFunc(s.handleRegisterEvent)))
	s.mux.Handle("POST /events/{id}/unregister", s.withAuth(http.HandlerFunc(s.handleUnregisterEvent)))
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Service: "backend"})
}

// withAuth verifies the bearer token and stores the verified identity in
// the request context. Role checks must run after this middleware.
func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			writeErr(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		identity, err := s.tokens.Verify(tokenString)
		if err != nil {
			writeErr(w, http.StatusUnauthorized, "invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), identityContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// withRole denies unless the verified identity carries one of the allowed
// roles. A missing identity has an empty role and is denied.
func (s *Server) withRole(next http.Handler, roles ...model.UserRole) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := identityFromContext(r.Context())
		for _, role := range roles {
			if identity.Role == role && identity.Role != "" {
				next.ServeHTTP(w, r)
				return
			}
		}
		writeErr(w, http.StatusForbidden, "access denied: you do not have the required role")
	})
}

func identityFromContext(ctx context.Context) Identity {
	value := ctx.Value(identityContextKey)
	if value == nil {
		return Identity{}
	}
	identity, _ := value.(Identity)
	return identity
}

func (s *Server) InitFirstAdmin(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return errInvalidAdminInit
	}

	admins, err := s.users.CountAdmins(ctx)
	if err != nil {
		return err
	}
	if admins > 0 {
		return nil
	}

	existing, err := s.users.FindByUsername(ctx, username)
	if err == nil {
		if existing.Role == model.UserRoleAdmin {
			return nil
		}
		return s.users.PromoteToAdmin(ctx, existing.ID)
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	_, err = s.users.Create(ctx, username, hash, model.UserRoleAdmin)
	if errors.Is(err, repository.ErrDuplicateUsername) {
		return nil
	}
	return err
}

var errInvalidAdminInit = errors.New("username and password are required")

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type responseError struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

func writeErr(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, responseError{OK: false, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to write json response: %v", err)
	}
}
