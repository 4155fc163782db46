package sandbox

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/JonMunkholm/halofields/internal/auth"
	"github.com/JonMunkholm/halofields/internal/fieldapi"
	"github.com/JonMunkholm/halofields/internal/logging"
)

// maxBodyBytes bounds request bodies accepted by the sandbox.
const maxBodyBytes = 1 << 20

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type oauthError struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// handleToken implements the client-credentials grant.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, oauthError{Error: "invalid_request", Description: "malformed form body"})
		return
	}

	if gt := r.PostForm.Get("grant_type"); gt != auth.GrantType {
		writeJSON(w, http.StatusBadRequest, oauthError{Error: "unsupported_grant_type", Description: gt})
		return
	}

	if !s.validClient(r.PostForm.Get("client_id"), r.PostForm.Get("client_secret")) {
		logging.FromContext(r.Context()).Warn("rejected client credentials",
			"client_id", r.PostForm.Get("client_id"),
			"remote_addr", r.RemoteAddr,
		)
		writeJSON(w, http.StatusUnauthorized, oauthError{Error: "invalid_client"})
		return
	}

	token := uuid.NewString()

	s.mu.Lock()
	s.tokens[token] = s.now().Add(s.cfg.TokenTTL)
	s.tokenRequests++
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.cfg.TokenTTL.Seconds()),
	})
}

// validClient compares both values in constant time.
func (s *Server) validClient(id, secret string) bool {
	idOK := subtle.ConstantTimeCompare([]byte(id), []byte(s.cfg.ClientID)) == 1
	secretOK := subtle.ConstantTimeCompare([]byte(secret), []byte(s.cfg.ClientSecret)) == 1
	return idOK && secretOK
}

// requireBearer rejects requests without a live bearer token.
func (s *Server) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}

		s.mu.Lock()
		expiresAt, known := s.tokens[token]
		s.mu.Unlock()

		if !known || !s.now().Before(expiresAt) {
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// handleCreateField records a field payload or answers with the failure
// configured for its label.
func (s *Server) handleCreateField(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	var payload fieldapi.FieldPayload
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&payload); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if payload.Name == "" || payload.Label == "" {
		http.Error(w, "name and label are required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	failure, fail := s.failures[payload.Label]
	if fail {
		s.mu.Unlock()
		logger.Info("injected failure", "label", payload.Label, "status", failure.Status)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(failure.Status)
		w.Write([]byte(failure.Body))
		return
	}

	created := CreatedField{
		ID:         len(s.fields) + 1,
		RequestID:  middleware.GetReqID(r.Context()),
		ReceivedAt: s.now(),
		Payload:    payload,
	}
	s.fields = append(s.fields, created)
	s.mu.Unlock()

	logger.Info("field created", "id", created.ID, "name", payload.Name, "type", payload.Type)
	writeJSON(w, http.StatusOK, created)
}

func (s *Server) handleListFields(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Fields())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
