package handler

import (
	"encoding/json"
	"net/http"

	"github.com/AlexZinkM/ergo-wallet/internal/authflow"
	"github.com/AlexZinkM/ergo-wallet/internal/model"
)

// CreateSessionRequest represents request body for POST /sessions
type CreateSessionRequest struct {
	URI     string `json:"uri" example:"ergopay://dapp.example.com/pay/#P2PK_ADDRESS#"`
	Address string `json:"address,omitempty"` // defaults to the keystore address
}

// AddPageRequest represents request body for POST /sessions/{id}/pages
type AddPageRequest struct {
	Page string `json:"page" example:"{\"CSR\":\"eyJyZWR1Y2VkVHgiOi\",\"p\":1,\"n\":3}"`
}

// SessionResponse represents a session and its current state
type SessionResponse struct {
	ID      string            `json:"id"`
	Session authflow.Snapshot `json:"session"`
}

// AddPageResponse represents response for POST /sessions/{id}/pages
type AddPageResponse struct {
	Added   bool              `json:"added"`
	Session authflow.Snapshot `json:"session"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, model.ErrorResponse{Error: err.Error()})
}
