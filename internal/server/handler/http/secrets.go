// Package http provides HTTP handlers for the secret vault API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/secretkeeper/internal/middleware"
	"github.com/atinyakov/secretkeeper/internal/repository"
	"github.com/atinyakov/secretkeeper/internal/secrets"
	"github.com/atinyakov/secretkeeper/internal/service"
	"github.com/atinyakov/secretkeeper/internal/vault"
)

// VaultService defines the vault operations required by the SecretHandler.
type VaultService interface {
	AddCreditCard(ctx context.Context, owner string, in service.CreditCardInput) (*secrets.CreditCard, error)
	UpdateCreditCard(ctx context.Context, owner, name string, patch service.CreditCardPatch) (*secrets.CreditCard, error)
	Reveal(ctx context.Context, owner, name string) (string, error)
	List(ctx context.Context, owner, folder string) ([]secrets.Secret, error)
	Folders(ctx context.Context, owner string) ([]string, error)
	Rename(ctx context.Context, owner, oldName, newName string) error
	Move(ctx context.Context, owner, name, folder string) error
	Delete(ctx context.Context, owner, name string) error
}

// SecretHandler serves the /api secret endpoints.
type SecretHandler struct {
	VaultService VaultService
	Log          *zap.Logger
}

// SecretSummary is the non-sensitive JSON view of a secret.
type SecretSummary struct {
	Name   string `json:"name"`
	Folder string `json:"folder"`
	Type   string `json:"type"`
}

// RenameRequest is the body of POST /api/secrets/{name}/rename.
type RenameRequest struct {
	NewName string `json:"new_name"`
}

// MoveRequest is the body of POST /api/secrets/{name}/move.
type MoveRequest struct {
	Folder string `json:"folder"`
}

func summarize(s secrets.Secret) SecretSummary {
	return SecretSummary{Name: s.Name(), Folder: s.FolderName(), Type: s.Type()}
}

func nameParam(r *http.Request) string {
	raw := chi.URLParam(r, "name")
	if name, err := url.PathUnescape(raw); err == nil {
		return name
	}
	return raw
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps service errors to HTTP status codes.
func (h *SecretHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, secrets.ErrInvalidCardNumber),
		errors.Is(err, secrets.ErrInvalidCvc),
		errors.Is(err, secrets.ErrInvalidExpiryDate):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, vault.ErrIllegalName), errors.Is(err, service.ErrNotCreditCard):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, vault.ErrNotFound), errors.Is(err, repository.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, vault.ErrDuplicateName):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		if h.Log != nil {
			h.Log.Error("request failed", zap.Error(err))
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// CreateCard handles POST /api/cards.
func (h *SecretHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	var in service.CreditCardInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	card, err := h.VaultService.AddCreditCard(r.Context(), middleware.GetOwnerFromContext(r.Context()), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, summarize(card))
}

// UpdateCard handles PATCH /api/cards/{name}.
func (h *SecretHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	var patch service.CreditCardPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	card, err := h.VaultService.UpdateCreditCard(r.Context(),
		middleware.GetOwnerFromContext(r.Context()), nameParam(r), patch)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summarize(card))
}

// List handles GET /api/secrets with an optional ?folder= filter.
func (h *SecretHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.VaultService.List(r.Context(),
		middleware.GetOwnerFromContext(r.Context()), r.URL.Query().Get("folder"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]SecretSummary, 0, len(list))
	for _, s := range list {
		out = append(out, summarize(s))
	}
	writeJSON(w, http.StatusOK, out)
}

// Folders handles GET /api/folders.
func (h *SecretHandler) Folders(w http.ResponseWriter, r *http.Request) {
	folders, err := h.VaultService.Folders(r.Context(), middleware.GetOwnerFromContext(r.Context()))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, folders)
}

// Reveal handles GET /api/secrets/{name}/reveal and answers in plain text.
func (h *SecretHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	text, err := h.VaultService.Reveal(r.Context(), middleware.GetOwnerFromContext(r.Context()), nameParam(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(text))
}

// Rename handles POST /api/secrets/{name}/rename.
func (h *SecretHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req RenameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	err := h.VaultService.Rename(r.Context(), middleware.GetOwnerFromContext(r.Context()), nameParam(r), req.NewName)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Move handles POST /api/secrets/{name}/move.
func (h *SecretHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	err := h.VaultService.Move(r.Context(), middleware.GetOwnerFromContext(r.Context()), nameParam(r), req.Folder)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /api/secrets/{name}.
func (h *SecretHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.VaultService.Delete(r.Context(), middleware.GetOwnerFromContext(r.Context()), nameParam(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
