package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"egabank/internal/ledger"
	"egabank/internal/middleware"
	"egabank/internal/money"
	"egabank/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type createAccountRequest struct {
	ClientID       string `json:"client_id"`
	Kind           string `json:"kind"`
	Number         string `json:"number,omitempty"`
	OverdraftLimit string `json:"overdraft_limit,omitempty"`
	InterestRate   string `json:"interest_rate,omitempty"`
}

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	input := services.CreateAccountRequest{
		ActorID:  actorID,
		ClientID: req.ClientID,
		Kind:     ledger.Kind(req.Kind),
		Number:   req.Number,
	}
	if req.OverdraftLimit != "" {
		limit, err := money.ParseMinor(req.OverdraftLimit)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid overdraft limit")
			return
		}
		input.OverdraftLimitMinor = limit
	}
	if req.InterestRate != "" {
		rate, err := decimal.NewFromString(req.InterestRate)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid interest rate")
			return
		}
		input.InterestRate = &rate
	}
	account, err := h.accounts.CreateAccount(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownClient):
			respondError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrInvalidKind),
			errors.Is(err, services.ErrInvalidOverdraft),
			errors.Is(err, services.ErrInvalidRate),
			errors.Is(err, services.ErrInvalidNumber):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrNumberInUse):
			respondError(w, http.StatusConflict, err.Error())
		default:
			respondLedgerError(w, err)
		}
		return
	}
	respondJSON(w, http.StatusCreated, toAccountResponse(account))
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.accounts.GetByNumber(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toAccountResponse(account))
}

func (h *Handler) ListClientAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.ListByClient(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, services.ErrUnknownClient) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to list accounts")
		return
	}
	responses := make([]accountResponse, 0, len(accounts))
	for _, account := range accounts {
		responses = append(responses, toAccountResponse(account))
	}
	respondJSON(w, http.StatusOK, responses)
}

func (h *Handler) DeactivateAccount(w http.ResponseWriter, r *http.Request) {
	h.setAccountActive(w, r, false)
}

func (h *Handler) ActivateAccount(w http.ResponseWriter, r *http.Request) {
	h.setAccountActive(w, r, true)
}

func (h *Handler) setAccountActive(w http.ResponseWriter, r *http.Request, active bool) {
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.accounts.SetActive(r.Context(), actorID, chi.URLParam(r, "number"), active); err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"active": active})
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.accounts.Delete(r.Context(), actorID, chi.URLParam(r, "number")); err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
