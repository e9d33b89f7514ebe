package handlers

import (
	"encoding/json"
	"net/http"

	"egabank/internal/auth"
	"egabank/internal/middleware"
	"egabank/internal/services"
	"egabank/internal/websocket"

	"github.com/go-chi/chi/v5"
)

type operationRequest struct {
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req operationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amountMinor, err := parseAmountMinor(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	record, err := h.ledger.Deposit(r.Context(), services.OperationRequest{
		ActorID:       actorID,
		AccountNumber: chi.URLParam(r, "number"),
		AmountMinor:   amountMinor,
		Description:   req.Description,
	})
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toTransactionResponse(record))
}

func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req operationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amountMinor, err := parseAmountMinor(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	record, err := h.ledger.Withdraw(r.Context(), services.OperationRequest{
		ActorID:       actorID,
		AccountNumber: chi.URLParam(r, "number"),
		AmountMinor:   amountMinor,
		Description:   req.Description,
	})
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toTransactionResponse(record))
}

type transferRequest struct {
	SourceNumber string `json:"source_number"`
	DestNumber   string `json:"dest_number"`
	Amount       string `json:"amount"`
	Description  string `json:"description"`
}

func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.SourceNumber == "" || req.DestNumber == "" {
		respondError(w, http.StatusBadRequest, "source_number and dest_number are required")
		return
	}
	amountMinor, err := parseAmountMinor(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.ledger.Transfer(r.Context(), services.TransferRequest{
		ActorID:      actorID,
		SourceNumber: req.SourceNumber,
		DestNumber:   req.DestNumber,
		AmountMinor:  amountMinor,
		Description:  req.Description,
	})
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"outgoing": toTransactionResponse(result.Outgoing),
		"incoming": toTransactionResponse(result.Incoming),
	})
}

func (h *Handler) AccrueInterest(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	record, applied, err := h.ledger.AccrueInterest(r.Context(), services.AccrueInterestRequest{
		ActorID:       actorID,
		AccountNumber: chi.URLParam(r, "number"),
	})
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	if !applied {
		respondJSON(w, http.StatusOK, map[string]any{"applied": false})
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"applied":     true,
		"transaction": toTransactionResponse(record),
	})
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	records, err := h.ledger.History(r.Context(), chi.URLParam(r, "number"), from, to)
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toTransactionResponses(records))
}

func (h *Handler) ListAccountTransactions(w http.ResponseWriter, r *http.Request) {
	account, err := h.accounts.GetByNumber(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	records, err := h.lister.ListByAccount(r.Context(), account.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list transactions")
		return
	}
	respondJSON(w, http.StatusOK, toTransactionResponses(records))
}

func (h *Handler) WSBalances(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, http.StatusUnauthorized, "missing token")
		return
	}
	if _, err := auth.ParseToken(h.cfg.JWTSecret, token); err != nil {
		respondError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	clientID := r.URL.Query().Get("client_id")
	if clientID == "" {
		respondError(w, http.StatusBadRequest, "client_id is required")
		return
	}
	websocket.ServeWS(w, r, h.hub, clientID)
}
