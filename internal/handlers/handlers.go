package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"egabank/internal/ledger"
	"egabank/internal/money"
	"egabank/internal/services"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondLedgerError maps the engine's error taxonomy onto HTTP statuses.
// Unknown errors become a 500 without leaking internals.
func respondLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrSameAccountTransfer),
		errors.Is(err, ledger.ErrNotSavings),
		errors.Is(err, services.ErrDescriptionTooLong):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrAccountNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrInsufficientFunds):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ledger.ErrAccountInactive),
		errors.Is(err, ledger.ErrConcurrentModification),
		errors.Is(err, ledger.ErrDeletionBlocked):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ledger.ErrNumberGenerationFailed):
		respondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

type transactionResponse struct {
	ID           string  `json:"id"`
	Kind         string  `json:"kind"`
	Amount       string  `json:"amount"`
	OccurredAt   string  `json:"occurred_at"`
	Description  string  `json:"description,omitempty"`
	Counterparty *string `json:"counterparty_number,omitempty"`
}

func toTransactionResponse(record ledger.Transaction) transactionResponse {
	return transactionResponse{
		ID:           record.ID,
		Kind:         string(record.Kind),
		Amount:       money.FormatMinor(record.Amount),
		OccurredAt:   record.OccurredAt.Format(timeLayout),
		Description:  record.Description,
		Counterparty: record.CounterpartyNumber,
	}
}

func toTransactionResponses(records []ledger.Transaction) []transactionResponse {
	responses := make([]transactionResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, toTransactionResponse(record))
	}
	return responses
}

type accountResponse struct {
	Number         string `json:"number"`
	Kind           string `json:"kind"`
	Balance        string `json:"balance"`
	OverdraftLimit string `json:"overdraft_limit,omitempty"`
	InterestRate   string `json:"interest_rate,omitempty"`
	ClientID       string `json:"client_id"`
	Active         bool   `json:"active"`
	CreatedAt      string `json:"created_at"`
}

func toAccountResponse(account ledger.Account) accountResponse {
	response := accountResponse{
		Number:    account.Number,
		Kind:      string(account.Kind),
		Balance:   money.FormatMinor(account.Balance),
		ClientID:  account.ClientID,
		Active:    account.Active,
		CreatedAt: account.CreatedAt.Format(timeLayout),
	}
	switch account.Kind {
	case ledger.KindCurrent:
		response.OverdraftLimit = money.FormatMinor(account.OverdraftLimit)
	case ledger.KindSavings:
		response.InterestRate = account.InterestRate.String()
	}
	return response
}
