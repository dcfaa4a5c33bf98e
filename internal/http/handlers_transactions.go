package http

import (
	"fmt"
	"net/http"

	"hisab/internal/entry"
	"hisab/internal/services"
	"hisab/internal/storage"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]any{
		"transactions": transactionRecords(s.ledger.Transactions()),
		"notices":      nonNil(s.ledger.Notices()),
	}).Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	tx, err := s.ledger.Transaction(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(storage.TransactionRecordOf(tx)).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var in transactionInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	sess := s.ledger.NewEntry()
	if err := in.apply(sess); err != nil {
		writeError(w, r, err)
		return
	}
	tx, err := s.ledger.Save(r.Context(), sess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", fmt.Sprintf("/transactions/%d", tx.ID)).
		Body(storage.TransactionRecordOf(tx)).
		Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in transactionInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	sess, err := s.ledger.EditEntry(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := in.apply(sess); err != nil {
		writeError(w, r, err)
		return
	}
	tx, err := s.ledger.Save(r.Context(), sess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(storage.TransactionRecordOf(tx)).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := s.ledger.RemoveTransaction(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	f, q, err := parseHistoryQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(map[string]any{
		"groups": groupDTOs(s.ledger.History(f, q)),
	}).Write(w)
}

type suggestRequest struct {
	Text        string `json:"text"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	var in suggestRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	text := in.Text
	if text == "" {
		text = in.Name + " " + in.Description
	}
	NewJSONResponse().Body(map[string]any{
		"categories": categoryRecords(s.ledger.Suggest(sanitizeInput(text))),
	}).Write(w)
}

type amountRequest struct {
	Selections []services.Selection `json:"selections"`
}

func (s *Server) handleAmount(w http.ResponseWriter, r *http.Request) {
	var in amountRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	amount, err := s.ledger.Amount(in.Selections)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(map[string]any{
		"amount": amount.Round(2).InexactFloat64(),
		"text":   entry.AmountText(amount),
	}).Write(w)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
