package http

import (
	"net/http"

	"fiscal/internal/core"
)

type createTransactionRequest struct {
	Kind        string      `json:"kind"`
	Amount      amountField `json:"amount"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	Date        string      `json:"date"`
}

// candidate converts the request, reporting the first bad field in form order.
func (req createTransactionRequest) candidate() (core.Candidate, error) {
	kind := core.Kind(sanitizeInput(req.Kind))
	if !kind.Valid() {
		return core.Candidate{}, &core.ValidationError{Field: "kind", Err: core.ErrInvalidKind}
	}
	amount, err := req.Amount.money()
	if err != nil {
		return core.Candidate{}, err
	}
	date, err := parseDateField("date", req.Date)
	if err != nil {
		return core.Candidate{}, err
	}
	return core.Candidate{
		Kind:        kind,
		Amount:      amount,
		Category:    sanitizeInput(req.Category),
		Description: sanitizeInput(req.Description),
		Date:        date,
	}, nil
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := req.candidate()
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	tx, err := s.ledger.Record(r.Context(), c)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

type transactionList struct {
	Transactions []core.Transaction `json:"transactions"`
	Count        int                `json:"count"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs := s.ledger.Transactions()
	if txs == nil {
		txs = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, transactionList{Transactions: txs, Count: len(txs)})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[core.Kind][]string{
		core.Income:  core.CategoriesFor(core.Income),
		core.Expense: core.CategoriesFor(core.Expense),
	})
}
