package http

import (
	"net/http"
	"strconv"

	"fiscal/internal/bills"
)

type createBillRequest struct {
	Name    string      `json:"name"`
	Amount  amountField `json:"amount"`
	DueDate string      `json:"dueDate"`
	Every   string      `json:"every"`
}

func (s *Server) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	var req createBillRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	amount, err := req.Amount.money()
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	due, err := parseDateField("dueDate", req.DueDate)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	b, err := s.ledger.ScheduleBill(r.Context(), bills.Bill{
		Name:    sanitizeInput(req.Name),
		Amount:  amount,
		DueDate: due,
		Every:   bills.Frequency(sanitizeInput(req.Every)),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

type billList struct {
	Bills    []bills.Bill         `json:"bills"`
	Upcoming []bills.UpcomingBill `json:"upcoming"`
}

// handleListBills returns every bill plus the next occurrences relative to
// ?date=, capped by ?limit= (default from configuration).
func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	now, err := s.referenceDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit := s.upcoming
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	all := s.ledger.Bills()
	if all == nil {
		all = []bills.Bill{}
	}
	writeJSON(w, http.StatusOK, billList{Bills: all, Upcoming: bills.Upcoming(all, now, limit)})
}
