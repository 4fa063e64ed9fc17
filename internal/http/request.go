package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"fiscal/internal/core"
)

const maxBodyBytes = 64 << 10

var errMalformedBody = errors.New("malformed JSON body")

// decodeBody reads one JSON object into dst, rejecting unknown fields and
// trailing data.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data", errMalformedBody)
	}
	return nil
}

// amountField accepts a JSON number or string in decimal notation.
type amountField string

func (a *amountField) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*a = ""
		return nil
	}
	*a = amountField(strings.Trim(s, `"`))
	return nil
}

func (a amountField) money() (core.Money, error) {
	cents, err := core.ParseDecimalToCents(string(a))
	if err != nil {
		return core.Money{}, &core.ValidationError{Field: "amount", Err: err}
	}
	return core.Money{Cents: cents}, nil
}

func parseDateField(field, s string) (core.Date, error) {
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}, &core.ValidationError{Field: field, Err: err}
	}
	return d, nil
}

// referenceDate reads ?date=YYYY-MM-DD, defaulting to today.
func (s *Server) referenceDate(r *http.Request) (core.Date, error) {
	v := strings.TrimSpace(r.URL.Query().Get("date"))
	if v == "" {
		return s.today(), nil
	}
	return parseDateField("date", v)
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' {
			return -1
		}
		return r
	}, s))
}
