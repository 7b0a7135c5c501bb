package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/kPratik07/Bank-referral-system/internal/account"
	"github.com/kPratik07/Bank-referral-system/internal/referral"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

type accountView struct {
	ID            int64  `json:"id"`
	IntroducerID  *int64 `json:"introducer_id"`
	BeneficiaryID *int64 `json:"beneficiary_id"`
}

type listedAccount struct {
	AccountID     int64  `json:"account_id"`
	IntroducerID  *int64 `json:"introducer_id"`
	BeneficiaryID *int64 `json:"beneficiary_id"`
}

type bulkResponse struct {
	Results []accountView `json:"results"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status string `json:"status"`
}

func viewOf(a account.Account) accountView {
	return accountView{
		ID:            a.ID,
		IntroducerID:  account.Ptr(a.IntroducerID),
		BeneficiaryID: account.Ptr(a.BeneficiaryID),
	}
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var raw account.RawItem
	if err := decodeJSON(w, r, &raw); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be a JSON object")
		return
	}

	created, err := s.svc.CreateAccount(r.Context(), raw)
	if err != nil {
		s.writeServiceError(w, r, err, singleStatus)
		return
	}
	writeJSON(w, http.StatusCreated, viewOf(created))
}

func (s *Server) handleBulk(w http.ResponseWriter, r *http.Request) {
	var raws []account.RawItem
	if err := decodeJSON(w, r, &raws); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be a non-empty JSON array")
		return
	}

	created, err := s.svc.CreateAccountsBulk(r.Context(), raws)
	if err != nil {
		s.writeServiceError(w, r, err, bulkStatus)
		return
	}

	resp := bulkResponse{Results: make([]accountView, len(created))}
	for i, a := range created {
		resp.Results[i] = viewOf(a)
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.svc.ListAccounts(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err, singleStatus)
		return
	}

	out := make([]listedAccount, len(accounts))
	for i, a := range accounts {
		out[i] = listedAccount{
			AccountID:     a.ID,
			IntroducerID:  account.Ptr(a.IntroducerID),
			BeneficiaryID: account.Ptr(a.BeneficiaryID),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health.Ping(r.Context()); err != nil {
			s.logger.Error("health check failed", "request_id", RequestID(r.Context()), "error", err)
			writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// singleStatus maps errors from single-account operations.
func singleStatus(re *referral.Error) int {
	switch re.Kind {
	case referral.KindValidation:
		return http.StatusBadRequest
	case referral.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// bulkStatus maps batch errors. Only an empty batch is the client's fault;
// any failing item aborts the whole batch as a server error.
func bulkStatus(re *referral.Error) int {
	if re.Kind == referral.KindValidation && re.Index == referral.NoIndex {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error, status func(*referral.Error) int) {
	var re *referral.Error
	if !errors.As(err, &re) {
		s.logger.Error("unexpected service error", "request_id", RequestID(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	msg := re.Message
	if re.Kind == referral.KindStorage {
		s.logger.Error("storage failure", "request_id", RequestID(r.Context()), "error", re.Err)
		msg = "internal server error"
	}
	if re.Index != referral.NoIndex {
		msg = fmt.Sprintf("batch rolled back: item %d: %s", re.Index, msg)
	}
	writeError(w, status(re), msg)
}

// decodeJSON reads one JSON value from the body. Numbers stay json.Number so
// that account ids are validated by account.ParseID, not float64 rounding.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
