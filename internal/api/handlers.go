package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/rxtech-lab/securities-trading/internal/types"
	"github.com/rxtech-lab/securities-trading/pkg/errors"
)

type errorBody struct {
	Code    errors.ErrorCode `json:"code"`
	Message string           `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if body != nil {
		json.NewEncoder(w).Encode(body)
	}
}

// writeError maps structured error codes onto HTTP statuses. Unknown-resource
// codes become 404, other client errors 400, everything else 500 with the
// internal detail withheld.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)

	switch {
	case code == errors.ErrCodeStockNotFound || code == errors.ErrCodeOrderNotFound:
		writeJSON(w, http.StatusNotFound, errorResponse{Error: errorBody{Code: code, Message: err.Error()}})
	case errors.IsClientError(err):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: errorBody{Code: code, Message: err.Error()}})
	default:
		s.logger.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: errorBody{Code: code, Message: "internal error"},
		})
	}
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req types.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidOrderRequest, "malformed request body", err))

		return
	}

	confirmation, err := s.admission.CreateOrder(r.Context(), req)
	if err != nil {
		s.writeError(w, err)

		return
	}

	writeJSON(w, http.StatusCreated, confirmation)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid order id", err))

		return
	}

	record, err := s.admission.GetOrder(r.Context(), orderID)
	if err != nil {
		s.writeError(w, err)

		return
	}

	if record.IsNone() {
		s.writeError(w, errors.Newf(errors.ErrCodeOrderNotFound, "order %d does not exist", orderID))

		return
	}

	writeJSON(w, http.StatusOK, record.Unwrap())
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	userID := optional.None[int64]()

	if raw := r.URL.Query().Get("user_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			s.writeError(w, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid user id", err))

			return
		}

		userID = optional.Some(parsed)
	}

	records, err := s.admission.ListOrders(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGetStock(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	stock, err := s.admission.GetStockInfo(r.Context(), symbol)
	if err != nil {
		s.writeError(w, err)

		return
	}

	if stock.IsNone() {
		s.writeError(w, errors.Newf(errors.ErrCodeStockNotFound, "stock %s does not exist", symbol))

		return
	}

	writeJSON(w, http.StatusOK, stock.Unwrap())
}

// handleGetQuote serves the latest quote. An unavailable upstream is not an
// error here; it maps to 503 so callers know to retry later.
func (s *Server) handleGetQuote(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	result, err := s.quotes.GetQuote(r.Context(), symbol)
	if err != nil {
		s.writeError(w, err)

		return
	}

	if result.IsNone() {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{
			Error: errorBody{
				Code:    errors.ErrCodeUpstreamUnreachable,
				Message: "quote temporarily unavailable",
			},
		})

		return
	}

	writeJSON(w, http.StatusOK, result.Unwrap())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
