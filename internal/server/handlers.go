package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/agbru/cfcalc/internal/arith"
	"github.com/agbru/cfcalc/internal/cfrac"
	apperrors "github.com/agbru/cfcalc/internal/errors"
	"github.com/agbru/cfcalc/internal/logging"
	"github.com/agbru/cfcalc/internal/service"
	"github.com/agbru/cfcalc/pkg/models"
)

// DefaultAlgorithm is used by /calculate when no algo parameter is given.
const DefaultAlgorithm = "gosper"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, r, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.writeJSONResponse(w, http.StatusOK, HealthResponse{Status: "healthy", Timestamp: time.Now().Unix()})
}

func (s *Server) handleAlgorithms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, r, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.writeJSONResponse(w, http.StatusOK, AlgorithmsResponse{Algorithms: s.service.Algorithms()})
}

// handleCalculate evaluates "x op y". The expression is given either as
// x, y and op (default add) or as a single expr parameter. A positive
// precision also returns the rounded approximation.
func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, r, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	e, algo, precision, err := parseCalculateParams(r)
	if err != nil {
		s.writeParamError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeouts.RequestTimeout)
	defer cancel()

	start := time.Now()
	res, err := s.service.Calculate(ctx, algo, e, precision)
	duration := time.Since(start)

	status := http.StatusOK
	if err != nil {
		status = statusForError(err)
		switch status {
		case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
			s.writeErrorResponse(w, r, status, err.Error())
			return
		}
		s.logger.Error("calculation failed", err,
			logging.String("expression", e.String()),
			logging.String("algo", algo),
			logging.String("request_id", RequestID(r.Context())),
		)
	}
	s.writeJSONResponse(w, status, models.NewCalculationRecord(algo, e, precision, res, duration, err))
}

// parseCalculateParams extracts the expression, algorithm and precision of
// a /calculate request.
func parseCalculateParams(r *http.Request) (e arith.Expression, algo string, precision int, err error) {
	query := r.URL.Query()

	if raw := query.Get("expr"); raw != "" {
		e, err = arith.ParseExpression(raw)
		if err != nil {
			return e, "", 0, invalidParam("expr", raw, "Invalid 'expr' parameter: %v", err)
		}
	} else {
		x, err := ratParam(query.Get("x"), "x")
		if err != nil {
			return e, "", 0, err
		}
		y, err := ratParam(query.Get("y"), "y")
		if err != nil {
			return e, "", 0, err
		}
		opName := query.Get("op")
		if opName == "" {
			opName = cfrac.Add.String()
		}
		op, opErr := cfrac.ParseOp(opName)
		if opErr != nil {
			return e, "", 0, invalidParam("op", opName, "Invalid 'op' parameter: must be one of add, sub, mul, div")
		}
		e = arith.NewExpression(x, op, y)
	}

	algo = query.Get("algo")
	if algo == "" {
		algo = DefaultAlgorithm
	}

	precision, err = precisionParam(query.Get("precision"), 0)
	return e, algo, precision, err
}

// handleExpand returns the expansion and convergents of q.
func (s *Server) handleExpand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, r, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	q, err := ratParam(r.URL.Query().Get("q"), "q")
	if err != nil {
		s.writeParamError(w, r, err)
		return
	}
	cf, err := s.service.Expand(q)
	if err != nil {
		s.writeErrorResponse(w, r, statusForError(err), err.Error())
		return
	}
	s.writeJSONResponse(w, http.StatusOK, models.NewExpansionRecord(q, cf))
}

// handleRound returns q bounded to precision bits (default
// cfrac.DefaultPrecision).
func (s *Server) handleRound(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, r, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	query := r.URL.Query()
	q, err := ratParam(query.Get("q"), "q")
	if err != nil {
		s.writeParamError(w, r, err)
		return
	}
	precision, err := precisionParam(query.Get("precision"), cfrac.DefaultPrecision)
	if err != nil {
		s.writeParamError(w, r, err)
		return
	}
	rounded, err := s.service.Round(q, precision)
	if err != nil {
		s.writeErrorResponse(w, r, statusForError(err), err.Error())
		return
	}
	s.writeJSONResponse(w, http.StatusOK, models.NewRoundRecord(q, precision, rounded))
}

func ratParam(raw, name string) (*big.Rat, error) {
	if raw == "" {
		return nil, invalidParam(name, nil, "Missing '%s' parameter", name)
	}
	q, err := cfrac.ParseRat(raw)
	if err != nil {
		return nil, invalidParam(name, raw, "Invalid '%s' parameter: must be a fraction, a decimal or a continued fraction", name)
	}
	return q, nil
}

func precisionParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	p, err := strconv.Atoi(raw)
	if err != nil || p < 0 {
		return 0, invalidParam("precision", raw, "Invalid 'precision' parameter: must be a non-negative integer")
	}
	return p, nil
}

// statusForError maps evaluation errors to HTTP status codes.
func statusForError(err error) int {
	var unknown *arith.UnknownCalculatorError
	switch {
	case errors.Is(err, service.ErrOperandTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &unknown),
		errors.Is(err, arith.ErrInvalidExpression),
		errors.Is(err, cfrac.ErrSyntax):
		return http.StatusBadRequest
	case errors.Is(err, cfrac.ErrDivisionByZero):
		return http.StatusUnprocessableEntity
	case apperrors.IsContextError(err):
		if errors.Is(err, context.Canceled) {
			return http.StatusServiceUnavailable
		}
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// invalidParam rejects the query parameter field; the formatted message is
// returned to the client verbatim.
func invalidParam(field string, value any, format string, args ...any) error {
	return apperrors.NewValidationError(field, fmt.Sprintf(format, args...), value)
}

// writeParamError answers 400 for a rejected query parameter.
func (s *Server) writeParamError(w http.ResponseWriter, r *http.Request, err error) {
	resp := ErrorResponse{
		Error:     http.StatusText(http.StatusBadRequest),
		Message:   err.Error(),
		RequestID: RequestID(r.Context()),
	}
	var verr apperrors.ValidationError
	if errors.As(err, &verr) {
		resp.Message = verr.Message
		resp.Field = verr.Field
	}
	s.writeJSONResponse(w, http.StatusBadRequest, resp)
}

// writeJSONResponse writes data as JSON with the given status.
func (s *Server) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encoding JSON response", err)
	}
}

// writeErrorResponse writes a standardized error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	s.writeJSONResponse(w, statusCode, ErrorResponse{
		Error:     http.StatusText(statusCode),
		Message:   message,
		RequestID: RequestID(r.Context()),
	})
}

// writeError is used by middleware running before the server's logger is
// reachable.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:     http.StatusText(statusCode),
		Message:   message,
		RequestID: w.Header().Get(RequestIDHeader),
	})
}
