package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/application/usecase"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/model"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/port"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// CheckoutHandler exposes the checkout use cases as JSON endpoints.
type CheckoutHandler struct {
	decide    *usecase.DecideTransaction
	rank      *usecase.RankCards
	approval  *usecase.EstimateApproval
	recommend *usecase.Recommend
	logger    *slog.Logger
}

// NewCheckoutHandler creates a new REST checkout handler.
func NewCheckoutHandler(
	decide *usecase.DecideTransaction,
	rank *usecase.RankCards,
	approval *usecase.EstimateApproval,
	recommend *usecase.Recommend,
	logger *slog.Logger,
) *CheckoutHandler {
	return &CheckoutHandler{
		decide:    decide,
		rank:      rank,
		approval:  approval,
		recommend: recommend,
		logger:    logger,
	}
}

// ErrorBody is the JSON error envelope.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a failed request.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Decide handles POST /v1/decisions.
func (h *CheckoutHandler) Decide(w http.ResponseWriter, r *http.Request) {
	serve(h, w, r, h.decide.Execute)
}

// RankCards handles POST /v1/cards/rank.
func (h *CheckoutHandler) RankCards(w http.ResponseWriter, r *http.Request) {
	serve(h, w, r, h.rank.Execute)
}

// EstimateApproval handles POST /v1/approval.
func (h *CheckoutHandler) EstimateApproval(w http.ResponseWriter, r *http.Request) {
	serve(h, w, r, h.approval.Execute)
}

// Recommend handles POST /v1/recommendations.
func (h *CheckoutHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	serve(h, w, r, h.recommend.Execute)
}

// serve decodes Req, runs the use case and writes its response or a mapped error.
func serve[Req, Resp any](h *CheckoutHandler, w http.ResponseWriter, r *http.Request, execute func(context.Context, Req) (Resp, error)) {
	var req Req
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed_request", err.Error())
		return
	}
	resp, err := execute(r.Context(), req)
	if err != nil {
		h.writeUseCaseError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// decodeBody reads one JSON value. An empty body decodes as the zero request.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func (h *CheckoutHandler) writeUseCaseError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidContext), errors.Is(err, model.ErrInvalidCard):
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
	case errors.Is(err, port.ErrCardNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		h.logger.Error("checkout request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorBody{Error: ErrorDetail{Code: code, Message: message}})
}
