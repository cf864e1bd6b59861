package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/diewo77/go-tailorshop/httpx"
	"github.com/diewo77/go-tailorshop/internal/apperrors"
	"github.com/diewo77/go-tailorshop/internal/logging"
	"github.com/diewo77/go-tailorshop/internal/services"
)

const (
	msgRetry            = "temporary failure, please retry"
	msgSequenceRetry    = "invoice numbering is temporarily unavailable, please retry"
	codeConcurrentWrite = "CONCURRENT_UPDATE"
)

var codeStatus = map[apperrors.Code]int{
	apperrors.CodeInvalidTransition:       http.StatusConflict,
	apperrors.CodeSequenceUnavailable:     http.StatusServiceUnavailable,
	apperrors.CodeInvalidDocumentInput:    http.StatusUnprocessableEntity,
	apperrors.CodeNotFound:                http.StatusNotFound,
	apperrors.CodeInvalidRequest:          http.StatusBadRequest,
	apperrors.CodeDuplicateInvoiceAttempt: http.StatusInternalServerError,
}

// writeError maps err onto an HTTP status and JSON error body. Unclassified
// errors are logged and reported as a generic retryable failure.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := logging.FromCtx(r.Context())

	if errors.Is(err, services.ErrConcurrentUpdate) {
		httpx.JSONError(w, http.StatusConflict, codeConcurrentWrite, err.Error(), nil)
		return
	}

	appErr, ok := apperrors.As(err)
	if !ok {
		log.Error("request failed", "err", err)
		httpx.JSONError(w, http.StatusInternalServerError, string(apperrors.CodeUnknown), msgRetry, nil)
		return
	}

	status, known := codeStatus[appErr.Code]
	if !known {
		status = http.StatusInternalServerError
	}
	switch appErr.Code {
	case apperrors.CodeSequenceUnavailable:
		log.Error("invoice sequence unavailable", "err", err)
		httpx.JSONError(w, status, string(appErr.Code), msgSequenceRetry, nil)
	case apperrors.CodeInvalidTransition, apperrors.CodeInvalidDocumentInput,
		apperrors.CodeNotFound, apperrors.CodeInvalidRequest:
		httpx.JSONError(w, status, string(appErr.Code), appErr.Message, appErr.Details)
	default:
		log.Error("request failed", "code", appErr.Code, "err", err)
		httpx.JSONError(w, status, string(appErr.Code), msgRetry, nil)
	}
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidRequest, "invalid JSON body", err)
	}
	return nil
}
