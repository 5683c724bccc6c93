package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/zidane0000/ai-interview-platform/api/apierror"
	"github.com/zidane0000/ai-interview-platform/utils"
)

// writeAPIError classifies err via apierror.FromCoordinator (unless it is
// already an *apierror.Error) and writes the structured payload spec §7
// promises interviewers ("the full structured error payload").
func writeAPIError(w http.ResponseWriter, err error) {
	var apiErr *apierror.Error
	if !errors.As(err, &apiErr) {
		apiErr = apierror.FromCoordinator(err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status())
	resp := ErrorResponseDTO{
		Error:    apiErr.Message,
		Kind:     string(apiErr.Kind),
		Degraded: apiErr.Degraded,
	}
	if encodeErr := json.NewEncoder(w).Encode(resp); encodeErr != nil {
		utils.Errorf("failed to encode error JSON: %v", encodeErr)
	}
}

const (
	ErrMsgMissingInterviewID = "missing interview ID"
	ErrMsgMissingJobID       = "missing job ID"
	ErrMsgMethodNotAllowed   = "Method Not Allowed"
)
