package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/danielducuara/cashu-walletd/internal/apperror"
	"github.com/danielducuara/cashu-walletd/pkg/logger"

	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

type errorBody struct {
	Kind    string         `json:"kind"`
	Message string         `json:"message"`
	Params  map[string]any `json:"params,omitempty"`
}

// writeError maps an engine/store error to its HTTP status and a structured
// body. AppError carries its own status and kind; anything else is an
// unexpected failure mapped to 500/UNKNOWN.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		writeJSON(w, appErr.StatusCode, errorBody{Kind: string(appErr.Kind), Message: appErr.Message, Params: appErr.Params})
		return
	}

	logger.Error("unhandled error reaching http facade", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorBody{Kind: string(apperror.KindUnknown), Message: "internal error"})
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return apperror.Validation("missing request body")
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return apperror.Validation("invalid request body").Wrap(err)
	}
	return nil
}
