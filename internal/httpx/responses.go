package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"librarycat/internal/apperr"

	"go.uber.org/zap"
)

type SuccessResponse struct {
	Data interface{} `json:"data"`
}

type ErrorResponse struct {
	Error ErrorResponseBody `json:"error"`
}

type ErrorResponseBody struct {
	Description string        `json:"description"`
	Details     []ErrorDetail `json:"details,omitempty"`
}

type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

func JSONSuccess(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, SuccessResponse{Data: data})
}

func JSONSuccessCreated(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusCreated, SuccessResponse{Data: data})
}

func JSONError(w http.ResponseWriter, statusCode int, description string, details []ErrorDetail) {
	writeJSON(w, statusCode, ErrorResponse{
		Error: ErrorResponseBody{
			Description: description,
			Details:     details,
		},
	})
}

// WriteError converts err into the error envelope. Coded errors keep their
// message and status; anything else is logged and reported generically.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	log := LoggerFrom(r)
	var coded *apperr.Error
	if errors.As(err, &coded) && coded.Code != apperr.CodePersistence {
		log.Info("request failed",
			zap.String("code", string(coded.Code)),
			zap.Error(err),
		)
	} else {
		log.Error("request failed", zap.Error(err))
	}
	JSONError(w, apperr.StatusOf(err), apperr.Describe(err), nil)
}

// DecodeJSON reads the request body into dst.
func DecodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Validation("Invalid request body").WithCause(err)
	}
	return nil
}
