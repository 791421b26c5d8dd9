package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/target/jobdispatch/internal/domain/ref"
	apperrors "github.com/target/jobdispatch/internal/errors"
)

// statusClientClosedRequest is the de facto status for requests abandoned by the client.
const statusClientClosedRequest = 499

// DecodeJSON decodes JSON from the request body into the destination and handles errors.
// Returns true if successful, false if there was an error (error response already written).
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	return decodeJSON(w, r, dst, false)
}

// DecodeOptionalJSON is DecodeJSON for endpoints whose body may be omitted.
func DecodeOptionalJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	return decodeJSON(w, r, dst, true)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, optional bool) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return true
		}
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_json", Err: err})
		return false
	}

	return true
}

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		// Response writer errors (e.g., client disconnect) can't be recovered from here.
		return
	}
}

// ErrorParams groups parameters for WriteError.
type ErrorParams struct {
	Code    int
	ErrCode string
	Err     error
	Field   string
}

// WriteError writes a JSON error response using ErrorParams.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	body := map[string]string{"error": p.ErrCode, "message": p.Err.Error()}
	if p.Field != "" {
		body["field"] = p.Field
	}
	WriteJSON(w, p.Code, body)
}

var appErrorStatus = map[apperrors.ErrorCode]int{
	apperrors.ErrCodeNotFound:    http.StatusNotFound,
	apperrors.ErrCodeConflict:    http.StatusConflict,
	apperrors.ErrCodeValidation:  http.StatusBadRequest,
	apperrors.ErrCodeForeignKey:  http.StatusConflict,
	apperrors.ErrCodeUnavailable: http.StatusServiceUnavailable,
	apperrors.ErrCodeTimeout:     http.StatusGatewayTimeout,
	apperrors.ErrCodeCanceled:    statusClientClosedRequest,
	apperrors.ErrCodeInternal:    http.StatusInternalServerError,
}

// WriteServiceError maps a service error to a JSON error response. Application errors keep
// their code and message; anything else is reported as an internal error without details.
func WriteServiceError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		status, ok := appErrorStatus[appErr.Code]
		if !ok {
			status = http.StatusInternalServerError
		}
		WriteError(w, ErrorParams{
			Code:    status,
			ErrCode: string(appErr.Code),
			Err:     errors.New(appErr.Message),
			Field:   appErr.Field,
		})
		return
	}

	switch {
	case errors.Is(err, ref.ErrInvalidPrefix), errors.Is(err, ref.ErrInvalidRef):
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: string(apperrors.ErrCodeValidation), Err: err})
	case errors.Is(err, ref.ErrCounterExhausted):
		WriteError(w, ErrorParams{
			Code:    http.StatusServiceUnavailable,
			ErrCode: "ref_counter_exhausted",
			Err:     errors.New("reference counter exhausted"),
		})
	default:
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: string(apperrors.ErrCodeInternal),
			Err:     errors.New("internal error"),
		})
	}
}
