package httpapi

import (
	"encoding/json"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

// ErrorResponse is the body of every non-2xx answer that carries one.
type ErrorResponse struct {
	Error       string            `json:"error"`
	Description string            `json:"error_description,omitempty"`
	Fields      map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; an encoding failure cannot change the status.
	_ = json.NewEncoder(w).Encode(body)
}

// writeError answers with the status and text code carried by err. The
// message of an internal error never reaches the client.
func writeError(w http.ResponseWriter, err *goerrors.Error) {
	resp := ErrorResponse{Error: err.TextCode, Fields: err.ValidationMap()}
	if err.Category != goerrors.CategoryInternal {
		resp.Description = err.Message
	}
	writeJSON(w, statusOf(err), resp)
}

func statusOf(err *goerrors.Error) int {
	if err.Code != 0 {
		return err.Code
	}
	switch err.Category {
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func errNotFound() *goerrors.Error {
	return goerrors.New("transsaction not found", goerrors.CategoryNotFound).WithTextCode("not_found")
}

func errBadRequest(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryBadInput).WithTextCode("bad_request")
}

func errValidation(err error) *goerrors.Error {
	return goerrors.FromOzzoValidation(err, "invalid transsaction").WithTextCode("validation_error")
}

func errInternal(cause error) *goerrors.Error {
	if cause == nil {
		return goerrors.New("unexpected error", goerrors.CategoryInternal).WithTextCode("internal_error")
	}
	return goerrors.Wrap(cause, goerrors.CategoryInternal, "unexpected error").WithTextCode("internal_error")
}
