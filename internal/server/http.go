package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/storylingo/storylingo/internal/common"
)

// maxRequestBytes caps request bodies; story prompts and vocabulary
// entries are small, so anything past this is garbage.
const maxRequestBytes = 1 << 20

// errorBody is the wire shape every handler uses for failures.
type errorBody struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// the status line is already gone out, nothing to do about encode errors
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorBody{Detail: detail})
}

// writeAppError maps err's sentinel chain onto an HTTP status and uses the
// AppError message as the detail when one is present.
func writeAppError(w http.ResponseWriter, err error) {
	detail := err.Error()
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		detail = appErr.Message
	}
	writeDetail(w, common.HTTPStatus(err), detail)
}

func decodeJSON(r *http.Request, v any) error {
	defer func() { _, _ = io.Copy(io.Discard, r.Body) }()
	return json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(v)
}

// emailLocalPart is the display-name fallback for accounts whose identity
// provider carries no name claim.
func emailLocalPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
