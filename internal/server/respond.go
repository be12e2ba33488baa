package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	svcErr "github.com/auralabs/aura-server/internal/errors"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps a domain error onto an HTTP status and a JSON body.
// 5xx causes are logged server-side but never echoed to the client.
func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	status := svcErr.HTTPStatus(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "err", err)
		msg = "internal error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return svcErr.ErrInvalidArgument
	}
	return nil
}
