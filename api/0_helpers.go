package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/fulldump/box"

	"github.com/fulldump/accountsdb/database"
)

type StatusGetter interface {
	GetStatus() string
}

func InterceptorUnavailable(db StatusGetter) box.I {
	return func(next box.H) box.H {
		return func(ctx context.Context) {

			status := db.GetStatus()
			if status == database.StatusOpening {
				box.GetResponse(ctx).WriteHeader(http.StatusServiceUnavailable)
				box.SetError(ctx, fmt.Errorf("temporary unavailable: opening"))
				return
			}
			if status == database.StatusClosing {
				box.GetResponse(ctx).WriteHeader(http.StatusServiceUnavailable)
				box.SetError(ctx, fmt.Errorf("temporary unavailable: closing"))
				return
			}
			next(ctx)
		}
	}
}

// PrettyErrorInterceptor renders the handler error, if any, as JSON. A status
// code already written by the handler is kept, 500 otherwise.
func PrettyErrorInterceptor(next box.H) box.H {
	return func(ctx context.Context) {

		c := box.GetBoxContext(ctx)
		w := &statusWriter{ResponseWriter: c.Response}
		c.Response = w

		next(ctx)

		err := box.GetError(ctx)
		if err == nil {
			return
		}

		if err == box.ErrResourceNotFound {
			writePrettyError(w, http.StatusNotFound, err,
				fmt.Sprintf("resource '%s' not found", box.GetRequest(ctx).URL.String()))
			return
		}

		if err == box.ErrMethodNotAllowed {
			writePrettyError(w, http.StatusMethodNotAllowed, err,
				fmt.Sprintf("method '%s' not allowed", box.GetRequest(ctx).Method))
			return
		}

		if _, ok := err.(*json.SyntaxError); ok {
			writePrettyError(w, http.StatusBadRequest, err, "Malformed JSON")
			return
		}

		writePrettyError(w, http.StatusInternalServerError, err, "Unexpected error")
	}
}

func writePrettyError(w *statusWriter, status int, err error, description string) {

	if w.status == 0 {
		w.WriteHeader(status)
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{
			"message":     err.Error(),
			"description": description,
		},
	})
}

// statusWriter remembers the first status code sent to the client.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
