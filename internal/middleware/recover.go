package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"
)

// Recover turns a panic in any handler into a 500 envelope. The panic value
// is only sent to the client when dev is true.
func Recover(dev bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				err := fmt.Errorf("panic: %v", rec)
				zerolog.Ctx(r.Context()).Error().
					Err(err).
					Bytes("stack", debug.Stack()).
					Msg("recovered from panic")

				errText := "Something went wrong"
				if dev {
					errText = err.Error()
				}
				writeError(w, http.StatusInternalServerError, "Internal server error", errText)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
