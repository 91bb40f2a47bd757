package middleware

import (
	"log"
	"net/http"
	"runtime/debug"
)

// Recover converts panics into a logged generic 500 envelope. Internal
// details stay in the server log and never reach the client.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic: %v\n%s", rec, debug.Stack())
				writeError(w, http.StatusInternalServerError, "Server Error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
