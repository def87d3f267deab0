package middleware

import (
	"fmt"
	"net/http"

	"github.com/angelmondragon/scancart-backend/api/responses"
	pkgerrors "github.com/angelmondragon/scancart-backend/pkg/errors"
	"github.com/angelmondragon/scancart-backend/pkg/logger"
)

// Recoverer turns a handler panic into an INTERNAL_ERROR envelope. The panic
// value and route ride on the context so the single request.error entry
// written by WriteError carries them.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
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

				ctx := r.Context()
				if logg != nil {
					ctx = logg.WithFields(ctx, map[string]any{
						"panic":  fmt.Sprint(rec),
						"method": r.Method,
						"route":  routePattern(r),
					})
				}
				err := pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("panic.recovered: %v", rec))
				responses.WriteError(ctx, logg, w, err)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
