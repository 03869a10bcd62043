package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/DanielPopoola/racing-academy-payments/internal/application"
	"github.com/DanielPopoola/racing-academy-payments/internal/interfaces/rest"
)

// Recovery turns a handler panic into a 500 INTERNAL_ERROR. When the handler
// had already started its response only the log line is written.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := record(w)

			defer func() {
				p := recover()
				if p == nil {
					return
				}
				if err, ok := p.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(p)
				}

				attrs := append(requestAttrs(r),
					"panic", p,
					"response_started", rec.wrote,
					"stack", string(debug.Stack()),
				)
				logger.ErrorContext(r.Context(), "panic recovered", attrs...)

				if !rec.wrote {
					rest.WriteError(rec, application.NewInternalError(fmt.Errorf("panic: %v", p)), logger)
				}
			}()

			next.ServeHTTP(rec, r)
		})
	}
}
