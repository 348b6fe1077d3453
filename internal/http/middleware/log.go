package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JesseBremer/journal-mate/internal/logger"
)

// RequestLogger logs one line per request once the response is written.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			line := "%s %s %d %dB %s reqid=%s"
			args := []any{r.Method, r.URL.Path, status, ww.BytesWritten(), time.Since(start), chimw.GetReqID(r.Context())}
			if status >= http.StatusInternalServerError {
				logger.Errorf(line, args...)
				return
			}
			logger.Infof(line, args...)
		}()

		next.ServeHTTP(ww, r)
	})
}
