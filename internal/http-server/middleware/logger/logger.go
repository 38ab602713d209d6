package logger

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// New журнал запросов: уровень зависит от статуса ответа
func New(log *zap.Logger) func(next http.Handler) http.Handler {
	log = log.With(zap.String("component", "middleware/logger"))

	log.Info("Logger middleware enabled")

	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}

				fields := []zap.Field{
					zap.Int("status", status),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("query", r.URL.RawQuery),
					zap.String("remote_addr", r.RemoteAddr),
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("latency", time.Since(start)),
				}

				switch {
				case status >= http.StatusInternalServerError:
					log.Error("Request failed", fields...)
				case status >= http.StatusBadRequest:
					log.Warn("Client error", fields...)
				default:
					log.Info("Request completed", fields...)
				}
			}()

			next.ServeHTTP(ww, r)
		}

		return http.HandlerFunc(fn)
	}
}
