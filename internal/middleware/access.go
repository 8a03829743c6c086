// internal/middleware/access.go
//
// Access-log middleware.
//
/*
Context
--------
Logs one DEBUG line per request through the global zap logger, after the
handler returns:

  • method, path, and raw query
  • status code and response size
  • wall-clock duration
  • client address

Requests slower than SlowRequest are promoted to WARN.  The wrapper uses
chi's WrapResponseWriter, so Flush and Hijack still reach the real writer.
*/
package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// SlowRequest is the duration above which a request is logged at WARN.
const SlowRequest = 2 * time.Second

// AccessLog wraps next and logs each completed request.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		log := zap.S().Debugw
		if elapsed > SlowRequest {
			log = zap.S().Warnw
		}
		log("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"raw_query", r.URL.RawQuery,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", elapsed,
			"remote", r.RemoteAddr,
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}
