package security

import "net/http"

// BodyLimit enforces a maximum request payload size. The audit endpoints
// take no request bodies at all, so the cap can be tight.
type BodyLimit struct {
	Max int64
}

// Middleware rejects oversized requests with HTTP 413 when the declared
// length exceeds the limit, and caps chunked bodies with a MaxBytesReader
// so a handler that does read can never buffer more than Max.
func (b BodyLimit) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if b.Max <= 0 || r.Body == nil {
			next.ServeHTTP(w, r)
			return
		}
		if r.ContentLength > b.Max {
			http.Error(w, "request entity too large", http.StatusRequestEntityTooLarge)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, b.Max)
		next.ServeHTTP(w, r)
	})
}
