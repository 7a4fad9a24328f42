package middleware

import (
	"net/http"

	"github.com/example/tempo/internal/loadcache"
	"github.com/sirupsen/logrus"
)

// Middleware collapses concurrent identical GET requests into a single
// pass through the wrapped handler and serves the shared response to
// every caller. Non-GET requests pass straight through.
type Middleware struct {
	flight *loadcache.Flight
}

func New(f *loadcache.Flight) *Middleware { return &Middleware{flight: f} }

type recordedResponse struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

type responseRecorder struct {
	status int
	body   []byte
	header http.Header
}

func (r *responseRecorder) Header() http.Header { return r.header }

func (r *responseRecorder) WriteHeader(status int) { r.status = status }

func (r *responseRecorder) Write(p []byte) (int, error) {
	r.body = append(r.body, p...)
	return len(p), nil
}

func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}
		key := r.URL.RequestURI()
		v, err := m.flight.Load(key, func() (any, error) {
			rec := &responseRecorder{status: http.StatusOK, header: make(http.Header)}
			next.ServeHTTP(rec, r)
			return recordedResponse{Status: rec.status, Body: string(rec.body)}, nil
		})
		if err != nil {
			logrus.WithFields(logrus.Fields{"path": key, "err": err}).Error("coalesced load failed")
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		resp, ok := decodeRecorded(v)
		if !ok {
			logrus.WithField("path", key).Error("unexpected cached response shape")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(resp.Status)
		w.Write([]byte(resp.Body))
	})
}

// decodeRecorded accepts both the in-memory struct and the generic map a
// JSON-backed store hands back.
func decodeRecorded(v any) (recordedResponse, bool) {
	switch t := v.(type) {
	case recordedResponse:
		return t, true
	case map[string]any:
		status, sok := t["status"].(float64)
		body, bok := t["body"].(string)
		if !sok || !bok {
			return recordedResponse{}, false
		}
		return recordedResponse{Status: int(status), Body: body}, true
	default:
		return recordedResponse{}, false
	}
}
