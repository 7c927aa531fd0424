package handler

import (
	"bytes"
	"context"
	"ledger-api/common"
	"ledger-api/logger"
	"ledger-api/repository"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	RequestIDKey contextKey = "requestID"

	RequestIDHeader      = "X-Request-ID"
	IdempotencyKeyHeader = "Idempotency-Key"

	idempotencyTTL = 24 * time.Hour
	reservationTTL = time.Minute
)

// RequestIDFromContext returns the id assigned by RequestLogger, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// responseRecorder captures the status code, and the body when body is non-nil.
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if r.body != nil {
		r.body.Write(b)
	}
	return r.ResponseWriter.Write(b)
}

// RequestLogger tags each request with an X-Request-ID and logs its outcome.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)

		rec := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), RequestIDKey, requestID)))

		logger.Log.WithFields(logrus.Fields{
			"request_id":  requestID,
			"method":      r.Method,
			"path":        r.URL.Path,
			"status_code": rec.statusCode,
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("Request handled")
	})
}

// Recoverer turns a handler panic into a generic 500.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Log.WithFields(logrus.Fields{
					"request_id": RequestIDFromContext(r.Context()),
					"panic":      rec,
				}).Error("Recovered from panic")
				common.NewAppError(http.StatusInternalServerError, "Internal server error", nil).Send(w)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Idempotency replays the first non-5xx response recorded for an Idempotency-Key.
// Keys are scoped to method and path. While one request holds a key, concurrent
// requests with the same key get 409. A store failure lets the request through.
func Idempotency(store repository.IIdempotencyRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyKeyHeader)
			if key == "" || store == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			scoped := r.Method + " " + r.URL.Path + " " + key
			log := logger.Log.WithFields(logrus.Fields{
				"request_id":      RequestIDFromContext(ctx),
				"idempotency_key": key,
			})

			cached, err := store.Get(ctx, scoped)
			if err != nil {
				log.WithError(err).Error("Failed to read idempotency key")
				next.ServeHTTP(w, r)
				return
			}
			if cached != nil {
				replay(w, cached, log)
				return
			}

			reserved, err := store.Reserve(ctx, scoped, reservationTTL)
			if err != nil {
				log.WithError(err).Error("Failed to reserve idempotency key")
				next.ServeHTTP(w, r)
				return
			}
			if !reserved {
				// The holder may have finished between Get and Reserve.
				if cached, err := store.Get(ctx, scoped); err == nil && cached != nil {
					replay(w, cached, log)
					return
				}
				log.Info("Idempotency key already in flight")
				common.NewAppError(http.StatusConflict, "A request with this Idempotency-Key is in progress", nil).Send(w)
				return
			}
			defer func() {
				if err := store.Release(ctx, scoped); err != nil {
					log.WithError(err).Warn("Failed to release idempotency key")
				}
			}()

			rec := &responseRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
				body:           &bytes.Buffer{},
			}
			next.ServeHTTP(rec, r)

			// 5xx responses are left uncached so the client can retry.
			if rec.statusCode < http.StatusInternalServerError {
				err := store.Save(ctx, scoped, repository.CachedResponse{
					StatusCode: rec.statusCode,
					Body:       rec.body.Bytes(),
				}, idempotencyTTL)
				if err != nil {
					log.WithError(err).Error("Failed to save idempotency key")
				}
			}
		})
	}
}

func replay(w http.ResponseWriter, cached *repository.CachedResponse, log *logrus.Entry) {
	log.Info("Idempotency cache hit")
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Idempotency-Hit", "true")
	w.WriteHeader(cached.StatusCode)
	if _, err := w.Write(cached.Body); err != nil {
		log.WithError(err).Error("Failed to write cached response")
	}
}
