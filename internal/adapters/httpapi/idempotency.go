package httpapi

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/burhani-guards/guards-api/internal/ports/out/clock"
	"github.com/burhani-guards/guards-api/internal/ports/out/idempotency"
)

const (
	headerIdempotencyKey = "Idempotency-Key"
	headerReplayed       = "Idempotent-Replayed"
)

// Idempotent replays the stored 2xx response when a create is retried with the same
// Idempotency-Key and payload, and rejects the key with 409 when the payload differs.
// Requests without the header, or without an identity, pass straight through.
func Idempotent(store idempotency.Store, clk clock.Clock, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(headerIdempotencyKey)
			id, ok := IdentityFromContext(r.Context())
			if key == "" || !ok {
				next.ServeHTTP(w, r)
				return
			}

			raw, err := io.ReadAll(io.LimitReader(r.Body, maxJSONBody+1))
			if err != nil {
				writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "unreadable request body", nil)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(raw))

			ctx := r.Context()
			fp := idempotency.Fingerprint{
				Key:      idempotency.Key(key),
				Actor:    fmt.Sprintf("%s:%d", id.Kind, id.ID),
				Method:   r.Method,
				Route:    r.URL.Path,
				BodyHash: hashBody(raw),
			}

			if meta, ok, err := store.Get(ctx, fp.Meta()); err != nil {
				writeAppError(w, r, log, err)
				return
			} else if ok && string(meta.Body) != fp.BodyHash {
				writeError(w, r, http.StatusConflict, "IDEMPOTENCY_KEY_REUSE", "idempotency key reuse with different payload", nil)
				return
			}
			if rec, ok, err := store.Get(ctx, fp); err != nil {
				writeAppError(w, r, log, err)
				return
			} else if ok {
				w.Header().Set("Content-Type", rec.ContentType)
				w.Header().Set(headerReplayed, "true")
				w.WriteHeader(rec.StatusCode)
				_, _ = w.Write(rec.Body)
				return
			}

			var buf bytes.Buffer
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Tee(&buf)
			next.ServeHTTP(ww, r)

			if ww.Status() < 200 || ww.Status() > 299 {
				return
			}
			remember(ctx, store, clk, log, fp, idempotency.Record{
				StatusCode:  ww.Status(),
				ContentType: ww.Header().Get("Content-Type"),
				Body:        buf.Bytes(),
			})
		})
	}
}

// remember stores the response and then the key's payload hash. Failed creates store nothing, so a
// corrected retry under the same key is accepted.
func remember(ctx context.Context, store idempotency.Store, clk clock.Clock, log *slog.Logger, fp idempotency.Fingerprint, rec idempotency.Record) {
	now := clk.Now()
	rec.CreatedAt = now
	if err := store.Put(ctx, fp, rec); err != nil {
		log.WarnContext(ctx, "idempotency record not stored", "error", err)
		return
	}
	if err := store.Put(ctx, fp.Meta(), idempotency.Record{
		ContentType: "text/plain",
		Body:        []byte(fp.BodyHash),
		CreatedAt:   now,
	}); err != nil {
		log.WarnContext(ctx, "idempotency record not stored", "error", err)
	}
}

// hashBody hashes the canonical JSON form of raw so key order and whitespace do not matter.
// Bodies that are not JSON are hashed as sent.
func hashBody(raw []byte) string {
	var v any
	if err := json.Unmarshal(raw, &v); err == nil {
		if canon, err := json.Marshal(v); err == nil {
			raw = canon
		}
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
