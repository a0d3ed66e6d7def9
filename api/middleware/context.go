package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Karethoth/noirion-backend/pkg/logger"
)

const actorIDHeader = "X-Actor-Id"

type actorIDKey struct{}

// ActorContext extracts the acting investigator's id from the request header
// and attaches it to the context and the request logger. Requests without one
// proceed anonymously.
func ActorContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(actorIDHeader))
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			actorID, err := uuid.Parse(raw)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), actorIDKey{}, actorID)
			if logg != nil {
				ctx = logg.WithActorID(ctx, actorID.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorIDFromContext returns the acting investigator's id, or nil for
// anonymous requests.
func ActorIDFromContext(ctx context.Context) *uuid.UUID {
	if actorID, ok := ctx.Value(actorIDKey{}).(uuid.UUID); ok {
		return &actorID
	}
	return nil
}
