package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Karethoth/noirion-backend/api/middleware"
	"github.com/Karethoth/noirion-backend/api/responses"
	"github.com/Karethoth/noirion-backend/api/validators"
	"github.com/Karethoth/noirion-backend/internal/presence"
	"github.com/Karethoth/noirion-backend/pkg/logger"
	"github.com/Karethoth/noirion-backend/pkg/pagination"
)

type createPresencePayload struct {
	EntityID   string    `json:"entityId" validate:"required,uuid"`
	OccurredAt time.Time `json:"occurredAt" validate:"required"`
	Latitude   *float64  `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude  *float64  `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Notes      *string   `json:"notes"`
}

// PresenceCreate records an investigator-entered sighting.
func PresenceCreate(svc *presence.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload createPresencePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		entityID, err := validators.ParseUUID(payload.EntityID, "entityId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		row, err := svc.CreateManual(ctx, presence.CreateManualInput{
			EntityID:   entityID,
			OccurredAt: payload.OccurredAt,
			Latitude:   payload.Latitude,
			Longitude:  payload.Longitude,
			Notes:      payload.Notes,
		}, middleware.ActorIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, row)
	}
}

// PresenceDelete removes a manual presence; derived rows are refused.
func PresenceDelete(svc *presence.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		presenceID, err := validators.ParseUUID(chi.URLParam(r, "presenceID"), "presenceID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Delete(ctx, presenceID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// PresenceListForEntity returns one entity's presences newest first.
func PresenceListForEntity(svc *presence.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		entityID, err := validators.ParseUUID(chi.URLParam(r, "entityID"), "entityID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rows, err := svc.ListForEntity(ctx, entityID, limit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"presences": rows})
	}
}
