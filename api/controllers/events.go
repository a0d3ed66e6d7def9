package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Karethoth/noirion-backend/api/middleware"
	"github.com/Karethoth/noirion-backend/api/responses"
	"github.com/Karethoth/noirion-backend/api/validators"
	"github.com/Karethoth/noirion-backend/internal/events"
	"github.com/Karethoth/noirion-backend/pkg/logger"
	"github.com/Karethoth/noirion-backend/pkg/pagination"
)

type createEventPayload struct {
	Title      string    `json:"title" validate:"required"`
	EntityID   *string   `json:"entityId" validate:"omitempty,uuid"`
	OccurredAt time.Time `json:"occurredAt" validate:"required"`
	Latitude   *float64  `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude  *float64  `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Notes      *string   `json:"notes"`
}

func EventCreate(svc *events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload createEventPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var entityID *uuid.UUID
		if payload.EntityID != nil {
			parsed, err := validators.ParseUUID(*payload.EntityID, "entityId")
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			entityID = &parsed
		}

		event, err := svc.Create(ctx, events.CreateEventInput{
			Title:      payload.Title,
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

		responses.WriteSuccessStatus(w, http.StatusCreated, event)
	}
}

func EventGet(svc *events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		eventID, err := validators.ParseUUID(chi.URLParam(r, "eventID"), "eventID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		event, err := svc.Get(ctx, eventID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, event)
	}
}

func EventList(svc *events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rows, err := svc.List(ctx, limit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"events": rows})
	}
}

// EventUpdate applies a three-state patch; title and time cannot be cleared.
func EventUpdate(svc *events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		eventID, err := validators.ParseUUID(chi.URLParam(r, "eventID"), "eventID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var input events.UpdateEventInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		event, err := svc.Update(ctx, eventID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, event)
	}
}

func EventDelete(svc *events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		eventID, err := validators.ParseUUID(chi.URLParam(r, "eventID"), "eventID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Delete(ctx, eventID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
