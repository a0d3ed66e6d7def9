package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Karethoth/noirion-backend/api/middleware"
	"github.com/Karethoth/noirion-backend/api/responses"
	"github.com/Karethoth/noirion-backend/api/validators"
	"github.com/Karethoth/noirion-backend/internal/entities"
	pkgerrors "github.com/Karethoth/noirion-backend/pkg/errors"
	"github.com/Karethoth/noirion-backend/pkg/logger"
	"github.com/Karethoth/noirion-backend/pkg/types"
)

type createEntityPayload struct {
	Kind  string  `json:"kind" validate:"required"`
	Name  string  `json:"name" validate:"required"`
	Notes *string `json:"notes"`
}

type setAttributePayload struct {
	Value types.JSONMap `json:"value" validate:"required"`
}

type createEntityLinkPayload struct {
	FromEntityID string   `json:"fromEntityId" validate:"required,uuid"`
	ToEntityID   string   `json:"toEntityId" validate:"required,uuid"`
	Kind         string   `json:"kind" validate:"required"`
	Confidence   *float64 `json:"confidence" validate:"omitempty,gte=0,lte=1"`
	Notes        *string  `json:"notes"`
}

func EntityCreate(svc *entities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload createEntityPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		entity, err := svc.Create(ctx, entities.CreateEntityInput{
			Kind:  payload.Kind,
			Name:  payload.Name,
			Notes: payload.Notes,
		}, middleware.ActorIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, entity)
	}
}

func EntityGet(svc *entities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		entityID, err := validators.ParseUUID(chi.URLParam(r, "entityID"), "entityID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		entity, err := svc.Get(ctx, entityID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, entity)
	}
}

// EntityList returns entities, optionally filtered by kind.
func EntityList(svc *entities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var kind *string
		if raw := strings.TrimSpace(r.URL.Query().Get("kind")); raw != "" {
			kind = &raw
		}

		rows, err := svc.List(ctx, kind)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"entities": rows})
	}
}

func EntityUpdate(svc *entities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		entityID, err := validators.ParseUUID(chi.URLParam(r, "entityID"), "entityID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var input entities.UpdateEntityInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		entity, err := svc.Update(ctx, entityID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, entity)
	}
}

// EntityDelete removes the entity and everything hanging off it: attributes,
// links in both directions, presences, and memberships.
func EntityDelete(svc *entities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		entityID, err := validators.ParseUUID(chi.URLParam(r, "entityID"), "entityID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Delete(ctx, entityID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// EntityAttributeSet upserts one named attribute document.
func EntityAttributeSet(svc *entities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		entityID, err := validators.ParseUUID(chi.URLParam(r, "entityID"), "entityID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		name := strings.TrimSpace(chi.URLParam(r, "name"))
		if name == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "attribute name is required"))
			return
		}

		var payload setAttributePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		attribute, err := svc.SetAttribute(ctx, entityID, name, payload.Value)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, attribute)
	}
}

func EntityAttributeList(svc *entities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		entityID, err := validators.ParseUUID(chi.URLParam(r, "entityID"), "entityID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rows, err := svc.ListAttributes(ctx, entityID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"attributes": rows})
	}
}

func EntityAttributeDelete(svc *entities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		entityID, err := validators.ParseUUID(chi.URLParam(r, "entityID"), "entityID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		name := strings.TrimSpace(chi.URLParam(r, "name"))
		if name == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "attribute name is required"))
			return
		}

		if err := svc.DeleteAttribute(ctx, entityID, name); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// EntityLinkCreate records a typed relationship between two entities.
func EntityLinkCreate(svc *entities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload createEntityLinkPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		fromID, err := validators.ParseUUID(payload.FromEntityID, "fromEntityId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		toID, err := validators.ParseUUID(payload.ToEntityID, "toEntityId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		confidence := 1.0
		if payload.Confidence != nil {
			confidence = *payload.Confidence
		}

		link, err := svc.CreateLink(ctx, entities.CreateLinkInput{
			FromEntityID: fromID,
			ToEntityID:   toID,
			Kind:         payload.Kind,
			Confidence:   confidence,
			Notes:        payload.Notes,
		}, middleware.ActorIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, link)
	}
}

// EntityLinkList returns the entity's links in both directions.
func EntityLinkList(svc *entities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		entityID, err := validators.ParseUUID(chi.URLParam(r, "entityID"), "entityID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rows, err := svc.ListLinks(ctx, entityID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"links": rows})
	}
}

func EntityLinkDelete(svc *entities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		linkID, err := validators.ParseUUID(chi.URLParam(r, "linkID"), "linkID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.DeleteLink(ctx, linkID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
