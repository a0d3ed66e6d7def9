package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Karethoth/noirion-backend/api/middleware"
	"github.com/Karethoth/noirion-backend/api/responses"
	"github.com/Karethoth/noirion-backend/api/validators"
	"github.com/Karethoth/noirion-backend/internal/annotations"
	"github.com/Karethoth/noirion-backend/pkg/logger"
)

type createAnnotationPayload struct {
	AssetID string  `json:"assetId" validate:"required,uuid"`
	X       float64 `json:"x" validate:"gte=0,lte=1"`
	Y       float64 `json:"y" validate:"gte=0,lte=1"`
	Width   float64 `json:"width" validate:"gt=0,lte=1"`
	Height  float64 `json:"height" validate:"gt=0,lte=1"`
	Caption *string `json:"caption"`
}

type createAnnotationLinkPayload struct {
	EntityID   string   `json:"entityId" validate:"required,uuid"`
	Role       *string  `json:"role"`
	Confidence *float64 `json:"confidence" validate:"omitempty,gte=0,lte=1"`
	Notes      *string  `json:"notes"`
}

// AnnotationCreate places a region of interest on an asset.
func AnnotationCreate(svc *annotations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload createAnnotationPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		assetID, err := validators.ParseUUID(payload.AssetID, "assetId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		annotation, err := svc.Create(ctx, annotations.CreateAnnotationInput{
			AssetID: assetID,
			X:       payload.X,
			Y:       payload.Y,
			Width:   payload.Width,
			Height:  payload.Height,
			Caption: payload.Caption,
		}, middleware.ActorIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, annotation)
	}
}

func AnnotationGet(svc *annotations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		annotationID, err := validators.ParseUUID(chi.URLParam(r, "annotationID"), "annotationID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		annotation, err := svc.Get(ctx, annotationID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, annotation)
	}
}

// AnnotationListForAsset returns every annotation on one asset.
func AnnotationListForAsset(svc *annotations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		assetID, err := validators.ParseUUID(chi.URLParam(r, "assetID"), "assetID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rows, err := svc.ListForAsset(ctx, assetID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"annotations": rows})
	}
}

// AnnotationDelete removes the annotation, its links, and any derived
// presences no surviving link supports.
func AnnotationDelete(svc *annotations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		annotationID, err := validators.ParseUUID(chi.URLParam(r, "annotationID"), "annotationID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Delete(ctx, annotationID, middleware.ActorIDFromContext(ctx)); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// AnnotationLinkCreate identifies an entity inside the annotated region and
// triggers presence derivation for the pair.
func AnnotationLinkCreate(svc *annotations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		annotationID, err := validators.ParseUUID(chi.URLParam(r, "annotationID"), "annotationID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload createAnnotationLinkPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		entityID, err := validators.ParseUUID(payload.EntityID, "entityId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		confidence := 1.0
		if payload.Confidence != nil {
			confidence = *payload.Confidence
		}

		link, err := svc.CreateLink(ctx, annotations.CreateLinkInput{
			AnnotationID: annotationID,
			EntityID:     entityID,
			Role:         payload.Role,
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

func AnnotationLinkList(svc *annotations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		annotationID, err := validators.ParseUUID(chi.URLParam(r, "annotationID"), "annotationID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rows, err := svc.ListLinks(ctx, annotationID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"links": rows})
	}
}

// AnnotationLinkDelete unlinks the entity and cleans up the derived presence
// when no other annotation on the asset still supports it.
func AnnotationLinkDelete(svc *annotations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		annotationID, err := validators.ParseUUID(chi.URLParam(r, "annotationID"), "annotationID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		entityID, err := validators.ParseUUID(chi.URLParam(r, "entityID"), "entityID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.DeleteLink(ctx, annotationID, entityID, middleware.ActorIDFromContext(ctx)); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "unlinked"})
	}
}
