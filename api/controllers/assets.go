package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Karethoth/noirion-backend/api/middleware"
	"github.com/Karethoth/noirion-backend/api/responses"
	"github.com/Karethoth/noirion-backend/api/validators"
	"github.com/Karethoth/noirion-backend/internal/assets"
	pkgerrors "github.com/Karethoth/noirion-backend/pkg/errors"
	"github.com/Karethoth/noirion-backend/pkg/logger"
	"github.com/Karethoth/noirion-backend/pkg/pagination"
)

type createAssetPayload struct {
	FileName    string     `json:"fileName" validate:"required"`
	MimeType    string     `json:"mimeType" validate:"required"`
	SizeBytes   int64      `json:"sizeBytes" validate:"gte=0"`
	CapturedAt  *time.Time `json:"capturedAt"`
	Latitude    *float64   `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude   *float64   `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Altitude    *float64   `json:"altitude"`
	CameraMake  *string    `json:"cameraMake"`
	CameraModel *string    `json:"cameraModel"`
}

type addIgnorePayload struct {
	EntityID string `json:"entityId" validate:"required,uuid"`
}

// AssetCreate registers an uploaded image with its extracted metadata.
func AssetCreate(svc *assets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload createAssetPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		asset, err := svc.Create(ctx, assets.CreateAssetInput{
			UploaderID:  middleware.ActorIDFromContext(ctx),
			FileName:    payload.FileName,
			MimeType:    payload.MimeType,
			SizeBytes:   payload.SizeBytes,
			CapturedAt:  payload.CapturedAt,
			Latitude:    payload.Latitude,
			Longitude:   payload.Longitude,
			Altitude:    payload.Altitude,
			CameraMake:  payload.CameraMake,
			CameraModel: payload.CameraModel,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, asset)
	}
}

// AssetGet returns the asset with its override, effective metadata, and
// ignore list.
func AssetGet(svc *assets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		assetID, err := validators.ParseUUID(chi.URLParam(r, "assetID"), "assetID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		detail, err := svc.Get(ctx, assetID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, detail)
	}
}

// AssetList pages assets newest first behind an opaque cursor.
func AssetList(svc *assets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		cursor, err := pagination.ParseCursor(r.URL.Query().Get("cursor"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cursor is invalid"))
			return
		}

		rows, err := svc.List(ctx, limit, cursor)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		nextCursor := ""
		if len(rows) > limit {
			rows = rows[:limit]
			last := rows[len(rows)-1]
			nextCursor = pagination.EncodeCursor(pagination.Cursor{Time: last.CreatedAt, ID: last.ID})
		}

		responses.WriteSuccess(w, map[string]any{
			"assets":     rows,
			"nextCursor": nextCursor,
		})
	}
}

// AssetDelete soft-deletes the asset.
func AssetDelete(svc *assets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		assetID, err := validators.ParseUUID(chi.URLParam(r, "assetID"), "assetID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Delete(ctx, assetID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// AssetOverridePatch applies manual metadata corrections. Absent fields keep
// the stored value, explicit nulls clear it.
func AssetOverridePatch(svc *assets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		assetID, err := validators.ParseUUID(chi.URLParam(r, "assetID"), "assetID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var patch assets.OverridePatch
		if err := validators.DecodeJSONBody(r, &patch); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		detail, err := svc.ApplyOverridePatch(ctx, assetID, patch, middleware.ActorIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, detail)
	}
}

// AssetIgnoreAdd suppresses derived presences for an entity on this asset.
func AssetIgnoreAdd(svc *assets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		assetID, err := validators.ParseUUID(chi.URLParam(r, "assetID"), "assetID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload addIgnorePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		entityID, err := validators.ParseUUID(payload.EntityID, "entityId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.AddIgnore(ctx, assetID, entityID, middleware.ActorIDFromContext(ctx)); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"status": "ignored"})
	}
}

// AssetIgnoreRemove lifts the suppression again.
func AssetIgnoreRemove(svc *assets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		assetID, err := validators.ParseUUID(chi.URLParam(r, "assetID"), "assetID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		entityID, err := validators.ParseUUID(chi.URLParam(r, "entityID"), "entityID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.RemoveIgnore(ctx, assetID, entityID, middleware.ActorIDFromContext(ctx)); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}
