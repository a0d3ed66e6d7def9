package controllers

import (
	"net/http"

	"github.com/Karethoth/noirion-backend/api/responses"
	"github.com/Karethoth/noirion-backend/api/validators"
	"github.com/Karethoth/noirion-backend/internal/settings"
	pkgerrors "github.com/Karethoth/noirion-backend/pkg/errors"
	"github.com/Karethoth/noirion-backend/pkg/logger"
	"github.com/Karethoth/noirion-backend/pkg/types"
)

type setHomePayload struct {
	Home *types.LatLng `json:"home"`
}

// SettingsGet returns the project settings row, refreshing the home location
// first when auto-update is on.
func SettingsGet(svc *settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		row, err := svc.Get(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, row)
	}
}

// SettingsSetHome pins the home location manually; a null home clears it.
func SettingsSetHome(svc *settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload setHomePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if payload.Home != nil {
			if payload.Home.Lat < -90 || payload.Home.Lat > 90 || payload.Home.Lng < -180 || payload.Home.Lng > 180 {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "home coordinates out of range"))
				return
			}
		}

		row, err := svc.SetHome(ctx, payload.Home)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, row)
	}
}

// SettingsComputedHome returns the centroid of every known coordinate without
// persisting it.
func SettingsComputedHome(svc *settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		centroid, err := svc.ComputeHomeLocation(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"home": centroid})
	}
}
