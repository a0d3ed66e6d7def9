package controllers

import (
	"net/http"

	"github.com/Karethoth/noirion-backend/api/responses"
	"github.com/Karethoth/noirion-backend/api/validators"
	"github.com/Karethoth/noirion-backend/internal/interpolate"
	"github.com/Karethoth/noirion-backend/pkg/logger"
)

// SuggestionList runs the interpolation pass and returns candidate presences.
// windowMinutes widens or narrows the bracketing window within the configured
// bounds; suggestions are never persisted.
func SuggestionList(suggester *interpolate.Suggester, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		requested, err := validators.ParseQueryInt(r, "windowMinutes", 0, 0, 7*24*60)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		window := suggester.Window(requested)
		suggestions, err := suggester.Suggest(ctx, window)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"windowMinutes": int(window.Minutes()),
			"suggestions":   suggestions,
		})
	}
}
