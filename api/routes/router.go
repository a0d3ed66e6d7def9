package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Karethoth/noirion-backend/api/controllers"
	"github.com/Karethoth/noirion-backend/api/middleware"
	"github.com/Karethoth/noirion-backend/internal/annotations"
	"github.com/Karethoth/noirion-backend/internal/assets"
	"github.com/Karethoth/noirion-backend/internal/entities"
	"github.com/Karethoth/noirion-backend/internal/events"
	"github.com/Karethoth/noirion-backend/internal/interpolate"
	"github.com/Karethoth/noirion-backend/internal/presence"
	"github.com/Karethoth/noirion-backend/internal/settings"
	"github.com/Karethoth/noirion-backend/internal/timeline"
	"github.com/Karethoth/noirion-backend/pkg/config"
	"github.com/Karethoth/noirion-backend/pkg/db"
	"github.com/Karethoth/noirion-backend/pkg/logger"
	"github.com/Karethoth/noirion-backend/pkg/redis"
)

// Services bundles everything the router wires into handlers.
type Services struct {
	Assets      *assets.Service
	Annotations *annotations.Service
	Entities    *entities.Service
	Events      *events.Service
	Presences   *presence.Service
	Settings    *settings.Service
	Timeline    *timeline.Service
	Suggester   *interpolate.Suggester
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		middleware.ActorContext(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbClient, redisPinger(redisClient)))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if redisClient != nil {
			r.Use(middleware.Idempotency(redisClient, logg))
		}

		r.Route("/assets", func(r chi.Router) {
			r.Post("/", controllers.AssetCreate(svcs.Assets, logg))
			r.Get("/", controllers.AssetList(svcs.Assets, logg))
			r.Route("/{assetID}", func(r chi.Router) {
				r.Get("/", controllers.AssetGet(svcs.Assets, logg))
				r.Delete("/", controllers.AssetDelete(svcs.Assets, logg))
				r.Patch("/override", controllers.AssetOverridePatch(svcs.Assets, logg))
				r.Get("/annotations", controllers.AnnotationListForAsset(svcs.Annotations, logg))
				r.Post("/ignores", controllers.AssetIgnoreAdd(svcs.Assets, logg))
				r.Delete("/ignores/{entityID}", controllers.AssetIgnoreRemove(svcs.Assets, logg))
			})
		})

		r.Route("/annotations", func(r chi.Router) {
			r.Post("/", controllers.AnnotationCreate(svcs.Annotations, logg))
			r.Route("/{annotationID}", func(r chi.Router) {
				r.Get("/", controllers.AnnotationGet(svcs.Annotations, logg))
				r.Delete("/", controllers.AnnotationDelete(svcs.Annotations, logg))
				r.Post("/links", controllers.AnnotationLinkCreate(svcs.Annotations, logg))
				r.Get("/links", controllers.AnnotationLinkList(svcs.Annotations, logg))
				r.Delete("/links/{entityID}", controllers.AnnotationLinkDelete(svcs.Annotations, logg))
			})
		})

		r.Route("/entities", func(r chi.Router) {
			r.Post("/", controllers.EntityCreate(svcs.Entities, logg))
			r.Get("/", controllers.EntityList(svcs.Entities, logg))
			r.Route("/{entityID}", func(r chi.Router) {
				r.Get("/", controllers.EntityGet(svcs.Entities, logg))
				r.Patch("/", controllers.EntityUpdate(svcs.Entities, logg))
				r.Delete("/", controllers.EntityDelete(svcs.Entities, logg))
				r.Put("/attributes/{name}", controllers.EntityAttributeSet(svcs.Entities, logg))
				r.Get("/attributes", controllers.EntityAttributeList(svcs.Entities, logg))
				r.Delete("/attributes/{name}", controllers.EntityAttributeDelete(svcs.Entities, logg))
				r.Get("/links", controllers.EntityLinkList(svcs.Entities, logg))
				r.Get("/presences", controllers.PresenceListForEntity(svcs.Presences, logg))
				r.Get("/timeline", controllers.TimelineForEntity(svcs.Timeline, logg))
			})
		})

		r.Route("/entity-links", func(r chi.Router) {
			r.Post("/", controllers.EntityLinkCreate(svcs.Entities, logg))
			r.Delete("/{linkID}", controllers.EntityLinkDelete(svcs.Entities, logg))
		})

		r.Route("/events", func(r chi.Router) {
			r.Post("/", controllers.EventCreate(svcs.Events, logg))
			r.Get("/", controllers.EventList(svcs.Events, logg))
			r.Route("/{eventID}", func(r chi.Router) {
				r.Get("/", controllers.EventGet(svcs.Events, logg))
				r.Patch("/", controllers.EventUpdate(svcs.Events, logg))
				r.Delete("/", controllers.EventDelete(svcs.Events, logg))
			})
		})

		r.Route("/presences", func(r chi.Router) {
			r.Post("/", controllers.PresenceCreate(svcs.Presences, logg))
			r.Delete("/{presenceID}", controllers.PresenceDelete(svcs.Presences, logg))
		})

		r.Get("/interpolation/suggestions", controllers.SuggestionList(svcs.Suggester, logg))

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", controllers.SettingsGet(svcs.Settings, logg))
			r.Put("/home", controllers.SettingsSetHome(svcs.Settings, logg))
			r.Get("/home/computed", controllers.SettingsComputedHome(svcs.Settings, logg))
		})
	})

	return r
}

// redisPinger avoids handing the readiness check a typed nil when redis is
// not configured.
func redisPinger(client *redis.Client) interface {
	Ping(ctx context.Context) error
} {
	if client == nil {
		return nil
	}
	return client
}
