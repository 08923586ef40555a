package container

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/samber/do"
	"github.com/serroba/url-mapper/internal/audit"
	"github.com/serroba/url-mapper/internal/handlers"
	"github.com/serroba/url-mapper/internal/health"
	"github.com/serroba/url-mapper/internal/middleware"
	"github.com/serroba/url-mapper/internal/shortener"
	"go.uber.org/zap"
)

// HTTPPackage provides the router and the huma API with every route registered.
func HTTPPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*chi.Mux, error) {
		logger := do.MustInvoke[*zap.Logger](i)

		router := chi.NewMux()
		router.Use(middleware.AccessLog(logger.Named("http")))

		return router, nil
	})

	do.Provide(i, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		router := do.MustInvoke[*chi.Mux](i)
		logger := do.MustInvoke[*zap.Logger](i)

		resolver, err := do.Invoke[*shortener.Resolver](i)
		if err != nil {
			return nil, err
		}

		events, err := do.Invoke[audit.Publishers](i)
		if err != nil {
			return nil, err
		}

		api := humachi.New(router, huma.DefaultConfig("URL Mapper", "1.0.0"))
		api.UseMiddleware(middleware.RequestMeta(api))

		handlers.RegisterRoutes(api, handlers.NewURLHandler(resolver, events, logger))
		health.RegisterRoutes(api, health.NewHandler(do.MustInvoke[Backend](i), redisChecker(i, opts)))

		return api, nil
	})
}

// redisChecker returns a checker only when something depends on Redis.
func redisChecker(i *do.Injector, opts *Options) health.Checker {
	if opts.CacheTTL <= 0 && !opts.Events {
		return nil
	}

	return health.NewRedisChecker(do.MustInvoke[*Redis](i).Client)
}
