package app

import (
	"time"
	middle "upwatch/internals/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func RegisterRoutes(c *Container) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middle.Logger(c.Logger))
	r.Use(middleware.Timeout(5 * time.Second))

	r.Get("/healthz", c.handler.Healthz)

	r.Route("/api/v1", func(v1 chi.Router) {
		if c.authMW != nil {
			v1.Use(c.authMW.Handle)
		}

		v1.Get("/status", c.handler.Status)
		v1.Get("/workers", c.handler.Workers)
		v1.Get("/items/{id}/status", c.handler.ItemStatus)
	})

	return r
}
