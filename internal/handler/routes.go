package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/trip-itinerary/internal/middleware"
)

// Routes returns the API router. Everything except /healthz and
// /openapi.yaml requires the X-User-ID header.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser)

		r.Route("/trips", func(r chi.Router) {
			r.Post("/", s.CreateTrip)
			r.Get("/", s.ListTrips)
			r.Route("/{tripID}", func(r chi.Router) {
				r.Get("/", s.GetTrip)
				r.Patch("/", s.UpdateTrip)
				r.Delete("/", s.DeleteTrip)
				r.Get("/export", s.ExportTrip)
				r.Post("/confirmations", s.LinkConfirmations)

				r.Route("/days/{day}", func(r chi.Router) {
					r.Post("/activities", s.AddActivity)
					r.Put("/activities/{activityID}", s.UpdateActivity)
					r.Post("/inspirations", s.ArrangeInspiration)
					r.Post("/regenerate", s.RegenerateDay)
					r.Get("/history", s.GetDayHistory)
					r.Post("/rollback", s.RollbackDay)
				})
			})
		})

		r.Route("/confirmations", func(r chi.Router) {
			r.Post("/", s.CreateConfirmation)
			r.Get("/", s.ListConfirmations)
			r.Get("/{confirmationID}", s.GetConfirmation)
			r.Delete("/{confirmationID}", s.DeleteConfirmation)
		})

		r.Route("/inspirations", func(r chi.Router) {
			r.Post("/", s.CreateInspiration)
			r.Get("/", s.ListInspirations)
			r.Get("/{inspirationID}", s.GetInspiration)
		})
	})
	return r
}
