package hc

import (
	"net/http"
	"time"

	"lending/core"
	"lending/handler/render"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
)

// Handle handle hc request, reports uptime, version and the current slot
func Handle(ver string, slots core.ISlotService) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.NoCache)
	r.Handle("/", handle(ver, slots))
	return r
}

func handle(version string, slots core.ISlotService) http.HandlerFunc {
	b := time.Now()
	return func(w http.ResponseWriter, r *http.Request) {
		slot, err := slots.CurrentSlot(r.Context())
		if err != nil {
			render.Err(w, err)
			return
		}

		render.JSON(w, render.H{
			"uptime":  time.Since(b).Truncate(time.Millisecond).String(),
			"version": version,
			"slot":    slot,
		})
	}
}
