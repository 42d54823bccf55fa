package handler

import (
	"errors"
	"net/http"

	"lending/core"
	"lending/handler/render"
	"lending/handler/rest"

	"github.com/go-chi/chi"
)

// Server server
type Server struct {
	cfg             *core.Config
	marketStore     core.IMarketStore
	reserveStore    core.IReserveStore
	obligationStore core.IObligationStore
}

// New new server function
func New(
	cfg *core.Config,
	marketStr core.IMarketStore,
	reserveStr core.IReserveStore,
	obligationStr core.IObligationStore,
) Server {
	return Server{
		cfg:             cfg,
		marketStore:     marketStr,
		reserveStore:    reserveStr,
		obligationStore: obligationStr,
	}
}

// HandleRestAPI handle restful apis
func (s Server) HandleRestAPI() http.Handler {
	r := chi.NewRouter()
	r.Use(resetRoutePath)
	r.Use(render.WrapResponse)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.NotFoundRequest(w, errors.New("not found"))
	})

	r.Mount("/", rest.Handle(s.marketStore, s.reserveStore, s.obligationStore))
	return r
}

func resetRoutePath(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if c := chi.RouteContext(ctx); c != nil {
			c.RoutePath = r.URL.Path
		}

		next.ServeHTTP(w, r)
	}

	return http.HandlerFunc(fn)
}
