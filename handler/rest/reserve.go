package rest

import (
	"net/http"

	"lending/core"
	"lending/handler/param"
	"lending/handler/render"
	"lending/handler/views"
)

func reserveHandler(reserveStr core.IReserveStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reserve, e := reserveStr.Find(r.Context(), param.String(r, "id"))
		if e != nil {
			render.Err(w, e)
			return
		}

		view, e := views.ReserveView(reserve)
		if e != nil {
			render.Err(w, e)
			return
		}

		render.JSON(w, view)
	}
}
