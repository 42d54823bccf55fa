package rest

import (
	"net/http"

	"lending/core"
	"lending/handler/param"
	"lending/handler/render"
	"lending/handler/views"
)

func obligationHandler(obligationStr core.IObligationStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		obligation, e := obligationStr.Find(r.Context(), param.String(r, "id"))
		if e != nil {
			render.Err(w, e)
			return
		}

		render.JSON(w, views.ObligationView(obligation))
	}
}

// response obligations of an owner, optionally in one market
func obligationsHandler(obligationStr core.IObligationStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Owner    string `json:"owner" valid:"required"`
			MarketID string `json:"market_id" valid:"uuid,optional"`
		}

		if e := param.Binding(r, &params); e != nil {
			render.BadRequest(w, e)
			return
		}

		obligations, e := obligationStr.ListByOwner(r.Context(), params.MarketID, params.Owner)
		if e != nil {
			render.Err(w, e)
			return
		}

		results := make([]views.Obligation, 0, len(obligations))
		for _, o := range obligations {
			results = append(results, views.ObligationView(o))
		}

		render.JSON(w, results)
	}
}
