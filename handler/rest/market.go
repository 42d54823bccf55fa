package rest

import (
	"net/http"

	"lending/core"
	"lending/handler/param"
	"lending/handler/render"
	"lending/handler/views"

	"github.com/fox-one/pkg/logger"
)

func allMarketsHandler(marketStr core.IMarketStore, reserveStr core.IReserveStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := logger.FromContext(ctx)

		markets, e := marketStr.All(ctx)
		if e != nil {
			log.WithError(e).Errorln("list markets")
			render.Err(w, e)
			return
		}

		results := make([]views.Market, 0, len(markets))
		for _, m := range markets {
			reserves, e := reserveStr.ListByMarket(ctx, m.ID)
			if e != nil {
				render.Err(w, e)
				return
			}

			results = append(results, views.MarketView(m, reserves))
		}

		render.JSON(w, results)
	}
}

func marketHandler(marketStr core.IMarketStore, reserveStr core.IReserveStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		market, e := marketStr.Find(ctx, param.String(r, "id"))
		if e != nil {
			render.Err(w, e)
			return
		}

		reserves, e := reserveStr.ListByMarket(ctx, market.ID)
		if e != nil {
			render.Err(w, e)
			return
		}

		render.JSON(w, views.MarketView(market, reserves))
	}
}

func marketReservesHandler(marketStr core.IMarketStore, reserveStr core.IReserveStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		market, e := marketStr.Find(ctx, param.String(r, "id"))
		if e != nil {
			render.Err(w, e)
			return
		}

		reserves, e := reserveStr.ListByMarket(ctx, market.ID)
		if e != nil {
			render.Err(w, e)
			return
		}

		results := make([]views.Reserve, 0, len(reserves))
		for _, reserve := range reserves {
			view, e := views.ReserveView(reserve)
			if e != nil {
				render.Err(w, e)
				return
			}

			results = append(results, view)
		}

		render.JSON(w, results)
	}
}
