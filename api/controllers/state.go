package controllers

import (
	"net/http"

	cartcontrollers "github.com/angelmondragon/scancart-backend/api/controllers/cart"
	cartdto "github.com/angelmondragon/scancart-backend/api/controllers/cart/dto"
	"github.com/angelmondragon/scancart-backend/api/responses"
	"github.com/angelmondragon/scancart-backend/internal/cart"
	"github.com/angelmondragon/scancart-backend/internal/session"
	pkgerrors "github.com/angelmondragon/scancart-backend/pkg/errors"
	"github.com/angelmondragon/scancart-backend/pkg/logger"
)

type sessionStater interface {
	State() session.State
}

type cartSnapshotter interface {
	Snapshot() cart.Snapshot
}

// AppStateView is everything the UI renders in one read.
type AppStateView struct {
	Session session.State `json:"session"`
	Cart    cartdto.Cart  `json:"cart"`
}

func AppState(sessions sessionStater, carts cartSnapshotter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sessions == nil || carts == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "state unavailable"))
			return
		}
		responses.WriteSuccess(w, AppStateView{
			Session: sessions.State(),
			Cart:    cartcontrollers.NewCartView(carts.Snapshot()),
		})
	}
}
