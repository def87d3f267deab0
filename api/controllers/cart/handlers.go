package cart

import (
	"context"
	"net/http"

	cartdto "github.com/angelmondragon/scancart-backend/api/controllers/cart/dto"
	"github.com/angelmondragon/scancart-backend/api/responses"
	"github.com/angelmondragon/scancart-backend/api/validators"
	cartsvc "github.com/angelmondragon/scancart-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/scancart-backend/pkg/errors"
	"github.com/angelmondragon/scancart-backend/pkg/logger"
)

// Service is the part of the cart store exposed over HTTP.
type Service interface {
	Snapshot() cartsvc.Snapshot
	Clear(ctx context.Context) cartsvc.Snapshot
	AdjustQuantity(ctx context.Context, index, delta int) (cartsvc.Snapshot, error)
}

// Confirmer moves the pending scan candidate into the cart.
type Confirmer interface {
	Confirm(ctx context.Context) (cartsvc.Snapshot, error)
}

// CartFetch returns the lines and running total.
func CartFetch(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		responses.WriteSuccess(w, NewCartView(svc.Snapshot()))
	}
}

func CartClear(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		responses.WriteSuccess(w, NewCartView(svc.Clear(r.Context())))
	}
}

// CartAdjustQuantity applies a +/- delta to the line at {index}. A line that
// drops to zero is removed.
func CartAdjustQuantity(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		index, err := validators.ParsePathInt(r, "index")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartdto.AdjustQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snap, err := svc.AdjustQuantity(r.Context(), index, *payload.Delta)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, NewCartView(snap))
	}
}

// CartConfirm adds the pending candidate to the cart.
func CartConfirm(confirmer Confirmer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if confirmer == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "scan session unavailable"))
			return
		}

		snap, err := confirmer.Confirm(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, NewCartView(snap))
	}
}
