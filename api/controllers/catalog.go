package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/scancart-backend/api/responses"
	"github.com/angelmondragon/scancart-backend/api/validators"
	"github.com/angelmondragon/scancart-backend/internal/catalog"
	pkgerrors "github.com/angelmondragon/scancart-backend/pkg/errors"
	"github.com/angelmondragon/scancart-backend/pkg/logger"
)

// CatalogLookup resolves a code without touching the session or the cart.
// Misses and failures come back as sentinel products, never as errors.
func CatalogLookup(resolver catalog.Resolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if resolver == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog resolver unavailable"))
			return
		}

		code, err := validators.NormalizeCode(chi.URLParam(r, "code"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, resolver.Resolve(r.Context(), code))
	}
}
