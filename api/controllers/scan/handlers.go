package scan

import (
	"context"
	"net/http"

	"github.com/angelmondragon/scancart-backend/api/responses"
	"github.com/angelmondragon/scancart-backend/api/validators"
	"github.com/angelmondragon/scancart-backend/internal/catalog"
	"github.com/angelmondragon/scancart-backend/internal/session"
	pkgerrors "github.com/angelmondragon/scancart-backend/pkg/errors"
	"github.com/angelmondragon/scancart-backend/pkg/logger"
)

// Service is the scan session surface exposed over HTTP.
type Service interface {
	Start(ctx context.Context) (session.State, error)
	Cancel(ctx context.Context) session.State
	HandleDecode(ctx context.Context, code string) (catalog.Product, bool)
	State() session.State
}

func ScanStart(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "scan session unavailable"))
			return
		}

		state, err := svc.Start(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, state)
	}
}

// ScanCancel is idempotent: cancelling an idle session returns the idle state.
func ScanCancel(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "scan session unavailable"))
			return
		}
		responses.WriteSuccess(w, svc.Cancel(r.Context()))
	}
}

// ScanDecode feeds one decoded code into the session. Codes arriving after
// the first, or with no session open, are reported as not accepted.
func ScanDecode(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "scan session unavailable"))
			return
		}

		var payload DecodeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		code, err := validators.NormalizeCode(payload.Code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, accepted := svc.HandleDecode(r.Context(), code)
		result := DecodeResult{Accepted: accepted, Session: svc.State()}
		if accepted {
			result.Candidate = &product
		}

		responses.WriteSuccess(w, result)
	}
}

func ScanState(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "scan session unavailable"))
			return
		}
		responses.WriteSuccess(w, svc.State())
	}
}
