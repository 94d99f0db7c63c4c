package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/clinicflow/practice/pkg/billing"
	"github.com/clinicflow/practice/pkg/jwt"
	"github.com/clinicflow/practice/pkg/logger"
)

type planResponse struct {
	Key        string `json:"key"`
	Name       string `json:"name"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
	PeriodDays int    `json:"period_days"`
}

type checkoutRequest struct {
	Plan       string `json:"plan" validate:"required"`
	Email      string `json:"email,omitempty" validate:"omitempty,email"`
	SuccessURL string `json:"success_url,omitempty" validate:"omitempty,url"`
}

type checkoutResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type paymentResponse struct {
	ID             uuid.UUID  `json:"id"`
	SubscriptionID *uuid.UUID `json:"subscription_id"`
	Type           string     `json:"type"`
	Amount         int64      `json:"amount"`
	PaidAt         time.Time  `json:"paid_at"`
	Method         string     `json:"method"`
	Notes          *string    `json:"notes,omitempty"`
	Reference      *string    `json:"reference,omitempty"`
}

func (a *API) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans := a.deps.Catalog.Plans()
	out := make([]planResponse, 0, len(plans))
	for _, p := range plans {
		days := p.PeriodDays
		if days == 0 {
			days = billing.DefaultPeriodDays
		}
		out = append(out, planResponse{
			Key:        p.Key,
			Name:       p.Name,
			Amount:     p.Amount,
			Currency:   p.Currency,
			PeriodDays: days,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleCheckout starts a hosted checkout for a catalog plan. Clients name the
// plan key; provider price ids never cross the API boundary.
func (a *API) handleCheckout(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwt.GetClaims(r.Context())
	if !ok {
		a.writeError(w, r, ErrUnauthenticated)
		return
	}
	userID, err := claims.UserID()
	if err != nil {
		a.writeError(w, r, errors.Join(ErrUnauthenticated, err))
		return
	}

	var req checkoutRequest
	if err := a.decode(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	plan, err := a.deps.Catalog.Plan(req.Plan)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	session, err := a.deps.Provider.CreateCheckoutSession(r.Context(), billing.CheckoutParams{
		ProfessionalID: claims.ProfessionalID,
		UserID:         userID,
		PriceID:        plan.PriceID,
		Email:          req.Email,
		SuccessURL:     req.SuccessURL,
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	a.log.InfoContext(r.Context(), "checkout session created",
		logger.ProfessionalID(claims.ProfessionalID),
		logger.UserID(userID),
		slog.String("plan", plan.Key),
	)
	writeJSON(w, http.StatusCreated, checkoutResponse{ID: session.ID, URL: session.URL})
}

func (a *API) handleListPayments(w http.ResponseWriter, r *http.Request) {
	if a.deps.Payments == nil {
		writeJSONError(w, http.StatusNotFound, "not_found", "route not found")
		return
	}

	professionalID, err := jwt.ProfessionalIDFromRequest(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	payments, err := a.deps.Payments.ListByProfessional(r.Context(), professionalID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	out := make([]paymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, paymentResponse{
			ID:             p.ID,
			SubscriptionID: p.SubscriptionID,
			Type:           string(p.Type),
			Amount:         p.Amount,
			PaidAt:         p.PaidAt,
			Method:         p.Method,
			Notes:          p.Notes,
			Reference:      p.Reference,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleWebhook verifies and applies one provider delivery. Any non-2xx answer
// makes the provider redeliver, so only persistence failures return 5xx.
func (a *API) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, a.cfg.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.writeError(w, r, ErrRequestTooLarge)
			return
		}
		a.writeError(w, r, errors.Join(ErrInvalidRequestBody, err))
		return
	}

	event, err := a.deps.Provider.VerifyAndNormalizeEvent(r.Context(), body, r.Header.Get(billing.PaddleSignatureHeader))
	if err != nil {
		a.log.WarnContext(r.Context(), "webhook rejected",
			logger.Provider(a.deps.Provider.Name()),
			logger.Error(err),
		)
		a.writeError(w, r, err)
		return
	}

	if event == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	if err := a.deps.Events.HandleProviderEvent(r.Context(), event); err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "processed"})
}
