package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/clinicflow/practice/pkg/jwt"
	"github.com/clinicflow/practice/pkg/subscription"
)

type subscriptionResponse struct {
	ID             uuid.UUID  `json:"id"`
	ProfessionalID uuid.UUID  `json:"professional_id"`
	Price          int64      `json:"price"`
	Status         string     `json:"status"`
	StartDate      time.Time  `json:"start_date"`
	EndDate        time.Time  `json:"end_date"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

func toSubscriptionResponse(s *subscription.Subscription) subscriptionResponse {
	return subscriptionResponse{
		ID:             s.ID,
		ProfessionalID: s.ProfessionalID,
		Price:          s.Price,
		Status:         string(s.Status),
		StartDate:      s.StartDate,
		EndDate:        s.EndDate,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

type statusResponse struct {
	Subscription  subscriptionResponse `json:"subscription"`
	Tier          string               `json:"tier"`
	CheckedAt     time.Time            `json:"checked_at"`
	GraceEndsAt   time.Time            `json:"grace_ends_at"`
	DaysRemaining int                  `json:"days_remaining"`
}

type createSubscriptionRequest struct {
	Price     int64     `json:"price" validate:"gte=0"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required,gtfield=StartDate"`
}

type renewSubscriptionRequest struct {
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required,gtfield=StartDate"`
	Price     *int64    `json:"price,omitempty" validate:"omitempty,gte=0"`
}

func (a *API) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	professionalID, err := jwt.ProfessionalIDFromRequest(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	var req createSubscriptionRequest
	if err := a.decode(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	sub, err := a.deps.Subscriptions.CreateSubscription(r.Context(), subscription.CreateParams{
		ProfessionalID: professionalID,
		Price:          req.Price,
		StartDate:      req.StartDate.UTC(),
		EndDate:        req.EndDate.UTC(),
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSubscriptionResponse(sub))
}

func (a *API) handleRenewSubscription(w http.ResponseWriter, r *http.Request) {
	professionalID, err := jwt.ProfessionalIDFromRequest(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	var req renewSubscriptionRequest
	if err := a.decode(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	sub, err := a.deps.Subscriptions.RenewSubscription(r.Context(), subscription.RenewParams{
		ProfessionalID: professionalID,
		StartDate:      req.StartDate.UTC(),
		EndDate:        req.EndDate.UTC(),
		Price:          req.Price,
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toSubscriptionResponse(sub))
}

func (a *API) handleCancelSubscription(w http.ResponseWriter, r *http.Request) {
	professionalID, err := jwt.ProfessionalIDFromRequest(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	sub, err := a.deps.Subscriptions.CancelSubscription(r.Context(), professionalID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toSubscriptionResponse(sub))
}

func (a *API) handleSubscriptionStatus(w http.ResponseWriter, r *http.Request) {
	professionalID, err := jwt.ProfessionalIDFromRequest(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	report, err := a.deps.Subscriptions.CheckStatus(r.Context(), professionalID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		Subscription:  toSubscriptionResponse(report.Subscription),
		Tier:          string(report.Tier),
		CheckedAt:     report.CheckedAt,
		GraceEndsAt:   report.GraceEndsAt,
		DaysRemaining: report.DaysRemaining,
	})
}

// handleAccess reports the tier RequireAccess resolved for this request.
func (a *API) handleAccess(w http.ResponseWriter, r *http.Request) {
	tier, _ := subscription.GetTierFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"tier":      tier,
		"read_only": subscription.IsReadOnly(r.Context()),
	})
}
