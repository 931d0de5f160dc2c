package checkout

import (
	"context"
	"net/http"

	"github.com/cavos-labs/forma-app/internal/logger"
	"github.com/cavos-labs/forma-app/internal/metrics"
	"github.com/cavos-labs/forma-app/internal/session"

	"github.com/gin-gonic/gin"
)

// Activator flips a gym to active in the upstream API.
type Activator interface {
	ActivateGym(ctx context.Context, gymID string) error
}

type Handler struct {
	stripe        SessionCreator
	activator     Activator
	sessions      *session.Manager
	publicBaseURL string
}

func NewHandler(stripe SessionCreator, activator Activator, sessions *session.Manager, publicBaseURL string) *Handler {
	return &Handler{
		stripe:        stripe,
		activator:     activator,
		sessions:      sessions,
		publicBaseURL: publicBaseURL,
	}
}

type createSessionForm struct {
	Plan string `json:"plan"`
}

// CreateSessionResponse carries the hosted checkout page to redirect to.
type CreateSessionResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// CreateSession godoc
// @Summary      Start checkout
// @Description  Creates a Stripe checkout session for the chosen plan and
// @Description  returns the hosted payment page URL.
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        plan  body      createSessionForm  true  "Plan (monthly or yearly)"
// @Success      200   {object}  CreateSessionResponse
// @Failure      400   {object}  api.ErrorResponse
// @Failure      502   {object}  api.ErrorResponse
// @Router       /checkout/session [post]
func (h *Handler) CreateSession(c *gin.Context) {
	s, _ := session.FromContext(c)

	var form createSessionForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	plan, err := ParsePlan(form.Plan)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Plan must be monthly or yearly"})
		return
	}

	successURL := h.publicBaseURL + "/success?session_id={CHECKOUT_SESSION_ID}&gym_id=" + s.Gym.ID
	cancelURL := h.publicBaseURL + "/pricing"

	checkoutSession, err := h.stripe.New(sessionParams(plan, s.Gym.ID, successURL, cancelURL))
	if err != nil {
		logger.WithError(err).Error("stripe session creation failed", "gym_id", s.Gym.ID, "plan", string(plan))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not start checkout"})
		return
	}

	metrics.RecordCheckoutSession(string(plan))
	c.JSON(http.StatusOK, CreateSessionResponse{
		SessionID: checkoutSession.ID,
		URL:       checkoutSession.URL,
	})
}

// Activate godoc
// @Summary      Activate gym
// @Description  Called from the success page after checkout. Activates the
// @Description  operator's gym upstream and refreshes the stored session so
// @Description  the app unlocks without a new sign-in.
// @Tags         checkout
// @Produce      json
// @Success      200  {object}  api.MessageResponse
// @Failure      502  {object}  api.ErrorResponse
// @Router       /checkout/activate [post]
func (h *Handler) Activate(c *gin.Context) {
	s, _ := session.FromContext(c)

	if err := h.activator.ActivateGym(c.Request.Context(), s.Gym.ID); err != nil {
		metrics.RecordGymActivation("error")
		logger.WithError(err).Error("gym activation failed", "gym_id", s.Gym.ID)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not activate subscription"})
		return
	}

	if err := h.sessions.SetGymActive(c.Request.Context(), s); err != nil {
		logger.WithError(err).Error("session update after activation failed", "gym_id", s.Gym.ID)
	}
	metrics.RecordGymActivation("success")
	c.JSON(http.StatusOK, gin.H{"message": "Subscription activated"})
}
