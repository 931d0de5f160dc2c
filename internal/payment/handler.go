package payment

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/cavos-labs/forma-app/internal/i18n"
	"github.com/cavos-labs/forma-app/internal/logger"
	"github.com/cavos-labs/forma-app/internal/metrics"
	"github.com/cavos-labs/forma-app/internal/overlay"
	"github.com/cavos-labs/forma-app/internal/session"
	"github.com/cavos-labs/forma-app/internal/upstream"

	"github.com/gin-gonic/gin"
)

// Client is the slice of the upstream API the payment review screen uses.
type Client interface {
	Lister
	UpdatePaymentStatus(ctx context.Context, req upstream.UpdatePaymentRequest) (*upstream.UpdatePaymentResponse, error)
}

type Handler struct {
	client Client

	mu    sync.Mutex
	views map[string]*View
}

func NewHandler(client Client) *Handler {
	return &Handler{
		client: client,
		views:  make(map[string]*View),
	}
}

func (h *Handler) view(s *session.Session) *View {
	h.mu.Lock()
	defer h.mu.Unlock()
	v, ok := h.views[s.ID]
	if !ok {
		v = NewView(h.client, Config{GymID: s.Gym.ID})
		h.views[s.ID] = v
	}
	return v
}

// Forget drops the view state for a session, typically on sign-out.
func (h *Handler) Forget(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.views, sessionID)
}

// ListResponse is the payment review screen state.
type ListResponse struct {
	Success  bool               `json:"success"`
	Payments []upstream.Payment `json:"payments"`
	Counts   Counts             `json:"counts"`
	Status   StatusFilter       `json:"status"`
	Search   string             `json:"search"`
	Error    string             `json:"error,omitempty"`
	Overlay  overlay.Overlay    `json:"overlay"`
}

func (h *Handler) respond(c *gin.Context, v *View, reloadErr error, errKey string) {
	lang := i18n.Parse(session.PrefsFromContext(c).Language)
	status, search := v.Filters()
	resp := ListResponse{
		Success:  reloadErr == nil,
		Payments: v.Visible(),
		Counts:   v.Counts(),
		Status:   status,
		Search:   search,
		Overlay:  v.Overlay().Active(),
	}
	if reloadErr != nil {
		resp.Error = reloadErrorMessage(lang, reloadErr, errKey)
	}
	c.JSON(http.StatusOK, resp)
}

// reloadErrorMessage prefers the API's own error text over the generic
// catalog entry.
func reloadErrorMessage(lang i18n.Lang, err error, key string) string {
	var ue *upstream.Error
	if errors.As(err, &ue) && ue.Message != "" {
		return ue.Message
	}
	return i18n.T(lang, key)
}

// List godoc
// @Summary      List payments
// @Description  Returns the payment review queue under the given filters.
// @Tags         payments
// @Produce      json
// @Param        status  query     string  false  "Status tab (all, pending, approved, rejected, cancelled)"
// @Param        search  query     string  false  "Free-text search over name, email and SINPE reference"
// @Success      200     {object}  ListResponse
// @Failure      400     {object}  api.ErrorResponse
// @Router       /app/payments [get]
func (h *Handler) List(c *gin.Context) {
	s, _ := session.FromContext(c)
	v := h.view(s)

	var reloadErr error
	if raw, present := c.GetQuery("status"); present {
		status, err := ParseStatusFilter(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
			return
		}
		current, _ := v.Filters()
		if status != current {
			reloadErr = v.SetStatus(c.Request.Context(), status)
		}
	}
	if search, present := c.GetQuery("search"); present {
		v.SetQuery(search)
	}
	if reloadErr == nil {
		reloadErr = v.EnsureLoaded(c.Request.Context())
	}
	if reloadErr != nil {
		logger.WithError(reloadErr).Error("payment reload failed", "gym_id", s.Gym.ID)
	}
	h.respond(c, v, reloadErr, "payments.load_error")
}

// Refresh godoc
// @Summary      Refresh payments
// @Description  Re-fetches the queue under the current filters.
// @Tags         payments
// @Produce      json
// @Success      200  {object}  ListResponse
// @Router       /app/payments/refresh [post]
func (h *Handler) Refresh(c *gin.Context) {
	s, _ := session.FromContext(c)
	v := h.view(s)
	h.respond(c, v, v.Refresh(c.Request.Context()), "payments.load_error")
}

// Approve godoc
// @Summary      Approve payment
// @Description  Marks a pending payment approved, stamping the approving
// @Description  operator. The queue is re-fetched only after the API
// @Description  acknowledges the transition.
// @Tags         payments
// @Produce      json
// @Param        paymentID  path      string  true  "Payment ID"
// @Success      200        {object}  upstream.UpdatePaymentResponse
// @Failure      404        {object}  api.ErrorResponse
// @Failure      409        {object}  api.ErrorResponse
// @Failure      502        {object}  api.ErrorResponse
// @Router       /app/payments/{paymentID}/approve [post]
func (h *Handler) Approve(c *gin.Context) {
	s, _ := session.FromContext(c)
	v := h.view(s)

	p, ok := v.Store().Find(c.Param("paymentID"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		return
	}
	if p.Status != upstream.PaymentPending {
		c.JSON(http.StatusConflict, gin.H{"error": "Payment is not pending"})
		return
	}

	h.transition(c, s, v, upstream.UpdatePaymentRequest{
		PaymentID:  p.ID,
		Status:     upstream.PaymentApproved,
		ApprovedBy: s.User.ID,
	})
}

type rejectForm struct {
	Reason string `json:"reason"`
}

// ConfirmReject godoc
// @Summary      Confirm payment rejection
// @Description  Rejects the payment captured by the open rejection prompt.
// @Description  The reason is optional. Without an open prompt there is
// @Description  nothing to act on.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        rejection  body      rejectForm  true  "Rejection reason"
// @Success      200        {object}  upstream.UpdatePaymentResponse
// @Failure      409        {object}  api.ErrorResponse
// @Failure      502        {object}  api.ErrorResponse
// @Router       /app/payments/overlay/reject/confirm [post]
func (h *Handler) ConfirmReject(c *gin.Context) {
	s, _ := session.FromContext(c)
	v := h.view(s)

	// The target comes from the prompt, never from the request: whatever
	// payment the operator was asked about is the one rejected.
	target, ok := v.Overlay().RejectTarget()
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": "No rejection prompt is open"})
		return
	}

	// The body is optional: rejecting without a reason is allowed.
	var form rejectForm
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&form); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
	}

	h.transition(c, s, v, upstream.UpdatePaymentRequest{
		PaymentID:       target,
		Status:          upstream.PaymentRejected,
		RejectionReason: form.Reason,
		ApprovedBy:      s.User.ID,
	})
}

// transition performs a status change and, on acknowledgement, closes the
// overlay and re-fetches the queue so the screen reflects the API's view.
func (h *Handler) transition(c *gin.Context, s *session.Session, v *View, req upstream.UpdatePaymentRequest) {
	lang := i18n.Parse(session.PrefsFromContext(c).Language)

	resp, err := h.client.UpdatePaymentStatus(c.Request.Context(), req)
	if err != nil {
		metrics.RecordPaymentTransition(string(req.Status), "error")
		var ue *upstream.Error
		if errors.As(err, &ue) && ue.StatusCode >= 400 && ue.StatusCode < 500 {
			c.JSON(ue.StatusCode, gin.H{"error": ue.Message})
			return
		}
		logger.WithError(err).Error("payment transition failed",
			"payment_id", req.PaymentID, "status", string(req.Status))
		c.JSON(http.StatusBadGateway, gin.H{"error": i18n.T(lang, "payments.update_error")})
		return
	}

	metrics.RecordPaymentTransition(string(req.Status), "success")
	v.Overlay().Close()
	if err := v.Refresh(c.Request.Context()); err != nil {
		logger.WithError(err).Error("reload after payment transition failed", "gym_id", s.Gym.ID)
	}
	c.JSON(http.StatusOK, resp)
}

// OpenRejectPrompt godoc
// @Summary      Open the rejection prompt
// @Tags         payments
// @Produce      json
// @Param        paymentID  path      string  true  "Payment ID"
// @Success      200        {object}  overlay.Overlay
// @Failure      404        {object}  api.ErrorResponse
// @Failure      409        {object}  api.ErrorResponse
// @Router       /app/payments/{paymentID}/overlay/reject [post]
func (h *Handler) OpenRejectPrompt(c *gin.Context) {
	s, _ := session.FromContext(c)
	v := h.view(s)

	p, ok := v.Store().Find(c.Param("paymentID"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		return
	}
	if p.Status != upstream.PaymentPending {
		c.JSON(http.StatusConflict, gin.H{"error": "Payment is not pending"})
		return
	}
	v.Overlay().OpenRejectPrompt(p.ID)
	c.JSON(http.StatusOK, v.Overlay().Active())
}

// OpenReceipt godoc
// @Summary      Open the payment receipt viewer
// @Tags         payments
// @Produce      json
// @Param        paymentID  path      string  true  "Payment ID"
// @Success      200        {object}  overlay.Overlay
// @Failure      404        {object}  api.ErrorResponse
// @Failure      409        {object}  api.ErrorResponse
// @Router       /app/payments/{paymentID}/overlay/receipt [post]
func (h *Handler) OpenReceipt(c *gin.Context) {
	s, _ := session.FromContext(c)
	v := h.view(s)

	p, ok := v.Store().Find(c.Param("paymentID"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		return
	}
	if upstream.HasPendingProof(p.PaymentProofURL) {
		c.JSON(http.StatusConflict, gin.H{"error": "Payment proof has not been uploaded yet"})
		return
	}

	info := overlay.PaymentInfo{Amount: p.Amount, Date: p.PaymentDate}
	if p.SinpeReference != nil {
		info.Reference = *p.SinpeReference
	}
	if p.SinpePhone != nil {
		info.Phone = *p.SinpePhone
	}
	v.Overlay().OpenReceipt(p.ID, p.PaymentProofURL, info)
	c.JSON(http.StatusOK, v.Overlay().Active())
}

// ReceiptImageError godoc
// @Summary      Report a receipt image load failure
// @Tags         payments
// @Produce      json
// @Success      200  {object}  overlay.Overlay
// @Failure      409  {object}  api.ErrorResponse
// @Router       /app/payments/overlay/receipt-error [post]
func (h *Handler) ReceiptImageError(c *gin.Context) {
	s, _ := session.FromContext(c)
	v := h.view(s)

	if !v.Overlay().MarkReceiptImageError() {
		c.JSON(http.StatusConflict, gin.H{"error": "No receipt viewer is open"})
		return
	}
	c.JSON(http.StatusOK, v.Overlay().Active())
}

// CloseOverlay godoc
// @Summary      Close the active overlay
// @Tags         payments
// @Produce      json
// @Success      200  {object}  overlay.Overlay
// @Router       /app/payments/overlay [delete]
func (h *Handler) CloseOverlay(c *gin.Context) {
	s, _ := session.FromContext(c)
	v := h.view(s)
	v.Overlay().Close()
	c.JSON(http.StatusOK, v.Overlay().Active())
}
