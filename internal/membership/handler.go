package membership

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/cavos-labs/forma-app/internal/api"
	"github.com/cavos-labs/forma-app/internal/i18n"
	"github.com/cavos-labs/forma-app/internal/logger"
	"github.com/cavos-labs/forma-app/internal/overlay"
	"github.com/cavos-labs/forma-app/internal/session"
	"github.com/cavos-labs/forma-app/internal/upstream"

	"github.com/gin-gonic/gin"
)

// Client is the slice of the upstream API the membership screen uses.
type Client interface {
	Lister
	CreateMember(ctx context.Context, req upstream.CreateMemberRequest) (*upstream.CreateMemberResponse, error)
	UpdateMember(ctx context.Context, userID string, req upstream.UpdateMemberRequest) (*upstream.BasicResponse, error)
}

type Handler struct {
	client          Client
	fallbackOnError bool

	mu    sync.Mutex
	views map[string]*View
}

func NewHandler(client Client, fallbackOnError bool) *Handler {
	return &Handler{
		client:          client,
		fallbackOnError: fallbackOnError,
		views:           make(map[string]*View),
	}
}

// view returns the per-session membership view, creating it on first use.
func (h *Handler) view(s *session.Session) *View {
	h.mu.Lock()
	defer h.mu.Unlock()
	v, ok := h.views[s.ID]
	if !ok {
		v = NewView(h.client, Config{
			GymID:           s.Gym.ID,
			FallbackOnError: h.fallbackOnError,
		})
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

// ListResponse is the memberships screen state: the visible records, the
// per-tab counts over the whole collection, the active filters and overlay,
// plus a localized error when the last reload failed.
type ListResponse struct {
	Success     bool                  `json:"success"`
	Memberships []upstream.Membership `json:"memberships"`
	Counts      Counts                `json:"counts"`
	Status      StatusFilter          `json:"status"`
	Search      string                `json:"search"`
	Fallback    bool                  `json:"fallback,omitempty"`
	Error       string                `json:"error,omitempty"`
	Overlay     overlay.Overlay       `json:"overlay"`
}

// List godoc
// @Summary      List memberships
// @Description  Returns the memberships screen state under the given filters.
// @Tags         memberships
// @Produce      json
// @Param        status  query     string  false  "Status tab (all, active, pending_payment, expired, inactive, cancelled)"
// @Param        search  query     string  false  "Free-text search over name and email"
// @Success      200     {object}  ListResponse
// @Failure      400     {object}  api.ErrorResponse
// @Router       /app/memberships [get]
func (h *Handler) List(c *gin.Context) {
	s, _ := session.FromContext(c)
	lang := i18n.Parse(session.PrefsFromContext(c).Language)
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

	status, search := v.Filters()
	resp := ListResponse{
		Success:     reloadErr == nil,
		Memberships: v.Visible(),
		Counts:      v.Counts(),
		Status:      status,
		Search:      search,
		Fallback:    v.Store().Fallback(),
		Overlay:     v.Overlay().Active(),
	}
	if reloadErr != nil {
		logger.WithError(reloadErr).Error("membership reload failed", "gym_id", s.Gym.ID)
		resp.Error = reloadErrorMessage(lang, reloadErr)
	}
	c.JSON(http.StatusOK, resp)
}

// reloadErrorMessage prefers the API's own error text over the generic
// catalog entry.
func reloadErrorMessage(lang i18n.Lang, err error) string {
	var ue *upstream.Error
	if errors.As(err, &ue) && ue.Message != "" {
		return ue.Message
	}
	return i18n.T(lang, "memberships.load_error")
}

// Refresh godoc
// @Summary      Refresh memberships
// @Description  Re-fetches the collection under the current filters.
// @Tags         memberships
// @Produce      json
// @Success      200  {object}  ListResponse
// @Router       /app/memberships/refresh [post]
func (h *Handler) Refresh(c *gin.Context) {
	s, _ := session.FromContext(c)
	lang := i18n.Parse(session.PrefsFromContext(c).Language)
	v := h.view(s)

	reloadErr := v.Refresh(c.Request.Context())

	status, search := v.Filters()
	resp := ListResponse{
		Success:     reloadErr == nil,
		Memberships: v.Visible(),
		Counts:      v.Counts(),
		Status:      status,
		Search:      search,
		Fallback:    v.Store().Fallback(),
		Overlay:     v.Overlay().Active(),
	}
	if reloadErr != nil {
		resp.Error = reloadErrorMessage(lang, reloadErr)
	}
	c.JSON(http.StatusOK, resp)
}

type createMemberForm struct {
	Email       string `json:"email" validate:"required,email"`
	FirstName   string `json:"firstName" validate:"required"`
	LastName    string `json:"lastName" validate:"required"`
	Phone       string `json:"phone"`
	DateOfBirth string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	MonthlyFee  *int64 `json:"monthlyFee" validate:"omitempty,gte=0"`
	StartDate   string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
}

// CreateMember godoc
// @Summary      Create member
// @Description  Registers a new member in the operator's gym. Monthly fee
// @Description  defaults to the gym's fee and start date to today.
// @Tags         memberships
// @Accept       json
// @Produce      json
// @Param        member  body      createMemberForm  true  "New member"
// @Success      201     {object}  upstream.CreateMemberResponse
// @Failure      400     {object}  api.ValidationErrorResponse
// @Failure      502     {object}  api.ErrorResponse
// @Router       /app/members [post]
func (h *Handler) CreateMember(c *gin.Context) {
	s, _ := session.FromContext(c)
	lang := i18n.Parse(session.PrefsFromContext(c).Language)

	var form createMemberForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if fields := api.Validate(form); fields != nil {
		c.JSON(http.StatusBadRequest, api.ValidationErrorResponse{
			Error:  "Validation failed",
			Fields: fields,
		})
		return
	}
	if s.Gym.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": i18n.T(lang, "users.gym_missing")})
		return
	}

	req := upstream.CreateMemberRequest{
		Email:       form.Email,
		FirstName:   form.FirstName,
		LastName:    form.LastName,
		Phone:       form.Phone,
		DateOfBirth: form.DateOfBirth,
		GymID:       s.Gym.ID,
		MonthlyFee:  s.Gym.MonthlyFee,
		StartDate:   form.StartDate,
	}
	if form.MonthlyFee != nil {
		req.MonthlyFee = *form.MonthlyFee
	}
	if req.StartDate == "" {
		req.StartDate = time.Now().Format("2006-01-02")
	}

	resp, err := h.client.CreateMember(c.Request.Context(), req)
	if err != nil {
		h.upstreamError(c, lang, err, "users.create_error")
		return
	}

	v := h.view(s)
	v.Overlay().Close()
	if err := v.Refresh(c.Request.Context()); err != nil {
		logger.WithError(err).Error("reload after member creation failed", "gym_id", s.Gym.ID)
	}
	c.JSON(http.StatusCreated, resp)
}

type updateMemberForm struct {
	FirstName   string `json:"firstName" validate:"required"`
	LastName    string `json:"lastName" validate:"required"`
	Phone       string `json:"phone"`
	DateOfBirth string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateMember godoc
// @Summary      Update member
// @Description  Edits a member's profile and re-fetches the collection.
// @Tags         memberships
// @Accept       json
// @Produce      json
// @Param        userID  path      string            true  "Member user ID"
// @Param        member  body      updateMemberForm  true  "Profile changes"
// @Success      200     {object}  upstream.BasicResponse
// @Failure      400     {object}  api.ValidationErrorResponse
// @Failure      502     {object}  api.ErrorResponse
// @Router       /app/members/{userID} [put]
func (h *Handler) UpdateMember(c *gin.Context) {
	s, _ := session.FromContext(c)
	lang := i18n.Parse(session.PrefsFromContext(c).Language)

	userID := c.Param("userID")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var form updateMemberForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if fields := api.Validate(form); fields != nil {
		c.JSON(http.StatusBadRequest, api.ValidationErrorResponse{
			Error:  "Validation failed",
			Fields: fields,
		})
		return
	}

	resp, err := h.client.UpdateMember(c.Request.Context(), userID, upstream.UpdateMemberRequest{
		FirstName:   form.FirstName,
		LastName:    form.LastName,
		Phone:       form.Phone,
		DateOfBirth: form.DateOfBirth,
	})
	if err != nil {
		h.upstreamError(c, lang, err, "error.unexpected")
		return
	}

	v := h.view(s)
	v.Overlay().Close()
	if err := v.Refresh(c.Request.Context()); err != nil {
		logger.WithError(err).Error("reload after member update failed", "gym_id", s.Gym.ID)
	}
	c.JSON(http.StatusOK, resp)
}

// OpenCreateUser godoc
// @Summary      Open the create-member form
// @Tags         memberships
// @Produce      json
// @Success      200  {object}  overlay.Overlay
// @Router       /app/memberships/overlay/create-user [post]
func (h *Handler) OpenCreateUser(c *gin.Context) {
	s, _ := session.FromContext(c)
	v := h.view(s)
	v.Overlay().OpenCreateUser()
	c.JSON(http.StatusOK, v.Overlay().Active())
}

// OpenEditUser godoc
// @Summary      Open the edit-member form
// @Tags         memberships
// @Produce      json
// @Param        membershipID  path      string  true  "Membership ID"
// @Success      200           {object}  overlay.Overlay
// @Failure      404           {object}  api.ErrorResponse
// @Router       /app/memberships/{membershipID}/overlay/edit-user [post]
func (h *Handler) OpenEditUser(c *gin.Context) {
	s, _ := session.FromContext(c)
	v := h.view(s)

	m, ok := v.Store().Find(c.Param("membershipID"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Membership not found"})
		return
	}
	v.Overlay().OpenEditUser(m.UserID)
	c.JSON(http.StatusOK, v.Overlay().Active())
}

// OpenReceipt godoc
// @Summary      Open the payment receipt viewer
// @Description  Shows the latest payment's proof. A proof that is still
// @Description  pending upload cannot be viewed.
// @Tags         memberships
// @Produce      json
// @Param        membershipID  path      string  true  "Membership ID"
// @Success      200           {object}  overlay.Overlay
// @Failure      404           {object}  api.ErrorResponse
// @Failure      409           {object}  api.ErrorResponse
// @Router       /app/memberships/{membershipID}/overlay/receipt [post]
func (h *Handler) OpenReceipt(c *gin.Context) {
	s, _ := session.FromContext(c)
	v := h.view(s)

	m, ok := v.Store().Find(c.Param("membershipID"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Membership not found"})
		return
	}
	p := m.LatestPayment
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No payment recorded for this membership"})
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
// @Description  Switches the open receipt viewer to its error display. The
// @Description  viewer stays open.
// @Tags         memberships
// @Produce      json
// @Success      200  {object}  overlay.Overlay
// @Failure      409  {object}  api.ErrorResponse
// @Router       /app/memberships/overlay/receipt-error [post]
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
// @Tags         memberships
// @Produce      json
// @Success      200  {object}  overlay.Overlay
// @Router       /app/memberships/overlay [delete]
func (h *Handler) CloseOverlay(c *gin.Context) {
	s, _ := session.FromContext(c)
	v := h.view(s)
	v.Overlay().Close()
	c.JSON(http.StatusOK, v.Overlay().Active())
}

// upstreamError maps an upstream failure onto the HTTP response, localizing
// infrastructure failures and passing API messages through.
func (h *Handler) upstreamError(c *gin.Context, lang i18n.Lang, err error, fallbackKey string) {
	var ue *upstream.Error
	if errors.As(err, &ue) && ue.StatusCode >= 400 && ue.StatusCode < 500 {
		c.JSON(ue.StatusCode, gin.H{"error": ue.Message})
		return
	}
	logger.WithError(err).Error("upstream request failed")
	c.JSON(http.StatusBadGateway, gin.H{"error": i18n.T(lang, fallbackKey)})
}
