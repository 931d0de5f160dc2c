package workout

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/cavos-labs/forma-app/internal/api"
	"github.com/cavos-labs/forma-app/internal/i18n"
	"github.com/cavos-labs/forma-app/internal/logger"
	"github.com/cavos-labs/forma-app/internal/session"
	"github.com/cavos-labs/forma-app/internal/upstream"

	"github.com/gin-gonic/gin"
)

// Client is the slice of the upstream API the calendar uses.
type Client interface {
	Lister
	CreateWorkout(ctx context.Context, req upstream.CreateWorkoutRequest) (*upstream.WorkoutResponse, error)
	UpdateWorkout(ctx context.Context, req upstream.UpdateWorkoutRequest) (*upstream.WorkoutResponse, error)
	DeleteWorkout(ctx context.Context, workoutID string) error
}

type Handler struct {
	client Client
	now    func() time.Time

	mu    sync.Mutex
	views map[string]*View
}

func NewHandler(client Client) *Handler {
	return &Handler{
		client: client,
		now:    time.Now,
		views:  make(map[string]*View),
	}
}

func (h *Handler) view(s *session.Session) *View {
	h.mu.Lock()
	defer h.mu.Unlock()
	v, ok := h.views[s.ID]
	if !ok {
		v = NewView(h.client, s.Gym.ID, h.now())
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

// CalendarResponse is the workout calendar state: the displayed month as a
// 42-cell grid plus the raw workouts.
type CalendarResponse struct {
	Success  bool                    `json:"success"`
	Year     int                     `json:"year"`
	Month    int                     `json:"month"`
	Cells    []Cell                  `json:"cells"`
	Workouts []upstream.DailyWorkout `json:"workouts"`
	Error    string                  `json:"error,omitempty"`
}

func (h *Handler) respond(c *gin.Context, v *View, reloadErr error) {
	lang := i18n.Parse(session.PrefsFromContext(c).Language)
	year, month := v.Month()
	resp := CalendarResponse{
		Success:  reloadErr == nil,
		Year:     year,
		Month:    int(month),
		Cells:    v.Grid(h.now()),
		Workouts: v.Workouts(),
	}
	if reloadErr != nil {
		resp.Error = i18n.T(lang, "workouts.server_error")
	}
	c.JSON(http.StatusOK, resp)
}

// Calendar godoc
// @Summary      Workout calendar
// @Description  Returns the displayed month's calendar. year and month jump
// @Description  the calendar; omitted they keep the current month.
// @Tags         workouts
// @Produce      json
// @Param        year   query     int  false  "Year"
// @Param        month  query     int  false  "Month (1-12)"
// @Success      200    {object}  CalendarResponse
// @Failure      400    {object}  api.ErrorResponse
// @Router       /app/workouts [get]
func (h *Handler) Calendar(c *gin.Context) {
	s, _ := session.FromContext(c)
	v := h.view(s)

	var reloadErr error
	yearStr, monthStr := c.Query("year"), c.Query("month")
	if yearStr != "" || monthStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid year"})
			return
		}
		month, err := strconv.Atoi(monthStr)
		if err != nil || month < 1 || month > 12 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid month"})
			return
		}
		reloadErr = v.SetMonth(c.Request.Context(), year, time.Month(month))
	} else {
		reloadErr = v.EnsureLoaded(c.Request.Context())
	}
	if reloadErr != nil {
		logger.WithError(reloadErr).Error("workout reload failed", "gym_id", s.Gym.ID)
	}
	h.respond(c, v, reloadErr)
}

type createWorkoutForm struct {
	WorkoutDate string `json:"workoutDate" validate:"required,datetime=2006-01-02"`
	WorkoutText string `json:"workoutText" validate:"required"`
}

// Create godoc
// @Summary      Create workout
// @Description  Schedules a workout on a date and re-fetches the month.
// @Tags         workouts
// @Accept       json
// @Produce      json
// @Param        workout  body      createWorkoutForm  true  "New workout"
// @Success      201      {object}  upstream.WorkoutResponse
// @Failure      400      {object}  api.ValidationErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Failure      502      {object}  api.ErrorResponse
// @Router       /app/workouts [post]
func (h *Handler) Create(c *gin.Context) {
	s, _ := session.FromContext(c)
	lang := i18n.Parse(session.PrefsFromContext(c).Language)
	v := h.view(s)

	var form createWorkoutForm
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
	if _, exists := v.Find(form.WorkoutDate); exists {
		c.JSON(http.StatusConflict, gin.H{"error": "A workout already exists on this date"})
		return
	}

	resp, err := h.client.CreateWorkout(c.Request.Context(), upstream.CreateWorkoutRequest{
		GymID:       s.Gym.ID,
		WorkoutDate: form.WorkoutDate,
		WorkoutText: form.WorkoutText,
	})
	if err != nil {
		h.upstreamError(c, lang, err, "workouts.create_error")
		return
	}

	if err := v.Refresh(c.Request.Context()); err != nil {
		logger.WithError(err).Error("reload after workout creation failed", "gym_id", s.Gym.ID)
	}
	c.JSON(http.StatusCreated, resp)
}

type updateWorkoutForm struct {
	WorkoutText string `json:"workoutText" validate:"required"`
}

// Update godoc
// @Summary      Update workout
// @Description  Replaces a workout's text and re-fetches the month.
// @Tags         workouts
// @Accept       json
// @Produce      json
// @Param        workoutID  path      string             true  "Workout ID"
// @Param        workout    body      updateWorkoutForm  true  "New text"
// @Success      200        {object}  upstream.WorkoutResponse
// @Failure      400        {object}  api.ValidationErrorResponse
// @Failure      502        {object}  api.ErrorResponse
// @Router       /app/workouts/{workoutID} [put]
func (h *Handler) Update(c *gin.Context) {
	s, _ := session.FromContext(c)
	lang := i18n.Parse(session.PrefsFromContext(c).Language)
	v := h.view(s)

	var form updateWorkoutForm
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

	resp, err := h.client.UpdateWorkout(c.Request.Context(), upstream.UpdateWorkoutRequest{
		ID:          c.Param("workoutID"),
		WorkoutText: form.WorkoutText,
	})
	if err != nil {
		h.upstreamError(c, lang, err, "workouts.update_error")
		return
	}

	if err := v.Refresh(c.Request.Context()); err != nil {
		logger.WithError(err).Error("reload after workout update failed", "gym_id", s.Gym.ID)
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary      Delete workout
// @Description  Removes a workout and re-fetches the month.
// @Tags         workouts
// @Produce      json
// @Param        workoutID  path      string  true  "Workout ID"
// @Success      200        {object}  api.MessageResponse
// @Failure      502        {object}  api.ErrorResponse
// @Router       /app/workouts/{workoutID} [delete]
func (h *Handler) Delete(c *gin.Context) {
	s, _ := session.FromContext(c)
	lang := i18n.Parse(session.PrefsFromContext(c).Language)
	v := h.view(s)

	if err := h.client.DeleteWorkout(c.Request.Context(), c.Param("workoutID")); err != nil {
		h.upstreamError(c, lang, err, "workouts.server_error")
		return
	}

	if err := v.Refresh(c.Request.Context()); err != nil {
		logger.WithError(err).Error("reload after workout deletion failed", "gym_id", s.Gym.ID)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Workout deleted"})
}

// Sections godoc
// @Summary      Parse workout text
// @Description  Splits a workout's text into titled sections for display.
// @Tags         workouts
// @Produce      json
// @Param        workoutID  path      string  true  "Workout ID"
// @Success      200        {array}   Section
// @Failure      404        {object}  api.ErrorResponse
// @Router       /app/workouts/{workoutID}/sections [get]
func (h *Handler) Sections(c *gin.Context) {
	s, _ := session.FromContext(c)
	v := h.view(s)

	id := c.Param("workoutID")
	for _, w := range v.Workouts() {
		if w.ID == id {
			c.JSON(http.StatusOK, Parse(w.WorkoutText))
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Workout not found"})
}

func (h *Handler) upstreamError(c *gin.Context, lang i18n.Lang, err error, fallbackKey string) {
	var ue *upstream.Error
	if errors.As(err, &ue) && ue.StatusCode >= 400 && ue.StatusCode < 500 {
		c.JSON(ue.StatusCode, gin.H{"error": ue.Message})
		return
	}
	logger.WithError(err).Error("upstream request failed")
	c.JSON(http.StatusBadGateway, gin.H{"error": i18n.T(lang, fallbackKey)})
}
