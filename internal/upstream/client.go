package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cavos-labs/forma-app/internal/logger"
	"github.com/cavos-labs/forma-app/internal/metrics"
)

const defaultTimeout = 30 * time.Second

// Client talks to the external gym-management API. All record mutation and
// persistence happens behind it; the gateway only orchestrates.
type Client struct {
	baseURL string
	apiKey  string

	activationURL string
	activationKey string

	http *http.Client
}

func New(baseURL, apiKey, activationURL, activationKey string) *Client {
	return &Client{
		baseURL:       baseURL,
		apiKey:        apiKey,
		activationURL: activationURL,
		activationKey: activationKey,
		http:          &http.Client{Timeout: defaultTimeout},
	}
}

// BaseURL exposes the upstream origin for the reverse proxy.
func (c *Client) BaseURL() string { return c.baseURL }

// APIKey exposes the shared key for the reverse proxy.
func (c *Client) APIKey() string { return c.apiKey }

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	return c.doWith(ctx, method, c.baseURL+path, c.apiKey, query, body, out)
}

func (c *Client) doWith(ctx context.Context, method, rawURL, apiKey string, query url.Values, body, out any) error {
	start := time.Now()
	defer func() {
		metrics.UpstreamRequestDuration.WithLabelValues(method + " " + rawURL).Observe(time.Since(start).Seconds())
	}()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return newError(0, err.Error())
		}
		reader = bytes.NewReader(data)
	}

	if len(query) > 0 {
		rawURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return newError(0, err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return newError(0, err.Error())
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return newError(resp.StatusCode, err.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Structured errors carry {error}; anything else (an HTML error page
		// from a misconfigured proxy, say) is an infrastructure failure.
		var envelope struct {
			Error string `json:"error"`
		}
		if jsonErr := json.Unmarshal(data, &envelope); jsonErr == nil && envelope.Error != "" {
			return newError(resp.StatusCode, envelope.Error)
		}
		logger.Error("non-JSON upstream error", "status", resp.StatusCode, "url", rawURL)
		return newError(resp.StatusCode, fmt.Sprintf("unexpected response from API (%d)", resp.StatusCode))
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return newError(resp.StatusCode, "invalid JSON from API")
		}
	}
	return nil
}

// Auth.

func (c *Client) SignIn(ctx context.Context, req SignInRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/signin", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SignUp(ctx context.Context, req SignUpRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SignOut(ctx context.Context) error {
	var out BasicResponse
	return c.do(ctx, http.MethodPost, "/api/auth/signout", nil, nil, &out)
}

func (c *Client) ForgotPassword(ctx context.Context, email string) (*BasicResponse, error) {
	var out BasicResponse
	body := map[string]string{"email": email}
	if err := c.do(ctx, http.MethodPost, "/api/auth/forgot-password", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ResetPassword(ctx context.Context, req ResetPasswordRequest) (*BasicResponse, error) {
	var out BasicResponse
	if err := c.do(ctx, http.MethodPut, "/api/auth/reset-password", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Members.

func (c *Client) CreateMember(ctx context.Context, req CreateMemberRequest) (*CreateMemberResponse, error) {
	var out CreateMemberResponse
	if err := c.do(ctx, http.MethodPost, "/api/users", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateMember(ctx context.Context, userID string, req UpdateMemberRequest) (*BasicResponse, error) {
	var out BasicResponse
	if err := c.do(ctx, http.MethodPut, "/api/users/"+url.PathEscape(userID), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Memberships and payments.

func (c *Client) ListMemberships(ctx context.Context, p ListMembershipsParams) (*MembershipsResponse, error) {
	q := url.Values{}
	q.Set("gymId", p.GymID)
	q.Set("limit", strconv.Itoa(p.Limit))
	q.Set("offset", strconv.Itoa(p.Offset))
	if p.Status != "" {
		q.Set("status", string(p.Status))
	}

	var out MembershipsResponse
	if err := c.do(ctx, http.MethodGet, "/api/memberships", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListPayments(ctx context.Context, p ListPaymentsParams) (*PaymentsResponse, error) {
	q := url.Values{}
	q.Set("gymId", p.GymID)
	q.Set("limit", strconv.Itoa(p.Limit))
	q.Set("offset", strconv.Itoa(p.Offset))
	if p.Status != "" {
		q.Set("status", string(p.Status))
	}
	if p.MembershipID != "" {
		q.Set("membershipId", p.MembershipID)
	}

	var out PaymentsResponse
	if err := c.do(ctx, http.MethodGet, "/api/payments", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdatePaymentStatus(ctx context.Context, req UpdatePaymentRequest) (*UpdatePaymentResponse, error) {
	var out UpdatePaymentResponse
	if err := c.do(ctx, http.MethodPatch, "/api/payments", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Daily workouts.

func (c *Client) ListWorkouts(ctx context.Context, p ListWorkoutsParams) (*WorkoutsResponse, error) {
	q := url.Values{}
	q.Set("gymId", p.GymID)
	q.Set("year", strconv.Itoa(p.Year))
	q.Set("month", strconv.Itoa(p.Month))

	var out WorkoutsResponse
	if err := c.do(ctx, http.MethodGet, "/api/daily-workouts", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateWorkout(ctx context.Context, req CreateWorkoutRequest) (*WorkoutResponse, error) {
	var out WorkoutResponse
	if err := c.do(ctx, http.MethodPost, "/api/daily-workouts", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateWorkout(ctx context.Context, req UpdateWorkoutRequest) (*WorkoutResponse, error) {
	var out WorkoutResponse
	if err := c.do(ctx, http.MethodPut, "/api/daily-workouts", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteWorkout(ctx context.Context, workoutID string) error {
	q := url.Values{}
	q.Set("id", workoutID)
	var out BasicResponse
	return c.do(ctx, http.MethodDelete, "/api/daily-workouts", q, nil, &out)
}

// ActivateGym flips a tenant's active flag after a successful checkout. It
// authenticates with the static activation key, not the main API key.
func (c *Client) ActivateGym(ctx context.Context, gymID string) error {
	body := map[string]string{"gymId": gymID}
	var out BasicResponse
	err := c.doWith(ctx, http.MethodPost, c.activationURL+"/api/gym/activate", c.activationKey, nil, body, &out)
	if err != nil {
		return err
	}
	if !out.Success {
		return newError(http.StatusOK, out.Error)
	}
	return nil
}
