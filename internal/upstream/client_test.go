package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cavos-labs/forma-app/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.Init()
}

func TestSignIn_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/signin", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))

		var req SignInRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "owner@gym.cr", req.Email)

		json.NewEncoder(w).Encode(AuthResponse{
			Success: true,
			User:    &User{ID: "user-1", Email: "owner@gym.cr"},
			Gym:     &Gym{ID: "gym-1", Name: "Forma Gym", MonthlyFee: 25000, IsActive: true},
		})
	}))
	defer srv.Close()

	client := New(srv.URL, "test-key", srv.URL, "activation-key")
	resp, err := client.SignIn(context.Background(), SignInRequest{Email: "owner@gym.cr", Password: "secret"})

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "gym-1", resp.Gym.ID)
	assert.EqualValues(t, 25000, resp.Gym.MonthlyFee)
}

func TestSignIn_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid credentials"})
	}))
	defer srv.Close()

	client := New(srv.URL, "test-key", srv.URL, "activation-key")
	_, err := client.SignIn(context.Background(), SignInRequest{Email: "owner@gym.cr", Password: "wrong"})

	require.Error(t, err)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
}

func TestSignIn_NonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>502 Bad Gateway</html>"))
	}))
	defer srv.Close()

	client := New(srv.URL, "test-key", srv.URL, "activation-key")
	_, err := client.SignIn(context.Background(), SignInRequest{Email: "a@b.c", Password: "x"})

	require.Error(t, err)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "unexpected response")
}

func TestListMemberships_QueryParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/memberships", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "gym-1", q.Get("gymId"))
		assert.Equal(t, "100", q.Get("limit"))
		assert.Equal(t, "0", q.Get("offset"))
		assert.Equal(t, "active", q.Get("status"))

		json.NewEncoder(w).Encode(MembershipsResponse{
			Success: true,
			Memberships: []Membership{
				{ID: "m-1", GymID: "gym-1", Status: MembershipActive, MonthlyFee: 25000},
			},
		})
	}))
	defer srv.Close()

	client := New(srv.URL, "test-key", srv.URL, "activation-key")
	resp, err := client.ListMemberships(context.Background(), ListMembershipsParams{
		GymID:  "gym-1",
		Limit:  100,
		Offset: 0,
		Status: MembershipActive,
	})

	require.NoError(t, err)
	require.Len(t, resp.Memberships, 1)
	assert.Equal(t, MembershipActive, resp.Memberships[0].Status)
}

func TestListMemberships_OmitsEmptyStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasStatus := r.URL.Query()["status"]
		assert.False(t, hasStatus)
		json.NewEncoder(w).Encode(MembershipsResponse{Success: true})
	}))
	defer srv.Close()

	client := New(srv.URL, "test-key", srv.URL, "activation-key")
	_, err := client.ListMemberships(context.Background(), ListMembershipsParams{GymID: "gym-1", Limit: 100})
	require.NoError(t, err)
}

func TestUpdatePaymentStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/payments", r.URL.Path)

		var req UpdatePaymentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "pay-1", req.PaymentID)
		assert.Equal(t, PaymentApproved, req.Status)
		assert.Equal(t, "user-1", req.ApprovedBy)

		json.NewEncoder(w).Encode(UpdatePaymentResponse{Success: true})
	}))
	defer srv.Close()

	client := New(srv.URL, "test-key", srv.URL, "activation-key")
	resp, err := client.UpdatePaymentStatus(context.Background(), UpdatePaymentRequest{
		PaymentID:  "pay-1",
		Status:     PaymentApproved,
		ApprovedBy: "user-1",
	})

	require.NoError(t, err)
	assert.True(t, resp.Success)
}

func TestActivateGym_UsesActivationKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/gym/activate", r.URL.Path)
		assert.Equal(t, "activation-key", r.Header.Get("x-api-key"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gym-1", body["gymId"])

		json.NewEncoder(w).Encode(BasicResponse{Success: true})
	}))
	defer srv.Close()

	client := New(srv.URL, "main-key", srv.URL, "activation-key")
	err := client.ActivateGym(context.Background(), "gym-1")
	require.NoError(t, err)
}

func TestActivateGym_UpstreamRefuses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(BasicResponse{Success: false, Error: "gym not found"})
	}))
	defer srv.Close()

	client := New(srv.URL, "main-key", srv.URL, "activation-key")
	err := client.ActivateGym(context.Background(), "gym-404")

	require.Error(t, err)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "gym not found", apiErr.Message)
}

func TestDeleteWorkout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "w-1", r.URL.Query().Get("id"))
		json.NewEncoder(w).Encode(BasicResponse{Success: true})
	}))
	defer srv.Close()

	client := New(srv.URL, "test-key", srv.URL, "activation-key")
	require.NoError(t, client.DeleteWorkout(context.Background(), "w-1"))
}
