package membership

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cavos-labs/forma-app/internal/overlay"
	"github.com/cavos-labs/forma-app/internal/session"
	"github.com/cavos-labs/forma-app/internal/upstream"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	fakeLister
	created   []upstream.CreateMemberRequest
	createErr error
	updated   map[string]upstream.UpdateMemberRequest
}

func (f *fakeClient) CreateMember(_ context.Context, req upstream.CreateMemberRequest) (*upstream.CreateMemberResponse, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, req)
	return &upstream.CreateMemberResponse{
		Success: true,
		User:    &upstream.CreatedMember{ID: "new-user", Email: req.Email, FirstName: req.FirstName, LastName: req.LastName},
	}, nil
}

func (f *fakeClient) UpdateMember(_ context.Context, userID string, req upstream.UpdateMemberRequest) (*upstream.BasicResponse, error) {
	if f.updated == nil {
		f.updated = make(map[string]upstream.UpdateMemberRequest)
	}
	f.updated[userID] = req
	return &upstream.BasicResponse{Success: true}, nil
}

func testSession() *session.Session {
	return &session.Session{
		ID:   "sess-1",
		User: upstream.User{ID: "operator-1", Email: "admin@gym.cr"},
		Gym:  upstream.Gym{ID: "gym-1", Name: "Forma", MonthlyFee: 25000, IsActive: true},
	}
}

func testRouter(h *Handler, s *session.Session) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("session", s)
		c.Next()
	})
	r.GET("/app/memberships", h.List)
	r.POST("/app/memberships/refresh", h.Refresh)
	r.POST("/app/members", h.CreateMember)
	r.PUT("/app/members/:userID", h.UpdateMember)
	r.POST("/app/memberships/overlay/create-user", h.OpenCreateUser)
	r.POST("/app/memberships/:membershipID/overlay/edit-user", h.OpenEditUser)
	r.POST("/app/memberships/:membershipID/overlay/receipt", h.OpenReceipt)
	r.POST("/app/memberships/overlay/receipt-error", h.ReceiptImageError)
	r.DELETE("/app/memberships/overlay", h.CloseOverlay)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestList_ReturnsCollectionAndCounts(t *testing.T) {
	client := &fakeClient{fakeLister: fakeLister{memberships: PlaceholderMemberships()}}
	h := NewHandler(client, false)
	r := testRouter(h, testSession())

	w := doJSON(t, r, http.MethodGet, "/app/memberships", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Memberships, 4)
	assert.Equal(t, Counts{All: 4, Active: 2, PendingPayment: 1, Expired: 1}, resp.Counts)
	assert.Equal(t, FilterAll, resp.Status)
	assert.Equal(t, overlay.None, resp.Overlay.Kind)
}

func TestList_SearchFiltersVisibleOnly(t *testing.T) {
	client := &fakeClient{fakeLister: fakeLister{memberships: PlaceholderMemberships()}}
	h := NewHandler(client, false)
	r := testRouter(h, testSession())

	w := doJSON(t, r, http.MethodGet, "/app/memberships?search=gonzalez", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Memberships, 1)
	assert.Equal(t, "María", resp.Memberships[0].User.FirstName)
	// Counts stay collection-wide; search never shrinks the tabs.
	assert.Equal(t, 4, resp.Counts.All)
	// Search is client-side: the single initial fetch is all there is.
	assert.Len(t, client.calls, 1)
}

func TestList_StatusChangeRefetches(t *testing.T) {
	client := &fakeClient{fakeLister: fakeLister{memberships: PlaceholderMemberships()}}
	h := NewHandler(client, false)
	r := testRouter(h, testSession())

	doJSON(t, r, http.MethodGet, "/app/memberships", nil)
	doJSON(t, r, http.MethodGet, "/app/memberships?status=expired", nil)

	require.Len(t, client.calls, 2)
	assert.Equal(t, upstream.MembershipExpired, client.calls[1].Status)

	// Same tab again does not refetch.
	doJSON(t, r, http.MethodGet, "/app/memberships?status=expired", nil)
	assert.Len(t, client.calls, 2)
}

func TestList_InvalidStatusIsRejected(t *testing.T) {
	client := &fakeClient{}
	h := NewHandler(client, false)
	r := testRouter(h, testSession())

	w := doJSON(t, r, http.MethodGet, "/app/memberships?status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, client.calls)
}

func TestList_UpstreamFailureFallsBackWithLocalizedError(t *testing.T) {
	client := &fakeClient{fakeLister: fakeLister{err: errors.New("connection refused")}}
	h := NewHandler(client, true)
	r := testRouter(h, testSession())

	w := doJSON(t, r, http.MethodGet, "/app/memberships", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.True(t, resp.Fallback)
	assert.Len(t, resp.Memberships, 4)
	assert.Equal(t, "Error al cargar las membresías", resp.Error)
}

func TestList_UpstreamFailureSurfacesAPIMessage(t *testing.T) {
	client := &fakeClient{fakeLister: fakeLister{err: &upstream.Error{StatusCode: 500, Message: "Gym quota exceeded"}}}
	h := NewHandler(client, false)
	r := testRouter(h, testSession())

	w := doJSON(t, r, http.MethodGet, "/app/memberships", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Gym quota exceeded", resp.Error)
}

func TestCreateMember_DefaultsFeeAndStartDate(t *testing.T) {
	client := &fakeClient{fakeLister: fakeLister{memberships: PlaceholderMemberships()}}
	h := NewHandler(client, false)
	r := testRouter(h, testSession())

	w := doJSON(t, r, http.MethodPost, "/app/members", gin.H{
		"email":     "nuevo@email.com",
		"firstName": "Nuevo",
		"lastName":  "Miembro",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	require.Len(t, client.created, 1)
	got := client.created[0]
	assert.Equal(t, "gym-1", got.GymID)
	assert.Equal(t, int64(25000), got.MonthlyFee)
	assert.Equal(t, time.Now().Format("2006-01-02"), got.StartDate)

	// Creation triggers a reload of the collection.
	assert.Len(t, client.calls, 1)
}

func TestCreateMember_ExplicitFeeWins(t *testing.T) {
	client := &fakeClient{fakeLister: fakeLister{}}
	h := NewHandler(client, false)
	r := testRouter(h, testSession())

	w := doJSON(t, r, http.MethodPost, "/app/members", gin.H{
		"email":      "nuevo@email.com",
		"firstName":  "Nuevo",
		"lastName":   "Miembro",
		"monthlyFee": 30000,
		"startDate":  "2024-08-01",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, client.created, 1)
	assert.Equal(t, int64(30000), client.created[0].MonthlyFee)
	assert.Equal(t, "2024-08-01", client.created[0].StartDate)
}

func TestCreateMember_ValidationStopsBeforeUpstream(t *testing.T) {
	client := &fakeClient{}
	h := NewHandler(client, false)
	r := testRouter(h, testSession())

	w := doJSON(t, r, http.MethodPost, "/app/members", gin.H{
		"email":     "not-an-email",
		"firstName": "Nuevo",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, client.created)

	var resp struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Fields, "Email")
	assert.Contains(t, resp.Fields, "LastName")
}

func TestCreateMember_UpstreamMessagePassesThrough(t *testing.T) {
	client := &fakeClient{createErr: &upstream.Error{StatusCode: 409, Message: "Email already registered"}}
	h := NewHandler(client, false)
	r := testRouter(h, testSession())

	w := doJSON(t, r, http.MethodPost, "/app/members", gin.H{
		"email":     "dup@email.com",
		"firstName": "Dup",
		"lastName":  "Licado",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Email already registered")
}

func TestUpdateMember_RefetchesAndClosesOverlay(t *testing.T) {
	client := &fakeClient{fakeLister: fakeLister{memberships: PlaceholderMemberships()}}
	h := NewHandler(client, false)
	s := testSession()
	r := testRouter(h, s)

	doJSON(t, r, http.MethodGet, "/app/memberships", nil)
	doJSON(t, r, http.MethodPost, "/app/memberships/1/overlay/edit-user", nil)
	require.Equal(t, overlay.EditUser, h.view(s).Overlay().Active().Kind)

	w := doJSON(t, r, http.MethodPut, "/app/members/user-1", gin.H{
		"firstName": "María José",
		"lastName":  "González",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "María José", client.updated["user-1"].FirstName)
	assert.Equal(t, overlay.None, h.view(s).Overlay().Active().Kind)
	assert.Len(t, client.calls, 2)
}

func TestOpenReceipt_PendingUploadIsRefused(t *testing.T) {
	records := PlaceholderMemberships()
	records[1].LatestPayment.PaymentProofURL = "/proofs/pending-upload.png"
	client := &fakeClient{fakeLister: fakeLister{memberships: records}}
	h := NewHandler(client, false)
	r := testRouter(h, testSession())

	doJSON(t, r, http.MethodGet, "/app/memberships", nil)
	w := doJSON(t, r, http.MethodPost, "/app/memberships/2/overlay/receipt", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestOpenReceipt_ShowsLatestPayment(t *testing.T) {
	client := &fakeClient{fakeLister: fakeLister{memberships: PlaceholderMemberships()}}
	h := NewHandler(client, false)
	s := testSession()
	r := testRouter(h, s)

	doJSON(t, r, http.MethodGet, "/app/memberships", nil)
	w := doJSON(t, r, http.MethodPost, "/app/memberships/1/overlay/receipt", nil)
	require.Equal(t, http.StatusOK, w.Code)

	active := h.view(s).Overlay().Active()
	require.Equal(t, overlay.Receipt, active.Kind)
	assert.Equal(t, "payment-1", active.PaymentID)
	assert.Equal(t, "/payment-proof-1.jpg", active.Receipt.ImageURL)
	assert.Equal(t, "REF123456", active.Receipt.Info.Reference)
}

func TestReceiptImageError_KeepsViewerOpen(t *testing.T) {
	client := &fakeClient{fakeLister: fakeLister{memberships: PlaceholderMemberships()}}
	h := NewHandler(client, false)
	s := testSession()
	r := testRouter(h, s)

	doJSON(t, r, http.MethodGet, "/app/memberships", nil)
	doJSON(t, r, http.MethodPost, "/app/memberships/1/overlay/receipt", nil)
	w := doJSON(t, r, http.MethodPost, "/app/memberships/overlay/receipt-error", nil)
	require.Equal(t, http.StatusOK, w.Code)

	active := h.view(s).Overlay().Active()
	assert.Equal(t, overlay.Receipt, active.Kind)
	assert.Equal(t, overlay.ReceiptErrorDisplay, active.Receipt.State)
}

func TestForget_DropsViewState(t *testing.T) {
	client := &fakeClient{fakeLister: fakeLister{memberships: PlaceholderMemberships()}}
	h := NewHandler(client, false)
	s := testSession()
	r := testRouter(h, s)

	doJSON(t, r, http.MethodGet, "/app/memberships", nil)
	require.Len(t, client.calls, 1)

	h.Forget(s.ID)
	doJSON(t, r, http.MethodGet, "/app/memberships", nil)
	assert.Len(t, client.calls, 2)
}
