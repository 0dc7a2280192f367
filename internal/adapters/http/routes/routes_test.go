package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"claims-dashboard/internal/adapters/archive"
	"claims-dashboard/internal/adapters/http/middleware"
	"claims-dashboard/internal/adapters/persistence/models"
	"claims-dashboard/internal/config"
	"claims-dashboard/internal/core/domain"
	"claims-dashboard/internal/pkg/password"
	"claims-dashboard/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Error   string          `json:"error"`
}

type testServer struct {
	app   *fiber.App
	db    *gorm.DB
	admin *models.User
	token string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := testutil.NewDB(t)
	cfg := &config.Config{
		AppMode: "dev",
		JWT: config.JWTConfig{
			Secret:           "access-secret",
			RefreshSecret:    "refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
		Cookie: config.CookieConfig{SameSite: "Lax"},
		Upload: config.UploadConfig{MaxMB: 1},
	}

	hashed, err := password.HashWithCost("password123", 4)
	require.NoError(t, err)
	admin := &models.User{Name: "Admin", Email: "admin@example.com", Password: hashed, Role: domain.RoleAdmin}
	require.NoError(t, db.Create(admin).Error)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.CustomErrorHandler})
	Setup(app, db, cfg, zap.NewNop(), archive.Nop{})

	s := &testServer{app: app, db: db, admin: admin}
	s.token = s.login(t, "admin@example.com", "password123")
	return s
}

func (s *testServer) login(t *testing.T, email, pass string) string {
	t.Helper()

	resp, env := s.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": email, "password": pass}, false)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Error)

	var data struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.AccessToken)
	return data.AccessToken
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, authed bool) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if authed {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+s.token)
	}
	return s.send(t, req)
}

func (s *testServer) send(t *testing.T, req *http.Request) (*http.Response, envelope) {
	t.Helper()

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(raw, &env))
	} else {
		env.Data = raw
	}
	return resp, env
}

func decodeData(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, v))
}

func TestHealthRoutes(t *testing.T) {
	s := newTestServer(t)

	getJSON := func(path string) (int, map[string]interface{}) {
		resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		require.NoError(t, err)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		return resp.StatusCode, body
	}

	prev := config.DB
	t.Cleanup(func() { config.DB = prev })

	config.DB = nil
	status, body := getJSON("/health")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "down", body["database"])

	config.DB = s.db
	status, body = getJSON("/health")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["uptime"])

	status, body = getJSON("/")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "claims-dashboard", body["service"])

	_, body = getJSON("/api/v1")
	assert.Contains(t, body["resources"], "claims")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/v1/claims", "/api/v1/providers", "/api/v1/users", "/api/v1/dashboard", "/api/v1/claims/export"} {
		resp, env := s.do(t, http.MethodGet, path, nil, false)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		assert.False(t, env.Success)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/claims", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer not-a-jwt")
	resp, env := s.send(t, req)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid access token", env.Error)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	s := newTestServer(t)

	resp, _ := s.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "admin@example.com", "password": "nope"}, false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "admin@example.com"}, false)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLoginSetsCookies(t *testing.T) {
	s := newTestServer(t)

	resp, _ := s.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "ADMIN@example.com ", "password": "password123"}, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	names := map[string]bool{}
	for _, c := range resp.Cookies() {
		names[c.Name] = c.HttpOnly
	}
	assert.True(t, names["access_token"])
	assert.True(t, names["refresh_token"])

	// the access cookie alone authenticates
	var access string
	for _, c := range resp.Cookies() {
		if c.Name == "access_token" {
			access = c.Value
		}
	}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: access})
	resp, env := s.send(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var me models.UserResponse
	decodeData(t, env, &me)
	assert.Equal(t, "admin@example.com", me.Email)
}

func TestClaimLifecycle(t *testing.T) {
	s := newTestServer(t)

	resp, env := s.do(t, http.MethodPost, "/api/v1/claims", map[string]interface{}{
		"claimId":           "CLM-1",
		"mrn":               "MRN-1",
		"patientFirstName":  "Jane",
		"patientLastName":   "Doe",
		"dateOfBirth":       "1980-03-04",
		"dateOfService":     "01/15/2024",
		"chargeAmount":      "150.25",
		"primaryInsurance":  "Aetna",
		"primaryMemberId":   "M-1",
		"providerFirstName": "Greg",
		"providerLastName":  "House",
		"providerNpi":       "1234567890",
	}, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Error)

	var created models.ClaimResponse
	decodeData(t, env, &created)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, domain.StagePending, created.Stage)
	base := "/api/v1/claims/" + created.ID

	// partial update: set a remark, leave the rest alone
	resp, env = s.do(t, http.MethodPatch, base, map[string]interface{}{"remarks": "called payer"}, true)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Error)
	var updated models.ClaimResponse
	decodeData(t, env, &updated)
	require.NotNil(t, updated.Remarks)
	assert.Equal(t, "called payer", *updated.Remarks)
	assert.Equal(t, "Aetna", updated.PrimaryInsurance)

	// VALIDATED without the portal confirmation is rejected
	resp, _ = s.do(t, http.MethodPut, base+"/stage", map[string]interface{}{"stage": "VALIDATED"}, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, env = s.do(t, http.MethodPut, base+"/stage", map[string]interface{}{"stage": "VALIDATED", "validatedViaPortal": true}, true)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Error)

	// backwards is a conflict
	resp, _ = s.do(t, http.MethodPut, base+"/stage", map[string]interface{}{"stage": "PENDING"}, true)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, env = s.do(t, http.MethodGet, base+"/history", nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var history []map[string]interface{}
	decodeData(t, env, &history)
	require.Len(t, history, 1)
	assert.Equal(t, "VALIDATED", history[0]["toStage"])

	resp, env = s.do(t, http.MethodGet, base+"/template", nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), "Aetna")

	resp, _ = s.do(t, http.MethodGet, base+"/template?side=tertiary", nil, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(t, http.MethodDelete, base, nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = s.do(t, http.MethodGet, base, nil, true)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListClaimsFilters(t *testing.T) {
	s := newTestServer(t)
	testutil.CreateClaim(t, s.db, "A-1")
	testutil.CreateClaim(t, s.db, "B-2", func(c *models.Claim) {
		c.Stage = domain.StageValidated
		c.PrimaryInsurance = "Cigna"
	})

	list := func(query string) (int, []models.ClaimResponse) {
		resp, env := s.do(t, http.MethodGet, "/api/v1/claims"+query, nil, true)
		var claims []models.ClaimResponse
		if resp.StatusCode == http.StatusOK {
			decodeData(t, env, &claims)
		}
		return resp.StatusCode, claims
	}

	code, claims := list("")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, claims, 2)

	_, claims = list("?stages=VALIDATED")
	require.Len(t, claims, 1)
	assert.Equal(t, "B-2", claims[0].ClaimID)

	_, claims = list("?primaryPlan=Aetna,Humana")
	require.Len(t, claims, 1)
	assert.Equal(t, "A-1", claims[0].ClaimID)

	_, claims = list("?search=b-2")
	assert.Len(t, claims, 1)

	code, _ = list("?stages=DONE")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = list("?dateFrom=yesterday")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestBulkAssignAndExport(t *testing.T) {
	s := newTestServer(t)
	annotator := testutil.CreateUser(t, s.db, "Jane Smith", "jane@example.com")
	first := testutil.CreateClaim(t, s.db, "A-1")
	second := testutil.CreateClaim(t, s.db, "B-2")

	resp, env := s.do(t, http.MethodPost, "/api/v1/claims/bulk-assign", map[string]interface{}{
		"claimIds": []string{first.ID, second.ID, "missing"},
		"userId":   annotator.ID,
	}, true)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Error)
	var result struct {
		Requested int `json:"requested"`
		Updated   int `json:"updated"`
	}
	decodeData(t, env, &result)
	assert.Equal(t, 3, result.Requested)
	assert.Equal(t, 2, result.Updated)

	resp, _ = s.do(t, http.MethodPost, "/api/v1/claims/bulk-assign", map[string]interface{}{
		"claimIds": []string{first.ID},
		"userId":   "nobody",
	}, true)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, env = s.do(t, http.MethodGet, "/api/v1/claims/export?stage=ALL&assigneeId="+annotator.ID, nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "claims-export.csv")
	assert.Equal(t, "text/csv", resp.Header.Get(fiber.HeaderContentType))
	lines := strings.Split(strings.TrimSpace(string(env.Data)), "\n")
	assert.Len(t, lines, 3)

	// Filters are validated before the stream starts.
	resp, _ = s.do(t, http.MethodGet, "/api/v1/claims/export?stage=shipped", nil, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUploadCSV(t *testing.T) {
	s := newTestServer(t)

	upload := func(filename, content string) (*http.Response, envelope) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", &buf)
		req.Header.Set(fiber.HeaderContentType, mw.FormDataContentType())
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+s.token)
		return s.send(t, req)
	}

	csv := "Patient First Name,Patient Last Name,MRN,Primary Insurance,Claim ID,Date of Service,Charge Amount\n" +
		"Jane,Doe,MRN-1,Aetna,CLM-1,2024-01-15,\"$1,200.50\"\n" +
		"John,Roe,MRN-2,Cigna,,2024-01-16,10\n"
	resp, env := upload("claims.csv", csv)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Error)
	var result struct {
		Imported int `json:"imported"`
		Total    int `json:"total"`
	}
	decodeData(t, env, &result)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 2, result.Total)

	resp, _ = upload("claims.xlsx", csv)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = upload("empty.csv", "Claim ID\n")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = upload("big.csv", csv+strings.Repeat("x", 1024*1024))
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestCreateUserAdminOnly(t *testing.T) {
	s := newTestServer(t)

	body := map[string]string{"name": "Mike Johnson", "email": "mike@example.com", "password": "password123", "role": "ANNOTATOR"}
	resp, env := s.do(t, http.MethodPost, "/api/v1/users", body, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Error)

	resp, _ = s.do(t, http.MethodPost, "/api/v1/users", body, true)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// the annotator cannot create users
	s.token = s.login(t, "mike@example.com", "password123")
	body["email"] = "other@example.com"
	resp, _ = s.do(t, http.MethodPost, "/api/v1/users", body, true)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, env = s.do(t, http.MethodGet, "/api/v1/users", nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var users []models.UserResponse
	decodeData(t, env, &users)
	assert.Len(t, users, 2)

	resp, env = s.do(t, http.MethodGet, "/api/v1/users?role=annotator", nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeData(t, env, &users)
	require.Len(t, users, 1)
	assert.Equal(t, "mike@example.com", users[0].Email)

	resp, _ = s.do(t, http.MethodGet, "/api/v1/users?role=owner", nil, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDashboardSummary(t *testing.T) {
	s := newTestServer(t)
	testutil.CreateClaim(t, s.db, "A-1")

	resp, env := s.do(t, http.MethodGet, "/api/v1/dashboard", nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), `"totalClaims":1`)
}
