package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yukikurage/membership-api/internal/constants"
	"github.com/yukikurage/membership-api/internal/dto"
	"github.com/yukikurage/membership-api/internal/middleware"
	"github.com/yukikurage/membership-api/internal/notify"
	"github.com/yukikurage/membership-api/internal/repository"
	"github.com/yukikurage/membership-api/internal/security"
	"github.com/yukikurage/membership-api/internal/services"
	"github.com/yukikurage/membership-api/internal/testutil"
)

const testTokenTTL = 30 * time.Minute

type testEnv struct {
	db     *gorm.DB
	router *gin.Engine
	tokens *security.JWTService

	authService       *services.AuthService
	orgService        *services.OrganizationService
	roleService       *services.RoleService
	membershipService *services.MembershipService

	authHandler *AuthHandler
}

func setupTestEnv(t *testing.T) testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	log := zap.NewNop()

	dispatcher := notify.NewDispatcher(notify.NewLogNotifier(log), log, 1, 16)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		dispatcher.Close(ctx) //nolint:errcheck
	})

	store := repository.NewStore(db)
	tokens := security.NewJWTService("test-secret", "membership-test")
	authService := services.NewAuthService(store, security.NewBcryptHasher(4), dispatcher, log)
	roleService := services.NewRoleService(store)
	membershipService := services.NewMembershipService(store, dispatcher, log)
	orgService := services.NewOrganizationService(store, authService, dispatcher, log)
	statsService := services.NewStatsService(store)

	authHandler := NewAuthHandler(authService, tokens, testTokenTTL, log)

	r := gin.New()
	sessionStore := cookie.NewStore([]byte("secret"))
	sessionStore.Options(sessions.Options{Path: "/", MaxAge: int(testTokenTTL / time.Second), HttpOnly: true})
	r.Use(sessions.Sessions(constants.SessionCookieName, sessionStore))
	RegisterRoutes(r, Handlers{
		Auth:          authHandler,
		Organizations: NewOrganizationHandler(orgService, roleService, membershipService, log),
		Memberships:   NewMembershipHandler(orgService, roleService, membershipService, log),
		Stats:         NewStatsHandler(statsService, log),
	}, middleware.RequireAuth(tokens, authService), membershipService)

	return testEnv{
		db:                db,
		router:            r,
		tokens:            tokens,
		authService:       authService,
		orgService:        orgService,
		roleService:       roleService,
		membershipService: membershipService,
		authHandler:       authHandler,
	}
}

// doJSON sends body as JSON, authenticated with token when it is not empty.
func (env testEnv) doJSON(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env testEnv) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

// signupAndLogin creates an account through the API and returns the signup
// payload with a bearer token for it.
func (env testEnv) signupAndLogin(t *testing.T, email, orgName string) (dto.SignupResponse, string) {
	t.Helper()

	w := env.doJSON(http.MethodPost, "/signup", map[string]interface{}{
		"email":             email,
		"password":          "pw",
		"organization_name": orgName,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var signup dto.SignupResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &signup))

	return signup, env.login(t, email, "pw")
}

func (env testEnv) login(t *testing.T, email, password string) string {
	t.Helper()

	w := env.postForm("/token", url.Values{"username": {email}, "password": {password}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var token dto.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &token))
	return token.AccessToken
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Code
}
