package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transferpath/degree-audit-api/internal/models"
	"github.com/transferpath/degree-audit-api/internal/service"
)

const testSecret = "test-secret"

func signToken(t *testing.T, userID, role string, expiry time.Duration) string {
	t.Helper()
	claims := models.JWTClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func newProtectedRouter(roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	auth := service.NewAuthService(testSecret)
	group := r.Group("", JWT(auth))
	handlers := []gin.HandlerFunc{}
	if len(roles) > 0 {
		handlers = append(handlers, RBAC(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	group.GET("/students/:studentId/plans", handlers...)
	return r
}

func TestJWTRejectsMissingHeader(t *testing.T) {
	r := newProtectedRouter()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/students/student-1/plans", nil)
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTRejectsExpiredToken(t *testing.T) {
	r := newProtectedRouter()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/students/student-1/plans", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "student-1", models.RoleStudent, -time.Minute))
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAcceptsValidToken(t *testing.T) {
	r := newProtectedRouter()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/students/student-1/plans", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "student-1", models.RoleStudent, time.Minute))
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRBACAllowsListedRole(t *testing.T) {
	r := newProtectedRouter(models.RoleAdvisor)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/students/student-1/plans", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "advisor-1", models.RoleAdvisor, time.Minute))
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRBACDeniesOtherRole(t *testing.T) {
	r := newProtectedRouter(models.RoleAdmin)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/students/student-1/plans", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "student-1", models.RoleStudent, time.Minute))
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRBACSelfMatchesPathParam(t *testing.T) {
	r := newProtectedRouter("SELF", models.RoleAdvisor)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/students/student-1/plans", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "student-1", models.RoleStudent, time.Minute))
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/students/student-2/plans", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "student-1", models.RoleStudent, time.Minute))
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
