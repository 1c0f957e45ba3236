package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	token, exp, err := Issue("admin", "absensi", "secret", time.Hour)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	claims, err := Parse(token, "secret", "absensi")
	require.NoError(t, err)
	require.Equal(t, "admin", claims.Role)
	require.NotEmpty(t, claims.ID, "session tokens carry a unique jti")
}

func TestParse_RejectsWrongKeyAndIssuer(t *testing.T) {
	token, _, err := Issue("admin", "absensi", "secret", time.Hour)
	require.NoError(t, err)

	_, err = Parse(token, "other-secret", "absensi")
	require.Error(t, err)

	_, err = Parse(token, "secret", "someone-else")
	require.Error(t, err)
}

func TestParse_RejectsExpired(t *testing.T) {
	token, _, err := Issue("admin", "absensi", "secret", -time.Minute)
	require.NoError(t, err)

	_, err = Parse(token, "secret", "absensi")
	require.Error(t, err)
}

func adminRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", AdminOnly("secret", "absensi"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestAdminOnly_ForbiddenWithoutSession(t *testing.T) {
	r := adminRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "garbage"})
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminOnly_ForbiddenForNonAdminRole(t *testing.T) {
	r := adminRouter()
	token, _, err := Issue("viewer", "absensi", "secret", time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminOnly_AllowsValidSession(t *testing.T) {
	r := adminRouter()
	token, _, err := Issue("admin", "absensi", "secret", time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}
