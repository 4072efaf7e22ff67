package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/exam-planner/backend/internal/authz"
	"github.com/exam-planner/backend/internal/models"
)

func performWithClaims(t *testing.T, handler gin.HandlerFunc, claims *models.JWTClaims, params gin.Params) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Params = params
	if claims != nil {
		c.Set(ContextUserKey, claims)
	}

	handler(c)
	if !c.IsAborted() {
		c.Status(http.StatusOK)
	}
	return w
}

func TestRequirePermittedRole(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u1", Role: models.RoleSecretary}

	w := performWithClaims(t, Require(authz.ActionManagePeriods), claims, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireForbiddenRole(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u1", Role: models.RoleGroupLeader}

	w := performWithClaims(t, Require(authz.ActionManagePeriods), claims, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireUnknownRoleDenied(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u1", Role: models.UserRole("STUDENT")}

	w := performWithClaims(t, Require(authz.ActionViewExams), claims, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireWithoutClaims(t *testing.T) {
	w := performWithClaims(t, Require(authz.ActionViewExams), nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireSelfOrMatchingID(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u1", Role: models.RoleGroupLeader}
	params := gin.Params{{Key: "id", Value: "u1"}}

	w := performWithClaims(t, RequireSelfOr(authz.ActionManageUsers), claims, params)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireSelfOrMismatchedID(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u1", Role: models.RoleGroupLeader}
	params := gin.Params{{Key: "id", Value: "u2"}}

	w := performWithClaims(t, RequireSelfOr(authz.ActionManageUsers), claims, params)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
