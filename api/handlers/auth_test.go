package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/casetrack-api/models"
)

func TestAuth_RegisterHandler(t *testing.T) {
	a := newTestApp(t)

	rr := executeRequest(a, jsonRequest("POST", "/api/v1/auth/register", "", models.RegisterRequest{
		FullName: "Thandi Mokoena",
		IDNumber: "8001015009087",
		Phone:    "0821234567",
		Password: testPassword,
		Role:     models.RoleVictim,
	}))
	checkResponseCode(t, http.StatusCreated, rr)

	var user models.User
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &user))
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "8001015009087@casetrack.saps.gov.za", user.Email)
	assert.NotContains(t, rr.Body.String(), "password")
	assert.NotContains(t, rr.Body.String(), "8001015009087\"")

	req := httptest.NewRequest("POST", "/api/v1/auth/token?role=victim", nil)
	req.SetBasicAuth("8001015009087@casetrack.saps.gov.za", testPassword)
	checkResponseCode(t, http.StatusOK, executeRequest(a, req))
}

func TestAuth_RegisterHandlerValidation(t *testing.T) {
	valid := models.RegisterRequest{
		FullName: "Thandi Mokoena",
		IDNumber: "9202204720083",
		Phone:    "0821234567",
		Password: testPassword,
		Role:     models.RoleVictim,
	}

	tests := []struct {
		name  string
		edit  func(r *models.RegisterRequest)
		field string
	}{
		{name: "bad checksum", edit: func(r *models.RegisterRequest) { r.IDNumber = "1234567890123" }, field: "saId"},
		{name: "short id", edit: func(r *models.RegisterRequest) { r.IDNumber = "920220472008" }, field: "saId"},
		{name: "short password", edit: func(r *models.RegisterRequest) { r.Password = "short" }, field: "password"},
		{name: "unknown role", edit: func(r *models.RegisterRequest) { r.Role = "detective" }, field: "role"},
		{name: "police role", edit: func(r *models.RegisterRequest) { r.Role = models.RolePolice }, field: "role"},
		{name: "admin role", edit: func(r *models.RegisterRequest) { r.Role = models.RoleAdmin }, field: "role"},
		{name: "missing name", edit: func(r *models.RegisterRequest) { r.FullName = "" }, field: "fullName"},
		{name: "bad email", edit: func(r *models.RegisterRequest) { r.Email = "not-an-email" }, field: "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestApp(t)
			body := valid
			tt.edit(&body)

			rr := executeRequest(a, jsonRequest("POST", "/api/v1/auth/register", "", body))
			checkResponseCode(t, http.StatusBadRequest, rr)

			var resp models.ErrorMessageResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Contains(t, resp.Response.Error, tt.field)
		})
	}
}

func TestAuth_RegisterAnonymousWithoutName(t *testing.T) {
	a := newTestApp(t)

	rr := executeRequest(a, jsonRequest("POST", "/api/v1/auth/register", "", models.RegisterRequest{
		IDNumber:  "8505150123081",
		Phone:     "0821234567",
		Password:  testPassword,
		Anonymous: true,
		Role:      models.RoleVictim,
	}))
	checkResponseCode(t, http.StatusCreated, rr)
}

func TestAuth_RegisterDuplicate(t *testing.T) {
	a := newTestApp(t)
	body := models.RegisterRequest{
		FullName: "Thandi Mokoena",
		IDNumber: "9876543210987",
		Phone:    "0821234567",
		Password: testPassword,
		Role:     models.RoleVictim,
	}

	checkResponseCode(t, http.StatusCreated, executeRequest(a, jsonRequest("POST", "/api/v1/auth/register", "", body)))
	checkResponseCode(t, http.StatusConflict, executeRequest(a, jsonRequest("POST", "/api/v1/auth/register", "", body)))
}

func TestAuth_LoginWithDifferentRole(t *testing.T) {
	a := newTestApp(t)
	registerAndLogin(t, a, 1, models.RoleVictim, "Thandi Mokoena")

	req := httptest.NewRequest("POST", "/api/v1/auth/token?role=admin", nil)
	req.SetBasicAuth("victim-1@example.com", testPassword)
	checkResponseCode(t, http.StatusUnauthorized, executeRequest(a, req))
}

func TestAuth_Logout(t *testing.T) {
	a := newTestApp(t)
	victim := registerAndLogin(t, a, 1, models.RoleVictim, "Thandi Mokoena")

	checkResponseCode(t, http.StatusOK, executeRequest(a, jsonRequest("GET", "/api/v1/cases/mine", victim.Token, nil)))
	checkResponseCode(t, http.StatusOK, executeRequest(a, jsonRequest("DELETE", "/api/v1/auth/logout", victim.Token, nil)))
	checkResponseCode(t, http.StatusUnauthorized, executeRequest(a, jsonRequest("GET", "/api/v1/cases/mine", victim.Token, nil)))
}

func TestAuth_RegisterWithoutRoleCreatesVictim(t *testing.T) {
	a := newTestApp(t)

	rr := executeRequest(a, jsonRequest("POST", "/api/v1/auth/register", "", models.RegisterRequest{
		FullName: "Thandi Mokoena",
		IDNumber: saID(7),
		Phone:    "0821234567",
		Password: testPassword,
	}))
	checkResponseCode(t, http.StatusCreated, rr)

	var user models.User
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &user))
	assert.Equal(t, models.RoleVictim, user.Role)
}

func TestAuth_CreateStaffHandler(t *testing.T) {
	a := newTestApp(t)
	admin := registerAndLogin(t, a, 1, models.RoleAdmin, "Admin Botha")
	victim := registerAndLogin(t, a, 2, models.RoleVictim, "Thandi Mokoena")

	body := models.StaffRequest{
		FullName: "Officer Naidoo",
		IDNumber: saID(3),
		Phone:    "0821234567",
		Email:    "naidoo@saps.example",
		Password: testPassword,
		Role:     models.RolePolice,
	}

	checkResponseCode(t, http.StatusUnauthorized, executeRequest(a, jsonRequest("POST", "/api/v1/users", "", body)))
	checkResponseCode(t, http.StatusForbidden, executeRequest(a, jsonRequest("POST", "/api/v1/users", victim.Token, body)))

	rr := executeRequest(a, jsonRequest("POST", "/api/v1/users", admin.Token, body))
	checkResponseCode(t, http.StatusCreated, rr)

	var user models.User
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &user))
	assert.Equal(t, models.RolePolice, user.Role)

	req := httptest.NewRequest("POST", "/api/v1/auth/token?role=police", nil)
	req.SetBasicAuth("naidoo@saps.example", testPassword)
	checkResponseCode(t, http.StatusOK, executeRequest(a, req))

	body.Role = models.RoleVictim
	body.IDNumber = saID(4)
	body.Email = "other@saps.example"
	checkResponseCode(t, http.StatusBadRequest, executeRequest(a, jsonRequest("POST", "/api/v1/users", admin.Token, body)))
}
