// Package docs CaseTrack API.
//
// Documentation of the SAPS CaseTrack API.
//
//     Schemes: https
//     BasePath: /
//     Version: 1.0.0
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
//     Security:
//     - basic
//     - bearer
//
//    SecurityDefinitions:
//    basic:
//      type: basic
//    bearer:
//      type: apiKey
//      name: Authorization
//      in: header
//
// swagger:meta
package docs

import (
	"github.com/linesmerrill/casetrack-api/api"
	"github.com/linesmerrill/casetrack-api/models"
)

// swagger:route GET /health health healthEndpointID
// Lists the healthchex of the web service api.
// responses:
//   200: healthResponse

// Shows the current health of the api. true means it is alive, false means it is not.
// swagger:response healthResponse
type healthResponseWrapper struct {
	// in:body
	Body models.HealthCheckResponse
}

// swagger:route POST /api/v1/auth/register auth register
// Registers a victim. Police and administrator accounts are created through /api/v1/users.
// responses:
//   201: userResponse
//   400: errorResponse
//   409: errorResponse

// swagger:parameters register
type registerParamsWrapper struct {
	// in:body
	Body models.RegisterRequest
}

// swagger:route POST /api/v1/users users createStaff
// Creates a police or administrator account. Administrators only.
// responses:
//   201: userResponse
//   400: errorResponse
//   401: errorResponse
//   403: errorResponse
//   409: errorResponse

// swagger:parameters createStaff
type createStaffParamsWrapper struct {
	// in:body
	Body models.StaffRequest
}

// The registered user.
// swagger:response userResponse
type userResponseWrapper struct {
	// in:body
	Body models.User
}

// swagger:route POST /api/v1/auth/token auth token
// Issues a bearer token for basic credentials. The role query parameter must match the registered role.
// responses:
//   200: tokenResponse
//   401: errorResponse

// swagger:response tokenResponse
type tokenResponseWrapper struct {
	// in:body
	Body api.TokenResponse
}

// swagger:route POST /api/v1/cases cases createCase
// Files a new case for the calling victim.
// responses:
//   201: caseResponse
//   400: errorResponse

// swagger:parameters createCase
type createCaseParamsWrapper struct {
	// in:body
	Body models.CreateCaseRequest
}

// swagger:route GET /api/v1/cases/{case_id} cases caseByID
// Gets a single case by ID. Victims only see their own cases.
// responses:
//   200: caseResponse
//   404: errorResponse

// swagger:route PUT /api/v1/cases/{case_id}/status cases updateCaseStatus
// Moves a case to a new stage and notifies the victim.
// responses:
//   200: caseResponse
//   400: errorResponse
//   404: errorResponse

// swagger:parameters updateCaseStatus
type updateCaseStatusParamsWrapper struct {
	// in:path
	CaseID string `json:"case_id"`
	// in:body
	Body models.TransitionRequest
}

// swagger:route POST /api/v1/cases/{case_id}/escalate cases escalateCase
// Escalates a case for priority handling.
// responses:
//   200: caseResponse
//   404: errorResponse

// A single case with its timeline.
// swagger:response caseResponse
type caseResponseWrapper struct {
	// in:body
	Body models.Case
}

// swagger:route GET /api/v1/cases cases listCases
// Lists cases for the police and admin dashboards.
// responses:
//   200: casesResponse

// swagger:response casesResponse
type casesResponseWrapper struct {
	// in:body
	Body []models.Case
}

// swagger:route GET /api/v1/stats cases caseStats
// Summarises every case.
// responses:
//   200: statsResponse

// swagger:response statsResponse
type statsResponseWrapper struct {
	// in:body
	Body models.CaseStats
}

// swagger:route GET /api/v1/notifications notifications listNotifications
// Lists the caller's notifications, newest first.
// responses:
//   200: notificationsResponse

// swagger:response notificationsResponse
type notificationsResponseWrapper struct {
	// in:header
	UnreadCount int64 `json:"X-Unread-Count"`
	// in:body
	Body []models.Notification
}

// swagger:response errorResponse
type errorResponseWrapper struct {
	// in:body
	Body models.ErrorMessageResponse
}
