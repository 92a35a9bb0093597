package dentalchart

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentalchart/dentalchart/internal/platform/auth"
)

func newTestServer(repo *mockRepo) *echo.Echo {
	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := auth.WithIdentity(c.Request().Context(), "dr-1", []string{auth.RoleDoctor})
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	})
	NewHandler(NewService(repo)).RegisterRoutes(e.Group("/api/v1"), e.Group("/fhir"))
	return e
}

func serve(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandler_UpdateTooth_FDI(t *testing.T) {
	repo := newMockRepo()
	e := newTestServer(repo)
	patient := uuid.New()

	rec := serve(e, http.MethodPut, "/api/v1/patients/"+patient.String()+"/teeth/36", `{"condition":"Decayed","notes":"occlusal"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(36), body["tooth_number"])
	assert.Equal(t, "LL6", body["palmer"])
	assert.Equal(t, "19", body["universal"])
	assert.Equal(t, "Decayed", body["condition"])
}

func TestHandler_UpdateTooth_OtherNotations(t *testing.T) {
	repo := newMockRepo()
	e := newTestServer(repo)
	patient := uuid.New().String()

	tests := []struct {
		path string
		fdi  int
	}{
		{"/teeth/3?notation=universal", 16},
		{"/teeth/K?notation=universal", 75},
		{"/teeth/UL2?notation=palmer", 22},
		{"/teeth/UR%20E?notation=palmer", 55},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := serve(e, http.MethodPut, "/api/v1/patients/"+patient+tt.path, `{"condition":"Filled"}`)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			var body ToothStatus
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.fdi, body.ToothNumber)
		})
	}
}

func TestHandler_UpdateTooth_Rejects(t *testing.T) {
	repo := newMockRepo()
	e := newTestServer(repo)
	patient := uuid.New().String()

	tests := []struct {
		name, target, body string
	}{
		{"bad patient", "/api/v1/patients/nope/teeth/11", `{"condition":"Filled"}`},
		{"bad fdi", "/api/v1/patients/" + patient + "/teeth/19", `{"condition":"Filled"}`},
		{"bad universal", "/api/v1/patients/" + patient + "/teeth/33?notation=universal", `{"condition":"Filled"}`},
		{"bad notation", "/api/v1/patients/" + patient + "/teeth/11?notation=iso", `{"condition":"Filled"}`},
		{"bad condition", "/api/v1/patients/" + patient + "/teeth/11", `{"condition":"Chipped"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(e, http.MethodPut, tt.target, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	assert.Zero(t, repo.upserts)
}

func TestHandler_ClickTooth(t *testing.T) {
	repo := newMockRepo()
	e := newTestServer(repo)
	patient := uuid.New().String()

	rec := serve(e, http.MethodPost, "/api/v1/patients/"+patient+"/teeth/click", `{"universal":"T","condition":"Crown"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(85), body["tooth_number"])
	assert.Equal(t, "LR E", body["palmer"])

	rec = serve(e, http.MethodPost, "/api/v1/patients/"+patient+"/teeth/click", `{"universal":"Z","condition":"Crown"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 1, repo.upserts)
}

func TestHandler_ListAndClear(t *testing.T) {
	repo := newMockRepo()
	e := newTestServer(repo)
	patient := uuid.New().String()

	serve(e, http.MethodPut, "/api/v1/patients/"+patient+"/teeth/11", `{"condition":"Crown"}`)

	rec := serve(e, http.MethodGet, "/api/v1/patients/"+patient+"/teeth", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "UR1", list[0]["palmer"])

	rec = serve(e, http.MethodDelete, "/api/v1/patients/"+patient+"/teeth/11", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = serve(e, http.MethodDelete, "/api/v1/patients/"+patient+"/teeth/11", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_GetChart(t *testing.T) {
	e := newTestServer(newMockRepo())
	patient := uuid.New().String()

	rec := serve(e, http.MethodGet, "/api/v1/patients/"+patient+"/chart?pediatric=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var chart Chart
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &chart))
	assert.True(t, chart.Pediatric)
	assert.Len(t, chart.Upper, 10)

	rec = serve(e, http.MethodGet, "/api/v1/patients/"+patient+"/chart?pediatric=maybe", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_RoleChecks(t *testing.T) {
	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := auth.WithIdentity(c.Request().Context(), "asst", []string{auth.RoleAssistant})
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	})
	NewHandler(NewService(newMockRepo())).RegisterRoutes(e.Group("/api/v1"), e.Group("/fhir"))
	patient := uuid.New().String()

	rec := serve(e, http.MethodPut, "/api/v1/patients/"+patient+"/teeth/11", `{"condition":"Crown"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = serve(e, http.MethodDelete, "/api/v1/patients/"+patient+"/teeth/11", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandler_SearchBodyStructuresFHIR(t *testing.T) {
	repo := newMockRepo()
	e := newTestServer(repo)
	patient := uuid.New().String()
	serve(e, http.MethodPut, "/api/v1/patients/"+patient+"/teeth/46", `{"condition":"RootCanal"}`)

	rec := serve(e, http.MethodGet, "/fhir/BodyStructure?patient=Patient/"+patient, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var bundle map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bundle))
	assert.Equal(t, "Bundle", bundle["resourceType"])
	assert.Equal(t, float64(1), bundle["total"])

	rec = serve(e, http.MethodGet, "/fhir/BodyStructure", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var outcome map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &outcome))
	assert.Equal(t, "OperationOutcome", outcome["resourceType"])
}
