package evaluations

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", "user-1")
		c.Next()
	})
	api := router.Group("/api/v1")
	NewHandler(svc).RegisterRoutes(api)
	return router
}

func TestEvaluateEndpoint(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(f.svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/companies/co-1/evaluations", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp EvaluationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.EvaluationID == "" || resp.CompanyID != "co-1" || resp.Total != 374 {
		t.Fatalf("response = %+v", resp)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/companies/co-1/evaluations", nil)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var listed []EvaluationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("unmarshal list: %v", err)
	}
	if len(listed) != 1 || listed[0].EvaluationID != resp.EvaluationID {
		t.Fatalf("listed = %+v", listed)
	}
}

func TestEvaluateEndpointScoringIncomplete(t *testing.T) {
	f := newFixture(t)
	company := f.comps.data["co-1"]
	company.ApplicationDocID = ""
	f.comps.data["co-1"] = company
	router := newTestRouter(f.svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/companies/co-1/evaluations", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "scoring_incomplete") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestEvaluateEndpointUnknownCompany(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(f.svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/companies/co-unknown/evaluations", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestReportEndpoint(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(f.svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/companies/co-1/evaluations", nil)
	router.ServeHTTP(rec, req)
	var resp EvaluationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/evaluations/"+resp.EvaluationID+"/report?format=markdown", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/markdown") {
		t.Fatalf("content type = %q", got)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "acme-robotics-evaluation.md") {
		t.Fatalf("disposition = %q", got)
	}
	if !strings.Contains(rec.Body.String(), "Acme Robotics") {
		t.Fatal("report body missing company name")
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/evaluations/"+resp.EvaluationID+"/report?format=csv", nil)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad format status = %d", rec.Code)
	}
}
