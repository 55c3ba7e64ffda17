package companies

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"dealflow-backend/internal/documents"
)

func newTestRouter(t *testing.T, svc *Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", "user-1")
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestHandlerCreateAndGet(t *testing.T) {
	svc, _ := newTestService()
	router := newTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/companies", strings.NewReader(`{"name":"Acme Robotics"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", resp.Code, resp.Body.String())
	}
	var created CompanyResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.CompanyID == "" || created.Name != "Acme Robotics" {
		t.Fatalf("unexpected response: %+v", created)
	}

	reqGet := httptest.NewRequest(http.MethodGet, "/api/v1/companies/"+created.CompanyID, nil)
	respGet := httptest.NewRecorder()
	router.ServeHTTP(respGet, reqGet)
	if respGet.Code != http.StatusOK {
		t.Fatalf("get status = %d", respGet.Code)
	}
}

func TestHandlerCreateRejectsBlankName(t *testing.T) {
	svc, _ := newTestService()
	router := newTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/companies", strings.NewReader(`{"name":"  "}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.Code)
	}
}

func TestHandlerLink(t *testing.T) {
	svc, docs := newTestService()
	docs.docs["doc-app"] = documents.Document{ID: "doc-app", UserID: "user-1"}
	router := newTestRouter(t, svc)

	company, err := svc.Create(context.Background(), "user-1", "Acme")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/companies/"+company.ID+"/link",
		strings.NewReader(`{"documentId":"doc-app","role":"application"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.Code, resp.Body.String())
	}
	var linked CompanyResponse
	if err := json.NewDecoder(resp.Body).Decode(&linked); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if linked.ApplicationDocID != "doc-app" {
		t.Fatalf("link not reflected: %+v", linked)
	}
}

func TestHandlerLinkForeignDocumentIs404(t *testing.T) {
	svc, docs := newTestService()
	docs.docs["doc-x"] = documents.Document{ID: "doc-x", UserID: "user-2"}
	router := newTestRouter(t, svc)

	company, err := svc.Create(context.Background(), "user-1", "Acme")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/companies/"+company.ID+"/link",
		strings.NewReader(`{"documentId":"doc-x","role":"application"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.Code)
	}
}
