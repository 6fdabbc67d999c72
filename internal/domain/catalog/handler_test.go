package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newTestHandler(t *testing.T) (*Handler, *mockServiceRepo, *mockPromotionRepo) {
	t.Helper()
	svc, services, promotions := newTestCatalog(t)
	return NewHandler(svc), services, promotions
}

func doJSON(t *testing.T, h echo.HandlerFunc, method, path, body string, params ...string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for i := 0; i+1 < len(params); i += 2 {
		c.SetParamNames(params[i])
		c.SetParamValues(params[i+1])
	}
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestQuoteHandler_OK(t *testing.T) {
	h, services, _ := newTestHandler(t)
	a := addService(t, services, "A", 5000, 30, true)

	body := fmt.Sprintf(`{"service_ids":[%q]}`, a.ID)
	rec := doJSON(t, h.Quote, http.MethodPost, "/quote", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var quote Quote
	if err := json.Unmarshal(rec.Body.Bytes(), &quote); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if quote.TotalPrice != 5000 || quote.TotalDurationMinutes != 30 {
		t.Errorf("unexpected quote: %+v", quote)
	}
}

func TestQuoteHandler_Selections(t *testing.T) {
	h, services, _ := newTestHandler(t)
	a := addService(t, services, "A", 1000, 20, true)

	body := fmt.Sprintf(`{"selections":[{"service_id":%q,"quantity":2}]}`, a.ID)
	rec := doJSON(t, h.Quote, http.MethodPost, "/quote", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var quote Quote
	if err := json.Unmarshal(rec.Body.Bytes(), &quote); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if quote.TotalPrice != 2000 || quote.TotalDurationMinutes != 40 {
		t.Errorf("expected quantity applied, got %+v", quote)
	}
}

func TestQuoteHandler_InvalidSelection(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doJSON(t, h.Quote, http.MethodPost, "/quote", `{"service_ids":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty selection, got %d", rec.Code)
	}

	rec = doJSON(t, h.Quote, http.MethodPost, "/quote", fmt.Sprintf(`{"service_ids":[%q]}`, uuid.New()))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown service, got %d", rec.Code)
	}
}

func TestListActiveServicesHandler(t *testing.T) {
	h, services, _ := newTestHandler(t)
	addService(t, services, "Visible", 1000, 30, true)
	addService(t, services, "Hidden", 1000, 30, false)

	rec := doJSON(t, h.ListActiveServices, http.MethodGet, "/services", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var items []Service
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Visible" {
		t.Errorf("expected only the active service, got %+v", items)
	}
}

func TestCreateServiceHandler(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doJSON(t, h.CreateService, http.MethodPost, "/admin/services",
		`{"name":"Massage","price":4500,"duration_minutes":45,"active":true}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created Service
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Error("expected assigned id")
	}

	rec = doJSON(t, h.CreateService, http.MethodPost, "/admin/services",
		`{"name":"","price":4500,"duration_minutes":45}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid service, got %d", rec.Code)
	}
}

func TestGetServiceHandler_NotFound(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doJSON(t, h.GetService, http.MethodGet, "/admin/services/x", "", "id", uuid.NewString())
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}

	rec = doJSON(t, h.GetService, http.MethodGet, "/admin/services/x", "", "id", "not-a-uuid")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed id, got %d", rec.Code)
	}
}

func TestUpdateServiceHandler(t *testing.T) {
	h, services, _ := newTestHandler(t)
	a := addService(t, services, "Old", 1000, 30, true)

	rec := doJSON(t, h.UpdateService, http.MethodPut, "/admin/services/x",
		`{"name":"New","price":1200,"duration_minutes":35,"active":true}`, "id", a.ID.String())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	updated, err := services.GetByID(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("fetch updated: %v", err)
	}
	if updated.Name != "New" || updated.Price != 1200 {
		t.Errorf("update not applied: %+v", updated)
	}
}

func TestDeleteServiceHandler(t *testing.T) {
	h, services, _ := newTestHandler(t)
	a := addService(t, services, "Doomed", 1000, 30, true)

	rec := doJSON(t, h.DeleteService, http.MethodDelete, "/admin/services/x", "", "id", a.ID.String())
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if _, err := services.GetByID(context.Background(), a.ID); err == nil {
		t.Error("expected service to be deleted")
	}
}

func TestCreatePromotionHandler(t *testing.T) {
	h, services, _ := newTestHandler(t)
	a := addService(t, services, "A", 2000, 30, true)

	body := fmt.Sprintf(`{"service_id":%q,"price":1500,"active":true}`, a.ID)
	rec := doJSON(t, h.CreatePromotion, http.MethodPost, "/admin/promotions", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h.CreatePromotion, http.MethodPost, "/admin/promotions",
		fmt.Sprintf(`{"service_id":%q,"price":1500}`, uuid.New()))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown service, got %d", rec.Code)
	}
}

func TestListServicesHandler_Paginated(t *testing.T) {
	h, services, _ := newTestHandler(t)
	for i := 0; i < 3; i++ {
		addService(t, services, fmt.Sprintf("S%d", i), 1000, 30, true)
	}

	rec := doJSON(t, h.ListServices, http.MethodGet, "/admin/services?limit=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Total   int  `json:"total"`
		HasMore bool `json:"has_more"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 3 || !resp.HasMore {
		t.Errorf("unexpected pagination envelope: %+v", resp)
	}
}
