package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
)

// doAuthJSON runs a handler with the given caller identity in the request
// context, the way the auth middleware would place it.
func doAuthJSON(t *testing.T, h echo.HandlerFunc, method, path, body string, userID uuid.UUID, role string, params ...string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	ctx := context.WithValue(req.Context(), auth.UserIDKey, userID)
	ctx = context.WithValue(ctx, auth.RoleKey, role)
	req = req.WithContext(ctx)

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

func TestAvailabilityHandler_RequiresExactlyOneMode(t *testing.T) {
	env := newTestEnv(t)
	h := NewHandler(env.svc)
	user := uuid.New()

	rec := doAuthJSON(t, h.Availability, http.MethodGet, "/availability", "", user, auth.RoleClient)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("neither date nor month: expected 400, got %d", rec.Code)
	}

	rec = doAuthJSON(t, h.Availability, http.MethodGet,
		"/availability?date=2026-09-10&month=2026-09", "", user, auth.RoleClient)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("both date and month: expected 400, got %d", rec.Code)
	}
}

func TestAvailabilityHandler_Day(t *testing.T) {
	env := newTestEnv(t)
	svcID := env.quotes.addService(1000, 30)
	h := NewHandler(env.svc)

	path := fmt.Sprintf("/availability?date=2026-09-10&service_ids=%s", svcID)
	rec := doAuthJSON(t, h.Availability, http.MethodGet, path, "", uuid.New(), auth.RoleClient)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result DayAvailability
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Date != "2026-09-10" || result.DurationMinutes != 30 || len(result.Slots) == 0 {
		t.Errorf("unexpected day availability: %+v", result)
	}
}

func TestAvailabilityHandler_Month(t *testing.T) {
	env := newTestEnv(t)
	h := NewHandler(env.svc)

	rec := doAuthJSON(t, h.Availability, http.MethodGet, "/availability?month=2026-09", "", uuid.New(), auth.RoleClient)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result MonthAvailability
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Month != "2026-09" || len(result.Days) != 30 {
		t.Errorf("unexpected month availability: %+v", result)
	}
}

func TestAvailabilityHandler_BadServiceIDs(t *testing.T) {
	env := newTestEnv(t)
	h := NewHandler(env.svc)

	rec := doAuthJSON(t, h.Availability, http.MethodGet,
		"/availability?date=2026-09-10&service_ids=nope", "", uuid.New(), auth.RoleClient)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed service_ids, got %d", rec.Code)
	}
}

func TestCreateBookingHandler(t *testing.T) {
	env := newTestEnv(t)
	svcID := env.quotes.addService(5000, 30)
	h := NewHandler(env.svc)
	user := uuid.New()

	body := fmt.Sprintf(`{"service_ids":[%q],"start_at":%q}`, svcID, day(16, 0).Format(time.RFC3339))
	rec := doAuthJSON(t, h.CreateBooking, http.MethodPost, "/bookings", body, user, auth.RoleClient)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp createBookingResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Booking.UserID != user || resp.Booking.Status != StatusPending {
		t.Errorf("unexpected booking: %+v", resp.Booking)
	}
	if resp.Quote.TotalPrice != 5000 {
		t.Errorf("unexpected quote: %+v", resp.Quote)
	}

	// The slot is now taken.
	body = fmt.Sprintf(`{"service_ids":[%q],"start_at":%q}`, svcID, day(16, 15).Format(time.RFC3339))
	rec = doAuthJSON(t, h.CreateBooking, http.MethodPost, "/bookings", body, uuid.New(), auth.RoleClient)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for occupied slot, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCreateBookingHandler_Rejections(t *testing.T) {
	env := newTestEnv(t)
	svcID := env.quotes.addService(1000, 30)
	h := NewHandler(env.svc)
	user := uuid.New()

	rec := doAuthJSON(t, h.CreateBooking, http.MethodPost, "/bookings",
		fmt.Sprintf(`{"service_ids":[%q]}`, svcID), user, auth.RoleClient)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing start_at: expected 400, got %d", rec.Code)
	}

	past := env.now.Add(-time.Hour).Format(time.RFC3339)
	rec = doAuthJSON(t, h.CreateBooking, http.MethodPost, "/bookings",
		fmt.Sprintf(`{"service_ids":[%q],"start_at":%q}`, svcID, past), user, auth.RoleClient)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("past start: expected 400, got %d", rec.Code)
	}

	rec = doAuthJSON(t, h.CreateBooking, http.MethodPost, "/bookings",
		fmt.Sprintf(`{"service_ids":[%q],"start_at":%q}`, uuid.New(), day(16, 0).Format(time.RFC3339)),
		user, auth.RoleClient)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown service: expected 400, got %d", rec.Code)
	}
}

func TestGetBookingHandler_Ownership(t *testing.T) {
	env := newTestEnv(t)
	h := NewHandler(env.svc)
	owner := uuid.New()
	b := env.repo.addBooking(&Booking{UserID: owner, EmployeeID: env.emp,
		StartsAt: day(16, 0), EndsAt: day(17, 0), Status: StatusPending})

	rec := doAuthJSON(t, h.GetBooking, http.MethodGet, "/bookings/x", "", owner, auth.RoleClient, "id", b.ID.String())
	if rec.Code != http.StatusOK {
		t.Errorf("owner read: expected 200, got %d", rec.Code)
	}

	rec = doAuthJSON(t, h.GetBooking, http.MethodGet, "/bookings/x", "", uuid.New(), auth.RoleClient, "id", b.ID.String())
	if rec.Code != http.StatusForbidden {
		t.Errorf("stranger read: expected 403, got %d", rec.Code)
	}

	rec = doAuthJSON(t, h.GetBooking, http.MethodGet, "/bookings/x", "", uuid.New(), auth.RoleAdmin, "id", b.ID.String())
	if rec.Code != http.StatusOK {
		t.Errorf("admin read: expected 200, got %d", rec.Code)
	}

	rec = doAuthJSON(t, h.GetBooking, http.MethodGet, "/bookings/x", "", owner, auth.RoleClient, "id", uuid.NewString())
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id: expected 404, got %d", rec.Code)
	}
}

func TestCancelBookingHandler(t *testing.T) {
	env := newTestEnv(t)
	h := NewHandler(env.svc)
	owner := uuid.New()
	b := env.repo.addBooking(&Booking{UserID: owner, EmployeeID: env.emp,
		StartsAt: env.now.Add(5 * time.Hour), EndsAt: env.now.Add(6 * time.Hour), Status: StatusPending})

	rec := doAuthJSON(t, h.CancelBooking, http.MethodPatch, "/bookings/x/cancel", "", owner, auth.RoleClient, "id", b.ID.String())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	late := env.repo.addBooking(&Booking{UserID: owner, EmployeeID: env.emp,
		StartsAt: env.now.Add(time.Hour), EndsAt: env.now.Add(2 * time.Hour), Status: StatusPending})
	rec = doAuthJSON(t, h.CancelBooking, http.MethodPatch, "/bookings/x/cancel", "", owner, auth.RoleClient, "id", late.ID.String())
	if rec.Code != http.StatusConflict {
		t.Errorf("late cancellation: expected 409, got %d", rec.Code)
	}
}

func TestChangeStatusHandler(t *testing.T) {
	env := newTestEnv(t)
	h := NewHandler(env.svc)
	admin := uuid.New()
	b := env.repo.addBooking(&Booking{UserID: uuid.New(), EmployeeID: env.emp,
		StartsAt: day(16, 0), EndsAt: day(17, 0), Status: StatusPending})

	rec := doAuthJSON(t, h.ChangeStatus, http.MethodPatch, "/admin/bookings/x/status",
		`{"status":"confirmed"}`, admin, auth.RoleAdmin, "id", b.ID.String())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doAuthJSON(t, h.ChangeStatus, http.MethodPatch, "/admin/bookings/x/status",
		`{"status":"pending"}`, admin, auth.RoleAdmin, "id", b.ID.String())
	if rec.Code != http.StatusConflict {
		t.Errorf("invalid transition: expected 409, got %d", rec.Code)
	}

	rec = doAuthJSON(t, h.ChangeStatus, http.MethodPatch, "/admin/bookings/x/status",
		`{}`, admin, auth.RoleAdmin, "id", b.ID.String())
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing status: expected 400, got %d", rec.Code)
	}
}

func TestStatusLogHandler(t *testing.T) {
	env := newTestEnv(t)
	h := NewHandler(env.svc)
	admin := uuid.New()
	b := env.repo.addBooking(&Booking{UserID: uuid.New(), EmployeeID: env.emp,
		StartsAt: day(16, 0), EndsAt: day(17, 0), Status: StatusPending})

	doAuthJSON(t, h.ChangeStatus, http.MethodPatch, "/admin/bookings/x/status",
		`{"status":"confirmed"}`, admin, auth.RoleAdmin, "id", b.ID.String())

	rec := doAuthJSON(t, h.StatusLog, http.MethodGet, "/admin/bookings/x/log", "", admin, auth.RoleAdmin, "id", b.ID.String())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var entries []StatusLogEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(entries) != 1 || entries[0].ToStatus != StatusConfirmed {
		t.Errorf("unexpected log: %+v", entries)
	}
}

func TestBlockHandlers(t *testing.T) {
	env := newTestEnv(t)
	h := NewHandler(env.svc)
	admin := uuid.New()

	body := fmt.Sprintf(`{"starts_at":%q,"ends_at":%q,"note":"inventory"}`,
		day(12, 0).Format(time.RFC3339), day(14, 0).Format(time.RFC3339))
	rec := doAuthJSON(t, h.CreateBlock, http.MethodPost, "/admin/blocks", body, admin, auth.RoleAdmin)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created Block
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	inverted := fmt.Sprintf(`{"starts_at":%q,"ends_at":%q}`,
		day(14, 0).Format(time.RFC3339), day(12, 0).Format(time.RFC3339))
	rec = doAuthJSON(t, h.CreateBlock, http.MethodPost, "/admin/blocks", inverted, admin, auth.RoleAdmin)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("inverted interval: expected 400, got %d", rec.Code)
	}

	rec = doAuthJSON(t, h.DeleteBlock, http.MethodDelete, "/admin/blocks/x", "", admin, auth.RoleAdmin, "id", created.ID.String())
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}

	rec = doAuthJSON(t, h.DeleteBlock, http.MethodDelete, "/admin/blocks/x", "", admin, auth.RoleAdmin, "id", uuid.NewString())
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown block: expected 404, got %d", rec.Code)
	}
}

func TestListOwnBookingsHandler(t *testing.T) {
	env := newTestEnv(t)
	h := NewHandler(env.svc)
	owner := uuid.New()
	env.repo.addBooking(&Booking{UserID: owner, EmployeeID: env.emp,
		StartsAt: day(16, 0), EndsAt: day(17, 0), Status: StatusPending})
	env.repo.addBooking(&Booking{UserID: uuid.New(), EmployeeID: env.emp,
		StartsAt: day(18, 0), EndsAt: day(19, 0), Status: StatusPending})

	rec := doAuthJSON(t, h.ListOwnBookings, http.MethodGet, "/bookings", "", owner, auth.RoleClient)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 1 {
		t.Errorf("expected only the caller's booking, got total %d", resp.Total)
	}
}
