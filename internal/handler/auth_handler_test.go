package handler

import (
	"net/http"
	"testing"

	"employee-service/internal/model"
)

func TestRegisterHTTP(t *testing.T) {
	app := newTestApp(t)

	rec := app.request(t, http.MethodPost, "/auth/register", `{"email":"new@example.com","password":"secret"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: status = %d, want 201: %s", rec.Code, rec.Body)
	}
	body := decodeBody(t, rec)
	if body["message"] != "User registered successfully" {
		t.Errorf("message = %v", body["message"])
	}
	if body["linkedEmployeeId"] != nil {
		t.Errorf("linkedEmployeeId = %v, want null", body["linkedEmployeeId"])
	}
}

func TestRegisterHTTPLinksEmployee(t *testing.T) {
	app := newTestApp(t)

	employee := model.Employee{Name: "Casey Nguyen", Email: "casey@example.com"}
	if err := app.db.Create(&employee).Error; err != nil {
		t.Fatalf("seeding employee: %v", err)
	}

	rec := app.request(t, http.MethodPost, "/auth/register", `{"email":"casey@example.com","password":"secret"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: status = %d: %s", rec.Code, rec.Body)
	}
	body := decodeBody(t, rec)
	if got, ok := body["linkedEmployeeId"].(float64); !ok || uint(got) != employee.ID {
		t.Errorf("linkedEmployeeId = %v, want %d", body["linkedEmployeeId"], employee.ID)
	}
}

func TestRegisterHTTPActivation(t *testing.T) {
	app := newTestApp(t)

	first := app.request(t, http.MethodPost, "/auth/register", `{"email":"re@example.com","password":"one"}`, "")
	if first.Code != http.StatusCreated {
		t.Fatalf("first register: status = %d", first.Code)
	}
	second := app.request(t, http.MethodPost, "/auth/register", `{"email":"re@example.com","password":"two"}`, "")
	if second.Code != http.StatusOK {
		t.Fatalf("activation: status = %d, want 200: %s", second.Code, second.Body)
	}
	if body := decodeBody(t, second); body["message"] == "User registered successfully" {
		t.Error("activation response indistinguishable from fresh registration")
	}
}

func TestRegisterHTTPMissingFields(t *testing.T) {
	app := newTestApp(t)

	for _, body := range []string{`{"email":"x@example.com"}`, `{"password":"secret"}`, `{}`} {
		if rec := app.request(t, http.MethodPost, "/auth/register", body, ""); rec.Code != http.StatusBadRequest {
			t.Errorf("register %s: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestLoginHTTP(t *testing.T) {
	app := newTestApp(t)

	if rec := app.request(t, http.MethodPost, "/auth/register", `{"name":"Lee","email":"lee@example.com","password":"secret"}`, ""); rec.Code != http.StatusCreated {
		t.Fatalf("register: status = %d", rec.Code)
	}

	rec := app.request(t, http.MethodPost, "/auth/login", `{"email":"lee@example.com","password":"secret"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status = %d: %s", rec.Code, rec.Body)
	}
	body := decodeBody(t, rec)
	if body["token"] == nil || body["token"] == "" {
		t.Error("no token in login response")
	}
	user, ok := body["user"].(map[string]interface{})
	if !ok {
		t.Fatalf("no user payload: %s", rec.Body)
	}
	if user["email"] != "lee@example.com" || user["name"] != "Lee" || user["role"] != "employee" {
		t.Errorf("user payload = %v", user)
	}
	if _, present := user["employeeId"]; !present {
		t.Error("employeeId missing from user payload")
	}
}

func TestLoginHTTPInvalidCredentials(t *testing.T) {
	app := newTestApp(t)

	if rec := app.request(t, http.MethodPost, "/auth/register", `{"email":"known@example.com","password":"right"}`, ""); rec.Code != http.StatusCreated {
		t.Fatalf("register: status = %d", rec.Code)
	}

	// Unknown email and wrong password return the same status and body.
	unknown := app.request(t, http.MethodPost, "/auth/login", `{"email":"nobody@example.com","password":"x"}`, "")
	wrongPw := app.request(t, http.MethodPost, "/auth/login", `{"email":"known@example.com","password":"wrong"}`, "")

	if unknown.Code != http.StatusUnauthorized || wrongPw.Code != http.StatusUnauthorized {
		t.Fatalf("statuses = %d, %d, want 401 for both", unknown.Code, wrongPw.Code)
	}
	if unknown.Body.String() != wrongPw.Body.String() {
		t.Errorf("bodies differ: %q vs %q", unknown.Body, wrongPw.Body)
	}
	if body := decodeBody(t, unknown); body["error"] != "Invalid credentials" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestProfileHTTP(t *testing.T) {
	app := newTestApp(t)
	employee, token := app.seedEmployeeWithUser(t, "me@example.com")

	rec := app.request(t, http.MethodGet, "/api/users/profile", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("profile: status = %d: %s", rec.Code, rec.Body)
	}
	body := decodeBody(t, rec)
	user := body["user"].(map[string]interface{})
	if user["email"] != "me@example.com" {
		t.Errorf("profile user = %v", user)
	}
	if _, ok := user["password"]; ok {
		t.Error("password digest serialized in profile response")
	}
	linked, ok := body["employee"].(map[string]interface{})
	if !ok {
		t.Fatalf("no linked employee in profile: %s", rec.Body)
	}
	if uint(linked["id"].(float64)) != employee.ID {
		t.Errorf("linked employee id = %v, want %d", linked["id"], employee.ID)
	}
}
