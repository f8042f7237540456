package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func checkAccess(t *testing.T, env *testEnv, authenticated bool) bool {
	t.Helper()
	var req *http.Request
	if authenticated {
		req = env.request(http.MethodGet, "/premium/access", "")
	} else {
		req = httptest.NewRequest(http.MethodGet, "/premium/access", nil)
	}

	rr := httptest.NewRecorder()
	env.access.Check(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("Check failed: %d: %s", rr.Code, rr.Body.String())
	}

	var response map[string]bool
	json.Unmarshal(rr.Body.Bytes(), &response)
	return response["hasAccess"]
}

func TestCheckAnonymousHasNoAccess(t *testing.T) {
	env := newTestEnv(t)

	if checkAccess(t, env, false) {
		t.Error("Expected hasAccess false for anonymous caller")
	}
}

func TestCheckBeforeConfirm(t *testing.T) {
	env := newTestEnv(t)

	if checkAccess(t, env, true) {
		t.Error("Expected hasAccess false before any confirmation")
	}
}

func TestConfirmRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/premium/confirm", nil)
	rr := httptest.NewRecorder()
	env.access.Confirm(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestConfirmThenCheck(t *testing.T) {
	env := newTestEnv(t)

	rr := httptest.NewRecorder()
	env.access.Confirm(rr, env.request(http.MethodPost, "/premium/confirm", ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("Confirm failed: %d: %s", rr.Code, rr.Body.String())
	}

	if !checkAccess(t, env, true) {
		t.Error("Expected hasAccess true after confirmation")
	}

	// the remote flag was flipped too
	if env.flags.status["u1"] != "active" {
		t.Errorf("Expected subscription_status active, got %q", env.flags.status["u1"])
	}
}

func TestConfirmWithExplicitType(t *testing.T) {
	env := newTestEnv(t)

	rr := httptest.NewRecorder()
	env.access.Confirm(rr, env.request(http.MethodPost, "/premium/confirm", `{"type":"subscription"}`))
	if rr.Code != http.StatusOK {
		t.Fatalf("Confirm failed: %d: %s", rr.Code, rr.Body.String())
	}

	if !checkAccess(t, env, true) {
		t.Error("Expected hasAccess true after confirmation")
	}
}

func TestConfirmRejectsBadType(t *testing.T) {
	env := newTestEnv(t)

	rr := httptest.NewRecorder()
	env.access.Confirm(rr, env.request(http.MethodPost, "/premium/confirm", `{"type":"trial"}`))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestRevokeAccess(t *testing.T) {
	env := newTestEnv(t)

	rr := httptest.NewRecorder()
	env.access.Confirm(rr, env.request(http.MethodPost, "/premium/confirm", ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("Confirm failed: %d: %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	env.access.Revoke(rr, env.request(http.MethodPost, "/premium/revoke", ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("Revoke failed: %d: %s", rr.Code, rr.Body.String())
	}

	if checkAccess(t, env, true) {
		t.Error("Expected hasAccess false after revocation")
	}
	if env.flags.status["u1"] != "inactive" {
		t.Errorf("Expected subscription_status inactive, got %q", env.flags.status["u1"])
	}
}
