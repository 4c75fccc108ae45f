package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestManagerEnsureMintsCookie(t *testing.T) {
	mgr := NewManager(false, 3600)
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	id := mgr.Ensure(w, r)
	if id == "" {
		t.Fatal("Ensure returned empty session ID")
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("%d cookies set, want 1", len(cookies))
	}
	c := cookies[0]
	if c.Name != CookieName {
		t.Errorf("cookie name = %q, want %q", c.Name, CookieName)
	}
	if c.Value != id {
		t.Errorf("cookie value = %q, want %q", c.Value, id)
	}
	if !c.HttpOnly {
		t.Error("cookie is not HttpOnly")
	}
}

func TestManagerEnsureReusesExistingCookie(t *testing.T) {
	mgr := NewManager(false, 3600)
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: "existing-id"})

	id := mgr.Ensure(w, r)
	if id != "existing-id" {
		t.Errorf("Ensure = %q, want existing-id", id)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("a new cookie was set although the request carried one")
	}
}

func TestSessionIDContext(t *testing.T) {
	ctx := WithSessionID(context.Background(), "abc")
	if got := IDFromContext(ctx); got != "abc" {
		t.Errorf("IDFromContext = %q, want abc", got)
	}
	if got := IDFromContext(context.Background()); got != "" {
		t.Errorf("IDFromContext on empty context = %q, want empty", got)
	}
}
