package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/brightpath/brightpath-backend/internal/appcheck"
	"github.com/brightpath/brightpath-backend/internal/logger"
)

type fakeVerifier struct {
	verdict appcheck.Verdict
	err     error
	calls   int
}

func (f *fakeVerifier) Verify(ctx context.Context, token string) (appcheck.Verdict, error) {
	f.calls++
	return f.verdict, f.err
}

func appCheckRouter(t *testing.T, mode AppCheckMode, verifier appcheck.TokenVerifier) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	am := NewAppCheckMiddleware(log, mode, verifier)

	r := gin.New()
	r.Use(am.Gate())
	r.GET("/ping", func(c *gin.Context) {
		verified, _ := c.Get(AppCheckVerifiedKey)
		c.JSON(http.StatusOK, gin.H{"verified": verified})
	})
	return r
}

func TestAppCheck_EnforceMissingToken(t *testing.T) {
	r := appCheckRouter(t, AppCheckEnforce, &fakeVerifier{})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["code"] != "APP_CHECK_REQUIRED" {
		t.Fatalf("expected APP_CHECK_REQUIRED, got %v", body["code"])
	}
}

func TestAppCheck_EnforceInvalidToken(t *testing.T) {
	r := appCheckRouter(t, AppCheckEnforce, &fakeVerifier{verdict: appcheck.Verdict{Valid: false}})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(AppCheckHeader, "bogus")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["code"] != "APP_CHECK_INVALID" {
		t.Fatalf("expected APP_CHECK_INVALID, got %v", body["code"])
	}
}

func TestAppCheck_EnforceValidTokenProceeds(t *testing.T) {
	r := appCheckRouter(t, AppCheckEnforce, &fakeVerifier{verdict: appcheck.Verdict{Valid: true}})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(AppCheckHeader, "good")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestAppCheck_WarnProceedsUnverified(t *testing.T) {
	r := appCheckRouter(t, AppCheckWarn, &fakeVerifier{})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 in warn mode, got %d", w.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["verified"] != false {
		t.Fatalf("expected unverified flag false, got %v", body["verified"])
	}
}

func TestAppCheck_WarnVerifierErrorProceeds(t *testing.T) {
	fv := &fakeVerifier{err: errors.New("verifier down")}
	r := appCheckRouter(t, AppCheckWarn, fv)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(AppCheckHeader, "token")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if fv.calls != 1 {
		t.Fatalf("expected exactly one verification attempt, got %d", fv.calls)
	}
}

func TestAppCheck_OffSkipsVerifier(t *testing.T) {
	fv := &fakeVerifier{}
	r := appCheckRouter(t, AppCheckOff, fv)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(AppCheckHeader, "token")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if fv.calls != 0 {
		t.Fatalf("expected verifier untouched, got %d calls", fv.calls)
	}
}

func TestParseAppCheckMode(t *testing.T) {
	if ParseAppCheckMode("ENFORCE") != AppCheckEnforce {
		t.Fatalf("expected enforce")
	}
	if ParseAppCheckMode("warn") != AppCheckWarn {
		t.Fatalf("expected warn")
	}
	if ParseAppCheckMode("") != AppCheckOff || ParseAppCheckMode("banana") != AppCheckOff {
		t.Fatalf("expected off fallback")
	}
}
