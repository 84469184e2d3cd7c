package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"adcanvas/internal/tester"
)

func serve(h http.Handler, method, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/x", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCORS(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })
	h := CORS([]string{"http://localhost:5173", " "})(ok)

	rec := serve(h, http.MethodPost, "http://localhost:5173")
	tester.Eq(t, rec.Code, http.StatusTeapot)
	tester.Eq(t, rec.Header().Get("Access-Control-Allow-Origin"), "http://localhost:5173")
	tester.Eq(t, rec.Header().Get("Access-Control-Allow-Credentials"), "true")

	rec = serve(h, http.MethodOptions, "http://localhost:5173")
	tester.Eq(t, rec.Code, http.StatusNoContent)
	tester.True(t, rec.Header().Get("Access-Control-Allow-Headers") != "")

	rec = serve(h, http.MethodOptions, "http://evil.example")
	tester.Eq(t, rec.Code, http.StatusForbidden)

	rec = serve(h, http.MethodGet, "http://evil.example")
	tester.Eq(t, rec.Code, http.StatusTeapot)
	tester.Eq(t, rec.Header().Get("Access-Control-Allow-Origin"), "")

	rec = serve(h, http.MethodGet, "")
	tester.Eq(t, rec.Header().Get("Access-Control-Allow-Origin"), "*")
}

func TestCORS_AllowAll(t *testing.T) {
	h := CORS(nil)(http.NotFoundHandler())
	rec := serve(h, http.MethodGet, "http://anything.example")
	tester.Eq(t, rec.Header().Get("Access-Control-Allow-Origin"), "http://anything.example")
}
