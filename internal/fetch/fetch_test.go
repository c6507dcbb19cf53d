package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestClient_Get_OK(t *testing.T) {
	var gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("<html>hello</html>"))
	}))
	defer ts.Close()

	c := NewClient(0)
	body, err := c.Get(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(body) != "<html>hello</html>" {
		t.Fatalf("unexpected body: %q", body)
	}
	if gotUA != defaultUserAgent {
		t.Fatalf("want user agent %q, got %q", defaultUserAgent, gotUA)
	}
}

func TestClient_Get_Non200(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	c := NewClient(0)
	_, err := c.Get(context.Background(), ts.URL)
	if err == nil {
		t.Fatal("expected error on 404")
	}
	if !strings.Contains(err.Error(), "unexpected http status 404") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_Get_BodyCap(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 100)))
	}))
	defer ts.Close()

	c := NewClient(0)
	c.MaxBodySize = 10
	body, err := c.Get(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(body) != 10 {
		t.Fatalf("want capped body of 10 bytes, got %d", len(body))
	}
}

func TestClient_Get_ContextCancel(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := NewClient(0)
	if _, err := c.Get(ctx, ts.URL); err == nil {
		t.Fatal("expected context deadline error")
	}
}
