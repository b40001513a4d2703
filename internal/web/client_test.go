package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"
)

func newTestClient(timeout time.Duration, maxRedirects int) *Client {
	return NewClient(timeout, maxRedirects, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// redirectChain serves /hop/N, redirecting N times before answering /final
func redirectChain() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/hop/", func(w http.ResponseWriter, r *http.Request) {
		n, _ := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/hop/"))
		if n <= 0 {
			http.Redirect(w, r, "/final", http.StatusFound)
			return
		}
		http.Redirect(w, r, fmt.Sprintf("/hop/%d", n-1), http.StatusFound)
	})
	mux.HandleFunc("/final", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("done"))
	})
	return httptest.NewServer(mux)
}

func TestNewClientDefaults(t *testing.T) {
	client := newTestClient(0, 0)
	if client.redirectTimeout != DefaultRedirectTimeout {
		t.Errorf("Expected timeout %v, got %v", DefaultRedirectTimeout, client.redirectTimeout)
	}
	if client.maxRedirects != DefaultMaxRedirects {
		t.Errorf("Expected %d redirects, got %d", DefaultMaxRedirects, client.maxRedirects)
	}
}

func TestFinalRedirectURL(t *testing.T) {
	server := redirectChain()
	defer server.Close()

	client := newTestClient(time.Second, 100)

	final, err := client.FinalRedirectURL(context.Background(), server.URL+"/hop/3")
	if err != nil {
		t.Fatalf("FinalRedirectURL failed: %v", err)
	}
	if final != server.URL+"/final" {
		t.Errorf("Expected %s/final, got %s", server.URL, final)
	}

	final, err = client.FinalRedirectURL(context.Background(), server.URL+"/final")
	if err != nil || final != server.URL+"/final" {
		t.Errorf("Expected a URL without redirects to resolve to itself, got %s, %v", final, err)
	}
}

func TestFinalRedirectURL_StopsAtLimit(t *testing.T) {
	server := redirectChain()
	defer server.Close()

	client := newTestClient(time.Second, 2)

	final, err := client.FinalRedirectURL(context.Background(), server.URL+"/hop/5")
	if err != nil {
		t.Fatalf("FinalRedirectURL failed: %v", err)
	}
	if final != server.URL+"/hop/4" {
		t.Errorf("Expected to stop after one followed hop at /hop/4, got %s", final)
	}
}

func TestFinalRedirectURL_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := newTestClient(50*time.Millisecond, 100)

	_, err := client.FinalRedirectURL(context.Background(), server.URL)
	if err == nil || !strings.HasPrefix(err.Error(), "request error") {
		t.Errorf("Expected a request error on timeout, got %v", err)
	}
}

func TestGetHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/page":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte("<html><title>hi</title></html>"))
		default:
			w.Header().Set("Content-Type", "image/png")
			w.Write([]byte{0x89})
		}
	}))
	defer server.Close()

	client := newTestClient(time.Second, 10)

	html, err := client.GetHTML(context.Background(), server.URL+"/page")
	if err != nil {
		t.Fatalf("GetHTML failed: %v", err)
	}
	if html != "<html><title>hi</title></html>" {
		t.Errorf("Unexpected body %q", html)
	}

	html, err = client.GetHTML(context.Background(), server.URL+"/image")
	if err != nil || html != "" {
		t.Errorf("Expected empty string for non-HTML, got %q, %v", html, err)
	}
}

func TestGetAPI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/json":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"name":"renflow","items":[1,2]}`))
		case "/broken":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"name":`))
		default:
			w.Header().Set("Content-Type", "text/plain")
			w.Write([]byte("plain"))
		}
	}))
	defer server.Close()

	client := newTestClient(time.Second, 10)

	value, err := client.GetAPI(context.Background(), server.URL+"/json")
	if err != nil {
		t.Fatalf("GetAPI failed: %v", err)
	}
	object, ok := value.(map[string]any)
	if !ok || object["name"] != "renflow" {
		t.Errorf("Unexpected value %#v", value)
	}

	_, err = client.GetAPI(context.Background(), server.URL+"/text")
	if !errors.Is(err, ErrNotJSON) || err.Error() != "Response is not JSON" {
		t.Errorf("Expected ErrNotJSON, got %v", err)
	}

	if _, err = client.GetAPI(context.Background(), server.URL+"/broken"); err == nil {
		t.Error("Expected decode error for malformed JSON")
	}
}
