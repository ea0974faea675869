package npm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/adoptioncheck/radar/internal/core"
)

func TestCollect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var resp map[string]interface{}
		switch {
		case strings.HasPrefix(r.URL.Path, "/downloads/point/last-month/"):
			resp = map[string]interface{}{
				"downloads": 5200000,
				"start":     "2026-07-26",
				"end":       "2026-08-25",
				"package":   "langchain",
			}
		case strings.HasPrefix(r.URL.Path, "/downloads/point/last-week/"):
			resp = map[string]interface{}{
				"downloads": 1230000,
				"package":   "langchain",
			}
		default:
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	col := New(server.URL, core.DefaultClient())
	metric, err := col.Collect(context.Background(), core.TechnologySpec{Name: "langchain", NPMPackage: "langchain"})
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if metric.PrimaryCount != 5200000 {
		t.Errorf("expected 5200000 monthly downloads, got %d", metric.PrimaryCount)
	}
	if metric.SecondaryCount != 1230000 {
		t.Errorf("expected 1230000 weekly downloads, got %d", metric.SecondaryCount)
	}
	if metric.Metadata["period_start"] != "2026-07-26" {
		t.Errorf("unexpected period_start: %v", metric.Metadata["period_start"])
	}
}

func TestCollectScoped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Path can be encoded in different ways depending on the URL library
		if !strings.Contains(r.URL.Path, "anthropic-ai") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"downloads": 42, "package": "@anthropic-ai/sdk"})
	}))
	defer server.Close()

	col := New(server.URL, core.DefaultClient())
	metric, err := col.Collect(context.Background(), core.TechnologySpec{Name: "anthropic-claude", NPMPackage: "@anthropic-ai/sdk"})
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if metric.PrimaryCount != 42 {
		t.Errorf("expected 42 downloads, got %d", metric.PrimaryCount)
	}
}

func TestCollectZeroDownloadsIsValid(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"downloads": 0, "package": "dormant"})
	}))
	defer server.Close()

	col := New(server.URL, core.DefaultClient())
	metric, err := col.Collect(context.Background(), core.TechnologySpec{Name: "dormant", NPMPackage: "dormant"})
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if !metric.FetchSucceeded {
		t.Error("zero downloads is a successful observation")
	}
	if metric.PrimaryCount != 0 {
		t.Errorf("expected 0 downloads, got %d", metric.PrimaryCount)
	}
}

func TestCollectNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	col := New(server.URL, core.DefaultClient())
	_, err := col.Collect(context.Background(), core.TechnologySpec{Name: "ghost", NPMPackage: "ghost-package"})

	var notFound *core.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %T: %v", err, err)
	}
}

func TestURLs(t *testing.T) {
	col := New("", core.DefaultClient())
	urls := col.URLs()

	if got := urls.Page("langchain"); got != "https://www.npmjs.com/package/langchain" {
		t.Errorf("unexpected page URL: %q", got)
	}
	if got := urls.PURL("@anthropic-ai/sdk"); got != "pkg:npm/@anthropic-ai/sdk" {
		t.Errorf("unexpected purl: %q", got)
	}
	if got := urls.PURL("stripe"); got != "pkg:npm/stripe" {
		t.Errorf("unexpected purl: %q", got)
	}
}
