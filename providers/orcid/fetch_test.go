package orcid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"scholar-sync/config"
)

func newTestFetcher(baseURL string) *Fetcher {
	return NewFetcher(&config.Config{OrcidBaseURL: baseURL}, zap.NewNop())
}

func TestFetchFullProfileMalformedPersonSection(t *testing.T) {
	// Ein 200er mit kaputtem JSON zählt wie ein fehlgeschlagener Abruf: die
	// person-Sektion bleibt nil, damit der Sync den Kernbestand nicht mit
	// einem leeren Person-Knoten abräumt.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not valid json}`))
	}))
	defer server.Close()

	profile := newTestFetcher(server.URL).FetchFullProfile("0000-0001-0000-0001")
	if profile.Person != nil {
		t.Fatalf("expected nil person for malformed body, got %+v", profile.Person)
	}
	if _, ok := profile.Raw["person"]; !ok {
		t.Fatal("raw payload must be kept for archival even when parsing fails")
	}
}

func TestFetchFullProfileParsesPersonSection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/person") {
			w.Write([]byte(`{"name": {"credit-name": {"value": "Ada Lovelace"}}}`))
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	profile := newTestFetcher(server.URL).FetchFullProfile("0000-0001-0000-0001")
	if profile.Person == nil {
		t.Fatal("expected person section")
	}
	if got := profile.Person.Name.DisplayName(); got != "Ada Lovelace" {
		t.Fatalf("display name = %q, want Ada Lovelace", got)
	}
}

func TestFetchFullProfileMissingPersonEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/person") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	profile := newTestFetcher(server.URL).FetchFullProfile("0000-0001-0000-0001")
	if profile.Person != nil {
		t.Fatalf("expected nil person for missing endpoint, got %+v", profile.Person)
	}
	if _, ok := profile.Raw["person"]; ok {
		t.Fatal("no raw payload expected for a failed fetch")
	}
}
