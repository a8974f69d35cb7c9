package copomex

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/msalazar/tanda-service/internal/config"
	"github.com/sirupsen/logrus"
)

func TestLookupByPostalCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/info_cp/06700" {
			t.Errorf("path = %q, want /info_cp/06700", r.URL.Path)
		}
		if r.URL.Query().Get("token") != "tok" {
			t.Errorf("token = %q, want tok", r.URL.Query().Get("token"))
		}
		w.Write([]byte(`{"response":{"estado":"Ciudad de México","municipio":"Cuauhtémoc","asentamiento":["Roma Norte","Roma Norte","Condesa"]}}`))
	}))
	defer srv.Close()

	log := logrus.New()
	log.SetOutput(io.Discard)
	c := NewClient(&config.Config{CopomexBaseURL: srv.URL, CopomexToken: "tok"}, log)

	addr, err := c.LookupByPostalCode(context.Background(), "06700")
	if err != nil {
		t.Fatalf("LookupByPostalCode() error = %v", err)
	}
	if addr.State != "Ciudad de México" || addr.Municipality != "Cuauhtémoc" {
		t.Errorf("unexpected address: %+v", addr)
	}
	if want := []string{"Roma Norte", "Condesa"}; !reflect.DeepEqual(addr.Colonies, want) {
		t.Errorf("colonies = %v, want %v (deduplicated)", addr.Colonies, want)
	}
}

func TestLookupErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	log := logrus.New()
	log.SetOutput(io.Discard)
	c := NewClient(&config.Config{CopomexBaseURL: srv.URL}, log)

	if _, err := c.LookupByPostalCode(context.Background(), "00000"); err == nil {
		t.Fatal("LookupByPostalCode() expected error on 404")
	}
}
