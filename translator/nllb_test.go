package translator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNLLBClientDefaults(t *testing.T) {
	c := NewNLLBClient("", "", 0)

	if c.baseURL != "http://localhost:8090" {
		t.Errorf("Default baseURL = %q", c.baseURL)
	}
	if c.model != DefaultNLLBModel {
		t.Errorf("Default model = %q", c.model)
	}
	if c.client.Timeout != 30*time.Second {
		t.Errorf("Default timeout = %v", c.client.Timeout)
	}
	if c.Name() != "nllb" {
		t.Errorf("Name() = %q", c.Name())
	}
}

func TestNLLBClientTrimsTrailingSlash(t *testing.T) {
	c := NewNLLBClient("http://inference:8090/", "", 0)
	if c.baseURL != "http://inference:8090" {
		t.Errorf("baseURL = %q", c.baseURL)
	}
}

func TestNLLBTranslate(t *testing.T) {
	var gotPayload struct {
		Text       string `json:"text"`
		SourceLang string `json:"source_lang"`
		TargetLang string `json:"target_lang"`
		Model      string `json:"model"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/translate" {
			t.Errorf("Path = %s, want /translate", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("Failed to decode payload: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{"translated_text": "Jël 500 mg suba ak ngoon"})
	}))
	defer server.Close()

	c := NewNLLBClient(server.URL, "", time.Second)

	result, err := c.Translate(context.Background(), Request{
		Text:       "Prendre 500 mg matin et soir",
		SourceLang: "fra_Latn",
		TargetLang: "wol_Latn",
	})
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	if result.TranslatedText != "Jël 500 mg suba ak ngoon" {
		t.Errorf("TranslatedText = %q", result.TranslatedText)
	}
	if result.Model != DefaultNLLBModel {
		t.Errorf("Model = %q", result.Model)
	}
	if result.Latency < 0 {
		t.Errorf("Latency = %v", result.Latency)
	}

	if gotPayload.Text != "Prendre 500 mg matin et soir" {
		t.Errorf("Server saw text %q", gotPayload.Text)
	}
	if gotPayload.SourceLang != "fra_Latn" || gotPayload.TargetLang != "wol_Latn" {
		t.Errorf("Server saw languages %q -> %q", gotPayload.SourceLang, gotPayload.TargetLang)
	}
	if gotPayload.Model != DefaultNLLBModel {
		t.Errorf("Server saw model %q", gotPayload.Model)
	}
}

func TestNLLBTranslateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewNLLBClient(server.URL, "", time.Second)

	_, err := c.Translate(context.Background(), Request{Text: "Prendre 500 mg"})
	if err == nil {
		t.Fatal("Expected error on 503")
	}
}

func TestNLLBTranslateMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	c := NewNLLBClient(server.URL, "", time.Second)

	_, err := c.Translate(context.Background(), Request{Text: "Prendre 500 mg"})
	if err == nil {
		t.Fatal("Expected error on malformed response")
	}
}

func TestNLLBTranslateContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		json.NewEncoder(w).Encode(map[string]string{"translated_text": "trop tard"})
	}))
	defer server.Close()

	c := NewNLLBClient(server.URL, "", time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := c.Translate(ctx, Request{Text: "Prendre 500 mg"})
	if err == nil {
		t.Fatal("Expected error on canceled context")
	}
}

func TestNLLBHealthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("Path = %s, want /health", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := NewNLLBClient(server.URL, "", time.Second)
	if err := c.Healthy(context.Background()); err != nil {
		t.Errorf("Healthy failed: %v", err)
	}
}

func TestNLLBHealthyFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	c := NewNLLBClient(server.URL, "", time.Second)
	if err := c.Healthy(context.Background()); err == nil {
		t.Error("Expected error on 503 health response")
	}

	// Unreachable server
	server.Close()
	if err := c.Healthy(context.Background()); err == nil {
		t.Error("Expected error when the server is down")
	}
}

func TestNLLBCustomModel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		json.NewDecoder(r.Body).Decode(&payload)
		if payload["model"] != "custom/checkpoint" {
			t.Errorf("Server saw model %q", payload["model"])
		}
		json.NewEncoder(w).Encode(map[string]string{"translated_text": "ok"})
	}))
	defer server.Close()

	c := NewNLLBClient(server.URL, "custom/checkpoint", time.Second)

	result, err := c.Translate(context.Background(), Request{Text: "texte"})
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if result.Model != "custom/checkpoint" {
		t.Errorf("Result model = %q", result.Model)
	}
}
