package moonshot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

func runOnce(t *testing.T, m *KimiModel, req *model.LLMRequest) (*model.LLMResponse, error) {
	t.Helper()
	for resp, err := range m.GenerateContent(context.Background(), req, false) {
		return resp, err
	}
	t.Fatal("expected one response from GenerateContent")
	return nil, nil
}

func TestGenerateContentJSONMode(t *testing.T) {
	var captured chatRequest
	var authHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		authHeader = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"disease\":\"Flu\"}"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	m := NewModel(Config{APIKey: "sk-test", BaseURL: server.URL, HTTPClient: server.Client()})
	resp, err := runOnce(t, m, &model.LLMRequest{
		Contents: genai.Text("Based on these symptoms: fever, cough"),
		Config: &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: map[string]*genai.Schema{"disease": {Type: genai.TypeString}},
				Required:   []string{"disease"},
			},
			Tools: []*genai.Tool{{GoogleMaps: &genai.GoogleMaps{}}},
		},
	})
	if err != nil {
		t.Fatalf("GenerateContent returned error: %v", err)
	}

	if authHeader != "Bearer sk-test" {
		t.Fatalf("unexpected auth header %q", authHeader)
	}
	if captured.Model != defaultModel {
		t.Fatalf("expected default model, got %q", captured.Model)
	}
	if captured.ResponseFormat == nil || captured.ResponseFormat.Type != "json_object" {
		t.Fatalf("expected json_object response format, got %+v", captured.ResponseFormat)
	}
	if len(captured.Messages) != 2 {
		t.Fatalf("expected schema instruction plus user message, got %d messages", len(captured.Messages))
	}
	if captured.Messages[0].Role != "system" || !strings.Contains(captured.Messages[0].Content, "disease") {
		t.Fatalf("expected schema in system message, got %+v", captured.Messages[0])
	}
	if captured.Messages[1].Role != "user" || !strings.Contains(captured.Messages[1].Content, "fever, cough") {
		t.Fatalf("unexpected user message: %+v", captured.Messages[1])
	}

	if resp.Content == nil || len(resp.Content.Parts) != 1 || resp.Content.Parts[0].Text != `{"disease":"Flu"}` {
		t.Fatalf("unexpected content: %+v", resp.Content)
	}
	if resp.FinishReason != genai.FinishReasonStop {
		t.Fatalf("expected stop finish reason, got %q", resp.FinishReason)
	}
}

func TestGenerateContentNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid key","type":"auth"}}`))
	}))
	defer server.Close()

	m := NewModel(Config{APIKey: "bad", BaseURL: server.URL, HTTPClient: server.Client()})
	_, err := runOnce(t, m, &model.LLMRequest{Contents: genai.Text("hi")})
	if err == nil || !strings.Contains(err.Error(), "status 401") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestGenerateContentEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	m := NewModel(Config{APIKey: "sk", BaseURL: server.URL, HTTPClient: server.Client()})
	if _, err := runOnce(t, m, &model.LLMRequest{Contents: genai.Text("hi")}); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestConvertMessagesMapsRolesAndSkipsEmptyContent(t *testing.T) {
	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: "hello"}, {Text: "  "}, {Text: "again"}}},
		nil,
		{Role: "model", Parts: []*genai.Part{{Text: "hi there"}}},
		{Role: "user", Parts: []*genai.Part{{InlineData: &genai.Blob{MIMEType: "image/png"}}}},
	}

	messages := convertMessages(contents)
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d: %+v", len(messages), messages)
	}
	if messages[0].Role != "user" || messages[0].Content != "hello\nagain" {
		t.Fatalf("unexpected user message: %+v", messages[0])
	}
	if messages[1].Role != "assistant" || messages[1].Content != "hi there" {
		t.Fatalf("unexpected assistant message: %+v", messages[1])
	}
}
