package llm

import (
	"context"
	"fmt"
	"testing"
)

func TestNewClient_InvalidProvider(t *testing.T) {
	_, err := NewClient(Config{Provider: "invalid", APIKey: "test"})
	if err == nil {
		t.Fatal("expected error for invalid provider")
	}
}

func TestNewClient_MissingAPIKey(t *testing.T) {
	for _, p := range []Provider{OpenAI, Groq} {
		_, err := NewClient(Config{Provider: p})
		if err == nil {
			t.Fatalf("expected error for %s without API key", p)
		}
	}
}

func TestNewClient_Ollama(t *testing.T) {
	client, err := NewClient(Config{Provider: Ollama, BaseURL: "http://localhost:11434"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.Provider() != Ollama {
		t.Fatalf("expected Ollama provider, got %s", client.Provider())
	}
	client.Close()
}

func TestConfigured(t *testing.T) {
	if (Config{Provider: OpenAI}).Configured() {
		t.Fatal("hosted provider without key should not be configured")
	}
	if !(Config{Provider: OpenAI, APIKey: "sk-x"}).Configured() {
		t.Fatal("hosted provider with key should be configured")
	}
	if !(Config{Provider: Ollama}).Configured() {
		t.Fatal("ollama needs no key")
	}
}

func TestEstimateCost(t *testing.T) {
	cost := EstimateCost("gpt-4o-mini", 1000, 500)
	if cost <= 0 {
		t.Fatalf("expected positive cost, got %f", cost)
	}
	// gpt-4o-mini: $0.15/1M in, $0.60/1M out
	expected := 0.00015 + 0.0003
	if cost < expected*0.9 || cost > expected*1.1 {
		t.Fatalf("cost %f not in expected range around %f", cost, expected)
	}
}

func TestEstimateCost_UnknownModel(t *testing.T) {
	cost := EstimateCost("unknown-model", 1000, 500)
	if cost != 0 {
		t.Fatalf("expected 0 cost for unknown model, got %f", cost)
	}
}

func TestRetryClient_NoRetryOnSuccess(t *testing.T) {
	calls := 0
	mock := &mockClient{
		generateFn: func(ctx context.Context, req *Request) (*Response, error) {
			calls++
			return &Response{Content: "hello"}, nil
		},
	}
	rc := wrapWithRetry(mock, 3)
	resp, err := rc.Generate(context.Background(), &Request{
		Messages: []Message{{Role: "user", Content: "test"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Content != "hello" {
		t.Fatalf("expected 'hello', got '%s'", resp.Content)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestRetryClient_RetriesOnRateLimit(t *testing.T) {
	calls := 0
	mock := &mockClient{
		generateFn: func(ctx context.Context, req *Request) (*Response, error) {
			calls++
			if calls < 3 {
				return nil, fmt.Errorf("completion API error (429): slow down")
			}
			return &Response{Content: "ok"}, nil
		},
	}
	rc := wrapWithRetry(mock, 3)
	resp, err := rc.Generate(context.Background(), &Request{
		Messages: []Message{{Role: "user", Content: "test"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Content != "ok" || calls != 3 {
		t.Fatalf("expected success after 3 calls, got %d calls", calls)
	}
}

func TestRetryClient_NoRetryOnClientError(t *testing.T) {
	calls := 0
	mock := &mockClient{
		generateFn: func(ctx context.Context, req *Request) (*Response, error) {
			calls++
			return nil, fmt.Errorf("completion API error (401): bad key")
		},
	}
	rc := wrapWithRetry(mock, 3)
	if _, err := rc.Generate(context.Background(), &Request{}); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("auth errors are not retryable, expected 1 call, got %d", calls)
	}
}

type mockClient struct {
	generateFn func(ctx context.Context, req *Request) (*Response, error)
}

func (m *mockClient) Generate(ctx context.Context, req *Request) (*Response, error) {
	return m.generateFn(ctx, req)
}
func (m *mockClient) Provider() Provider { return "mock" }
func (m *mockClient) Close() error       { return nil }
