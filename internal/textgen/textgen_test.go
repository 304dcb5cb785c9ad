// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pdiddy/profile-engine/internal/instructions"
	"github.com/pdiddy/profile-engine/internal/layout"
	"github.com/pdiddy/profile-engine/internal/ledger"
	"github.com/pdiddy/profile-engine/internal/linkedin"
	"github.com/pdiddy/profile-engine/internal/retry"
	"github.com/pdiddy/profile-engine/pkg/types"
)

func TestMain(m *testing.M) {
	retry.BaseDelay = time.Millisecond
	os.Exit(m.Run())
}

// --- mock backend ---

type mockBackend struct {
	reply    string
	failures int // fail this many calls before succeeding
	calls    int
	requests []Request
}

func (m *mockBackend) Generate(_ context.Context, req Request) (string, error) {
	m.calls++
	m.requests = append(m.requests, req)
	if m.calls <= m.failures {
		return "", fmt.Errorf("transient error (call %d)", m.calls)
	}
	return m.reply, nil
}

func testInstructions(t *testing.T) *instructions.Text {
	t.Helper()
	text, err := instructions.LoadText("", zap.NewNop())
	require.NoError(t, err)
	return text
}

func writeProfile(t *testing.T, l layout.Layout, slug, headline string) {
	t.Helper()
	require.NoError(t, l.EnsureDirs())
	p := &types.Profile{FirstName: "Ada", Headline: headline}
	require.NoError(t, linkedin.WriteProfile(l.ProfilePath(slug), p))
}

func newStage(t *testing.T, backend Backend, out *bytes.Buffer) (*Stage, layout.Layout) {
	t.Helper()
	l := layout.New(t.TempDir())
	return &Stage{
		Backend:      backend,
		Instructions: testInstructions(t),
		Layout:       l,
		Recorder:     ledger.Nop{},
		MaxRetries:   2,
		Out:          out,
		Logger:       zap.NewNop(),
	}, l
}

func TestProcessPerson(t *testing.T) {
	backend := &mockBackend{reply: "  A mathematician at a brass engine.  "}
	var out bytes.Buffer
	s, l := newStage(t, backend, &out)
	writeProfile(t, l, "ada-lovelace", "Analyst of engines")

	path, err := s.ProcessPerson(context.Background(), "Ada Lovelace")
	require.NoError(t, err)
	assert.Equal(t, l.ResponsePath("ada-lovelace"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "A mathematician at a brass engine.\n", string(data))

	require.Len(t, backend.requests, 1)
	req := backend.requests[0]
	assert.Equal(t, s.Instructions.Prompts.System, req.System)
	assert.True(t, strings.HasPrefix(req.Prompt, s.Instructions.Prompts.Instructions+"\n>>>>>"))
	assert.Contains(t, req.Prompt, "headline: Analyst of engines")
	assert.True(t, strings.HasSuffix(req.Prompt, "<<<<<"))
}

func TestProcessPersonMissingProfile(t *testing.T) {
	var out bytes.Buffer
	s, _ := newStage(t, &mockBackend{reply: "x"}, &out)

	_, err := s.ProcessPerson(context.Background(), "Nobody")
	assert.ErrorContains(t, err, "reading profile")
}

func TestProcessPersonRetries(t *testing.T) {
	backend := &mockBackend{reply: "ok", failures: 2}
	var out bytes.Buffer
	s, l := newStage(t, backend, &out)
	writeProfile(t, l, "ada", "h")

	_, err := s.ProcessPerson(context.Background(), "Ada")
	require.NoError(t, err)
	assert.Equal(t, 3, backend.calls)
}

func TestProcessPersonRetryExhaustion(t *testing.T) {
	backend := &mockBackend{failures: 100}
	var out bytes.Buffer
	s, l := newStage(t, backend, &out)
	writeProfile(t, l, "ada", "h")

	_, err := s.ProcessPerson(context.Background(), "Ada")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 retries")
	assert.Equal(t, 3, backend.calls)
	assert.NoFileExists(t, l.ResponsePath("ada"))
}

func TestProcessAll(t *testing.T) {
	backend := &mockBackend{reply: "portrait text"}
	var out bytes.Buffer
	s, l := newStage(t, backend, &out)
	writeProfile(t, l, "ada", "h")
	writeProfile(t, l, "grace", "h")

	accounts := []types.Account{{Name: "Ada"}, {Name: "Grace"}, {Name: "Missing"}}
	summary := s.ProcessAll(context.Background(), accounts)

	assert.Equal(t, types.BatchSummary{Succeeded: 2, Failed: 1}, summary)
	assert.True(t, summary.HasFailures())
	assert.FileExists(t, l.ResponsePath("ada"))
	assert.FileExists(t, l.ResponsePath("grace"))
	assert.Contains(t, out.String(), "generated Ada -> ")
	assert.Contains(t, out.String(), "failed  Missing: ")
	assert.Contains(t, out.String(), "Batch summary: 2 generated, 0 skipped, 1 failed (total: 3)")
}

func TestProcessAllSkipsUnchanged(t *testing.T) {
	backend := &mockBackend{reply: "new"}
	var out bytes.Buffer
	s, l := newStage(t, backend, &out)
	writeProfile(t, l, "ada", "h")
	require.NoError(t, os.WriteFile(l.ResponsePath("ada"), []byte("old\n"), 0o644))

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(l.ProfilePath("ada"), past, past))

	summary := s.ProcessAll(context.Background(), []types.Account{{Name: "Ada"}})
	assert.Equal(t, types.BatchSummary{Skipped: 1}, summary)
	assert.Equal(t, 0, backend.calls)
	assert.Contains(t, out.String(), "skipped Ada")

	s.Force = true
	summary = s.ProcessAll(context.Background(), []types.Account{{Name: "Ada"}})
	assert.Equal(t, types.BatchSummary{Succeeded: 1}, summary)
	data, err := os.ReadFile(l.ResponsePath("ada"))
	require.NoError(t, err)
	assert.Equal(t, "new\n", string(data))
}

func TestProcessAllRegeneratesChanged(t *testing.T) {
	backend := &mockBackend{reply: "new"}
	var out bytes.Buffer
	s, l := newStage(t, backend, &out)
	writeProfile(t, l, "ada", "h")
	require.NoError(t, os.WriteFile(l.ResponsePath("ada"), []byte("old\n"), 0o644))

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(l.ResponsePath("ada"), past, past))

	summary := s.ProcessAll(context.Background(), []types.Account{{Name: "Ada"}})
	assert.Equal(t, types.BatchSummary{Succeeded: 1}, summary)
	assert.Equal(t, 1, backend.calls)
}

// --- OpenAI backend ---

func TestOpenAIBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)

		var body chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o", body.Model)
		assert.Equal(t, 800, body.MaxTokens)
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "system", body.Messages[0].Role)
		assert.Equal(t, "user", body.Messages[1].Role)
		assert.Equal(t, "describe", body.Messages[1].Content)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":" A sketch. "},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	temp := 0.8
	b, err := NewOpenAIBackend(
		instructions.Endpoint{BaseURL: srv.URL},
		instructions.TextSettings{Model: "gpt-4o", Temperature: &temp, MaxTokens: 800},
		"sk-test", types.HTTPConfig{})
	require.NoError(t, err)

	text, err := b.Generate(context.Background(), Request{System: "be kind", Prompt: "describe"})
	require.NoError(t, err)
	assert.Equal(t, "A sketch.", text)
}

func TestOpenAIBackendNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	b, err := NewOpenAIBackend(instructions.Endpoint{BaseURL: srv.URL}, instructions.TextSettings{Model: "m"}, "k", types.HTTPConfig{})
	require.NoError(t, err)

	_, err = b.Generate(context.Background(), Request{Prompt: "p"})
	assert.ErrorContains(t, err, "no choices")
}

func TestNewBackend(t *testing.T) {
	text := testInstructions(t)

	b, err := NewBackend(context.Background(), text, "k", types.HTTPConfig{})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIBackend{}, b)

	text.API = instructions.Endpoint{Provider: "llama"}
	_, err = NewBackend(context.Background(), text, "k", types.HTTPConfig{})
	assert.ErrorContains(t, err, "unsupported text provider")

	text.API = instructions.Endpoint{Provider: instructions.ProviderGemini}
	_, err = NewBackend(context.Background(), text, "", types.HTTPConfig{})
	assert.ErrorContains(t, err, "API key is required")
}

func TestProcessPersonStopsOnRejectedKey(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Incorrect API key provided"}}`))
	}))
	defer srv.Close()

	backend, err := NewOpenAIBackend(instructions.Endpoint{BaseURL: srv.URL}, instructions.TextSettings{Model: "gpt-4o"}, "bad", types.HTTPConfig{})
	require.NoError(t, err)

	var out bytes.Buffer
	s, l := newStage(t, backend, &out)
	s.MaxRetries = 0
	writeProfile(t, l, "ada", "h")

	_, err = s.ProcessPerson(context.Background(), "Ada")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Incorrect API key provided")
	assert.NotContains(t, err.Error(), "retries")
	assert.Equal(t, 1, calls)
}

func TestProcessPersonRetriesServerErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`{"error":{"message":"upstream"}}`))
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer srv.Close()

	backend, err := NewOpenAIBackend(instructions.Endpoint{BaseURL: srv.URL}, instructions.TextSettings{Model: "gpt-4o"}, "k", types.HTTPConfig{})
	require.NoError(t, err)

	var out bytes.Buffer
	s, l := newStage(t, backend, &out)
	writeProfile(t, l, "ada", "h")

	_, err = s.ProcessPerson(context.Background(), "Ada")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestProcessPersonRejectsBlankReply(t *testing.T) {
	var out bytes.Buffer
	s, l := newStage(t, &mockBackend{reply: " \n "}, &out)
	writeProfile(t, l, "ada", "h")

	_, err := s.ProcessPerson(context.Background(), "Ada")
	assert.ErrorContains(t, err, "empty reply")
	assert.NoFileExists(t, l.ResponsePath("ada"))
}

// --- Gemini backend ---

type geminiRequest struct {
	Contents []struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
	SystemInstruction struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"systemInstruction"`
	GenerationConfig struct {
		Temperature     float64 `json:"temperature"`
		TopP            float64 `json:"topP"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

func newGeminiServer(t *testing.T, status int, reply string, got *geminiRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, ":generateContent"), r.URL.Path)
		assert.Contains(t, r.URL.Path, "gemini-test")
		if got != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGeminiBackend(t *testing.T) {
	var got geminiRequest
	srv := newGeminiServer(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":" A sketch. "}]},"finishReason":"STOP"}]}`, &got)

	temp, topP := 0.5, 0.25
	settings := instructions.TextSettings{Model: "gemini-test", Temperature: &temp, TopP: &topP, MaxTokens: 256}
	b, err := NewGeminiBackend(context.Background(), instructions.Endpoint{BaseURL: srv.URL}, settings, "k")
	require.NoError(t, err)

	text, err := b.Generate(context.Background(), Request{System: "be kind", Prompt: "describe"})
	require.NoError(t, err)
	assert.Equal(t, "A sketch.", text)

	require.Len(t, got.Contents, 1)
	require.Len(t, got.Contents[0].Parts, 1)
	assert.Equal(t, "describe", got.Contents[0].Parts[0].Text)
	require.Len(t, got.SystemInstruction.Parts, 1)
	assert.Equal(t, "be kind", got.SystemInstruction.Parts[0].Text)
	assert.Equal(t, 0.5, got.GenerationConfig.Temperature)
	assert.Equal(t, 0.25, got.GenerationConfig.TopP)
	assert.Equal(t, 256, got.GenerationConfig.MaxOutputTokens)
}

func TestGeminiBackendEmptyReply(t *testing.T) {
	srv := newGeminiServer(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"  "}]},"finishReason":"STOP"}]}`, nil)

	b, err := NewGeminiBackend(context.Background(), instructions.Endpoint{BaseURL: srv.URL}, instructions.TextSettings{Model: "gemini-test"}, "k")
	require.NoError(t, err)

	_, err = b.Generate(context.Background(), Request{Prompt: "describe"})
	assert.ErrorContains(t, err, "empty content")
}

func TestGeminiBackendRejectedKeyIsNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
	}))
	defer srv.Close()

	b, err := NewGeminiBackend(context.Background(), instructions.Endpoint{BaseURL: srv.URL}, instructions.TextSettings{Model: "gemini-test"}, "bad")
	require.NoError(t, err)

	var out bytes.Buffer
	s, l := newStage(t, b, &out)
	writeProfile(t, l, "ada", "h")

	_, err = s.ProcessPerson(context.Background(), "Ada")
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
