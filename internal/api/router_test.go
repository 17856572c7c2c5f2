package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/youpy/go-wav"

	"github.com/nikhilbhutani/fluencycoach/internal/analysis"
	"github.com/nikhilbhutani/fluencycoach/internal/audio"
	"github.com/nikhilbhutani/fluencycoach/internal/config"
	"github.com/nikhilbhutani/fluencycoach/internal/enrich"
	"github.com/nikhilbhutani/fluencycoach/internal/llm"
	"github.com/nikhilbhutani/fluencycoach/internal/mentor"
	"github.com/nikhilbhutani/fluencycoach/internal/metrics"
	"github.com/nikhilbhutani/fluencycoach/internal/models"
	"github.com/nikhilbhutani/fluencycoach/internal/store"
	"github.com/nikhilbhutani/fluencycoach/internal/stt"
	"github.com/nikhilbhutani/fluencycoach/internal/translate"
)

type silenceDecoder struct{}

func (silenceDecoder) Decode(_ context.Context, _, out string, target audio.Format) error {
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()
	n := target.SampleRate / 2
	return wav.NewWriter(f, uint32(n), uint16(target.Channels), uint32(target.SampleRate), uint16(target.BitsPerSample)).
		WriteSamples(make([]wav.Sample, n))
}

type scriptedSTT struct{ text string }

func (s scriptedSTT) Name() string { return "scripted" }

func (s scriptedSTT) Transcribe(context.Context, *audio.Waveform) (stt.Transcript, error) {
	if s.text == "" {
		return stt.Transcript{Outcome: stt.NotRecognized, Provider: "scripted"}, nil
	}
	return stt.Transcript{Text: s.text, Outcome: stt.Recognized, Provider: "scripted"}, nil
}

type echoGateway struct{ err error }

func (g echoGateway) Chat(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &llm.ChatResponse{Content: "reply to " + req.Endpoint}, nil
}

func (echoGateway) ListModels() []llm.ModelInfo {
	return []llm.ModelInfo{{Provider: "openai", Model: "gpt-4o-mini"}}
}

type englishDetector struct{}

func (englishDetector) Detect(string) (string, bool) { return "en", true }

type memStore struct {
	records []models.AnalysisRecord
}

func (m *memStore) Append(_ context.Context, rec models.AnalysisRecord) error {
	m.records = append(m.records, rec)
	return nil
}

func (m *memStore) Get(_ context.Context, id uuid.UUID) (*models.AnalysisRecord, error) {
	for i := range m.records {
		if m.records[i].ID == id {
			return &m.records[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) List(context.Context, int, int) ([]models.AnalysisRecord, error) {
	return m.records, nil
}

type fixedTranslator struct{}

func (fixedTranslator) Name() string { return "fixed" }

func (fixedTranslator) Translate(_ context.Context, text, target string) (string, error) {
	if target == "xx" {
		return "", errors.New("unsupported target language")
	}
	return "[" + target + "] " + text, nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.AllowedOrigins = []string{"*"}
	cfg.Server.RateLimitRPS = 1000
	cfg.Server.RateLimitBurst = 1000
	cfg.Audio.MaxUploadBytes = 1 << 20
	return cfg
}

func newTestServer(t *testing.T, transcript string, gw llm.Gateway) (*httptest.Server, *memStore, string) {
	t.Helper()
	tempDir := t.TempDir()
	ms := &memStore{}

	pipeline := analysis.NewPipeline(
		audio.NewNormalizer(silenceDecoder{}, tempDir, 16000),
		scriptedSTT{text: transcript},
		metrics.NewEngine(nil, nil),
		enrich.New(gw, englishDetector{}),
		ms,
		time.Second,
	)

	rt := NewRouter(testConfig(), Deps{
		Analyzer:   pipeline,
		Mentor:     mentor.New(gw, time.Second),
		Translator: translate.NewService(fixedTranslator{}, "en", time.Second),
		History:    ms,
		Models:     gw,
	})
	srv := httptest.NewServer(rt.Setup())
	t.Cleanup(func() {
		srv.Close()
		rt.Close()
	})
	return srv, ms, tempDir
}

func uploadClip(t *testing.T, url, duration string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("audio", "speech.webm")
	require.NoError(t, err)
	fw.Write([]byte("fake webm bytes"))
	require.NoError(t, mw.WriteField("duration", duration))
	require.NoError(t, mw.Close())

	resp, err := http.Post(url+"/analyze", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestAnalyzeEndToEnd(t *testing.T) {
	srv, ms, tempDir := newTestServer(t, "this is a test", echoGateway{})

	resp := uploadClip(t, srv.URL, "10")
	out := decode(t, resp)

	require.Equal(t, http.StatusOK, resp.StatusCode, out)
	assert.Equal(t, "this is a test", out["transcript"])
	assert.Equal(t, float64(4), out["word_count"])
	assert.Equal(t, float64(24), out["wpm"])
	assert.Equal(t, "en", out["language"])
	assert.Equal(t, "reply to analyze", out["grammar_feedback"])
	assert.Equal(t, []any{}, out["fillers"])

	require.Len(t, ms.records, 1)
	assert.Equal(t, out["id"], ms.records[0].ID.String())

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	hist, err := http.Get(srv.URL + "/analyses/" + ms.records[0].ID.String())
	require.NoError(t, err)
	got := decode(t, hist)
	assert.Equal(t, http.StatusOK, hist.StatusCode)
	assert.Equal(t, "this is a test", got["transcript"])
}

func TestAnalyzeDegradedWhenLLMDown(t *testing.T) {
	srv, ms, _ := newTestServer(t, "um so basically it works", echoGateway{err: errors.New("all retries exhausted")})

	resp := uploadClip(t, srv.URL, "6")
	out := decode(t, resp)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, out["degraded"])
	assert.Nil(t, out["grammar_feedback"])
	assert.Equal(t, []any{"um", "so", "basically"}, out["fillers"])
	require.Len(t, ms.records, 1)
	assert.Nil(t, ms.records[0].GrammarFeedback)
}

func TestAnalyzeSpeechNotRecognized(t *testing.T) {
	srv, ms, _ := newTestServer(t, "", echoGateway{})

	resp := uploadClip(t, srv.URL, "4")
	out := decode(t, resp)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Speech not recognized", out["error"])
	assert.Empty(t, ms.records)
}

func TestAnalyzeRejectsZeroDuration(t *testing.T) {
	srv, ms, _ := newTestServer(t, "hello", echoGateway{})

	resp := uploadClip(t, srv.URL, "0")
	out := decode(t, resp)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid or zero duration", out["error"])
	assert.Empty(t, ms.records)
}

func TestAnalyzeRejectsVanishingDuration(t *testing.T) {
	srv, ms, tempDir := newTestServer(t, "this is a test", echoGateway{})

	resp := uploadClip(t, srv.URL, "1e-310")
	out := decode(t, resp)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid or zero duration", out["error"])
	assert.Empty(t, ms.records)

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestModelsRoute(t *testing.T) {
	srv, _, _ := newTestServer(t, "hello", echoGateway{})

	resp, err := http.Get(srv.URL + "/models")
	require.NoError(t, err)
	out := decode(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), out["count"])
	assert.Equal(t, []any{map[string]any{"provider": "openai", "model": "gpt-4o-mini"}}, out["models"])
}

func TestChatRoute(t *testing.T) {
	srv, _, _ := newTestServer(t, "", echoGateway{})

	resp, err := http.Post(srv.URL+"/chat", "application/json", strings.NewReader(`{"message":"hello"}`))
	require.NoError(t, err)
	out := decode(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "reply to chat", out["reply"])

	resp, err = http.Post(srv.URL+"/chat", "application/json", strings.NewReader(`{"message":"  "}`))
	require.NoError(t, err)
	out = decode(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "No message provided", out["error"])
}

func TestTranslateRoute(t *testing.T) {
	srv, _, _ := newTestServer(t, "", echoGateway{})

	resp, err := http.Post(srv.URL+"/translate", "application/json", strings.NewReader(`{"text":"hola"}`))
	require.NoError(t, err)
	out := decode(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "[en] hola", out["translated"])

	resp, err = http.Post(srv.URL+"/translate", "application/json", strings.NewReader(`{"text":"hola","to":"xx"}`))
	require.NoError(t, err)
	out = decode(t, resp)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, out["error"], "unsupported target language")
}

func TestHealthRoutes(t *testing.T) {
	srv, _, _ := newTestServer(t, "", echoGateway{})

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/usage")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
