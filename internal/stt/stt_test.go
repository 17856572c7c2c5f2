package stt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/fluencycoach/internal/audio"
	"github.com/nikhilbhutani/fluencycoach/internal/config"
)

func TestNewTranscriptClassification(t *testing.T) {
	tests := []struct {
		text    string
		want    Outcome
		wantTxt string
	}{
		{"  this is a test ", Recognized, "this is a test"},
		{"", NotRecognized, ""},
		{"   ", NotRecognized, ""},
		{"[BLANK_AUDIO]", NotRecognized, ""},
		{" [SILENCE] (silence) ", NotRecognized, ""},
		{"[MUSIC] hello there", Recognized, "[MUSIC] hello there"},
	}

	for _, tt := range tests {
		got := newTranscript(tt.text, "en", "test")
		assert.Equal(t, tt.want, got.Outcome, "text %q", tt.text)
		assert.Equal(t, tt.wantTxt, got.Text, "text %q", tt.text)
	}
}

func whisperServer(t *testing.T, status int, body any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/transcriptions", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "verbose_json", r.FormValue("response_format"))
		_, _, err := r.FormFile("file")
		assert.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func waveformFixture(t *testing.T) *audio.Waveform {
	t.Helper()
	path := filepath.Join(t.TempDir(), "normalized.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0o600))
	return &audio.Waveform{Path: path, Format: audio.Canonical(16000)}
}

func TestOpenAISTTTranscribe(t *testing.T) {
	srv := whisperServer(t, http.StatusOK, map[string]any{
		"task": "transcribe", "language": "english", "duration": 2.5, "text": " this is a test",
	})

	tr := NewOpenAISTT(OpenAISTTConfig{APIKey: "sk-test", BaseURL: srv.URL})
	got, err := tr.Transcribe(context.Background(), waveformFixture(t))
	require.NoError(t, err)

	assert.Equal(t, Recognized, got.Outcome)
	assert.Equal(t, "this is a test", got.Text)
	assert.Equal(t, "openai-whisper", got.Provider)
}

func TestOpenAISTTSilence(t *testing.T) {
	srv := whisperServer(t, http.StatusOK, map[string]any{"text": ""})

	tr := NewLocalSTT(LocalSTTConfig{BaseURL: srv.URL})
	got, err := tr.Transcribe(context.Background(), waveformFixture(t))
	require.NoError(t, err)

	assert.Equal(t, NotRecognized, got.Outcome)
	assert.Equal(t, "local-whisper", got.Provider)
}

func TestOpenAISTTBackendError(t *testing.T) {
	srv := whisperServer(t, http.StatusInternalServerError, map[string]any{
		"error": map[string]any{"message": "overloaded", "type": "server_error"},
	})

	tr := NewOpenAISTT(OpenAISTTConfig{APIKey: "sk-test", BaseURL: srv.URL})
	_, err := tr.Transcribe(context.Background(), waveformFixture(t))
	assert.Error(t, err)
}

func TestNewSelectsBackend(t *testing.T) {
	tr, err := New(config.STTConfig{Backend: "local"})
	require.NoError(t, err)
	assert.Equal(t, "local-whisper", tr.Name())

	tr, err = New(config.STTConfig{Backend: "openai", OpenAIKey: "sk"})
	require.NoError(t, err)
	assert.Equal(t, "openai-whisper", tr.Name())

	_, err = New(config.STTConfig{Backend: "google"})
	assert.Error(t, err)
}
