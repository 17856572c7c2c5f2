package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// LibreTranslate calls a LibreTranslate server's /translate endpoint.
type LibreTranslate struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewLibreTranslate(baseURL, apiKey string) *LibreTranslate {
	return &LibreTranslate{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (l *LibreTranslate) Name() string { return "libretranslate" }

type libreRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type libreResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error"`
}

func (l *LibreTranslate) Translate(ctx context.Context, text, target string) (string, error) {
	body, err := json.Marshal(libreRequest{
		Q:      text,
		Source: "auto",
		Target: target,
		Format: "text",
		APIKey: l.apiKey,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL+"/translate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("libretranslate request: %w", err)
	}
	defer resp.Body.Close()

	var result libreResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode libretranslate response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		if result.Error == "" {
			result.Error = http.StatusText(resp.StatusCode)
		}
		return "", fmt.Errorf("libretranslate returned %d: %s", resp.StatusCode, result.Error)
	}
	return result.TranslatedText, nil
}
