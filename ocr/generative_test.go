package ocr

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Balaji2327/Devsparks/internal/types"
)

func newGenerativeProvider(serverURL, key string) *GenerativeProvider {
	config := types.DefaultConfig()
	config.GeminiBaseURL = serverURL
	config.GeminiAPIKey = key
	return NewGenerativeProvider(config, logrus.New())
}

func geminiTextResponse(text string) string {
	resp := map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{
				"parts": []map[string]string{{"text": text}},
			}},
		},
	}
	out, _ := json.Marshal(resp)
	return string(out)
}

func TestGenerative_NotUsableWithoutKey(t *testing.T) {
	p := newGenerativeProvider("http://unused", "")
	assert.False(t, p.Usable())

	_, err := p.Recognize(context.Background(), types.OCRRequest{ImageBytes: []byte("x")})
	assert.ErrorIs(t, err, types.ErrProviderUnavailable)
}

func TestGenerative_TranscriptionStripsFences(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, ":generateContent")
		w.Write([]byte(geminiTextResponse("```text\nNET QTY 250 G\nMRP 499.00\n```")))
	}))
	defer server.Close()

	p := newGenerativeProvider(server.URL, "k")
	result, err := p.Recognize(context.Background(), types.OCRRequest{ImageBytes: []byte{0x89, 'P', 'N', 'G'}})
	require.NoError(t, err)

	assert.Equal(t, "NET QTY 250 G\nMRP 499.00", result.Text)
}

func TestGenerative_ConfidenceIsZeroByConvention(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(geminiTextResponse("SOME LABEL TEXT")))
	}))
	defer server.Close()

	p := newGenerativeProvider(server.URL, "k")
	result, err := p.Recognize(context.Background(), types.OCRRequest{ImageBytes: []byte("img")})
	require.NoError(t, err)

	// The model has no per-symbol confidence; 0 is the convention, not nil.
	assert.Zero(t, result.Confidence)
	assert.Equal(t, types.ProviderGenerative, result.ProviderUsed)
}

func TestGenerative_RejectedKeyIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"status":"PERMISSION_DENIED","message":"API key invalid"}}`))
	}))
	defer server.Close()

	p := newGenerativeProvider(server.URL, "k")
	_, err := p.Recognize(context.Background(), types.OCRRequest{ImageBytes: []byte("img")})
	assert.ErrorIs(t, err, types.ErrProviderUnavailable)
}

func TestGenerative_CleanupUsesSystemInstruction(t *testing.T) {
	var captured geminiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(geminiTextResponse("NET QTY 250 G")))
	}))
	defer server.Close()

	p := newGenerativeProvider(server.URL, "k")
	cleaned, err := p.Cleanup(context.Background(), "NET OTY 25O G")
	require.NoError(t, err)

	assert.Equal(t, "NET QTY 250 G", cleaned)
	require.NotNil(t, captured.SystemInstruction)
	assert.Contains(t, captured.SystemInstruction.Parts[0].Text, "Preserve the structure")
}

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"```\nwrapped\n```", "wrapped"},
		{"```text\nwrapped\n```", "wrapped"},
		{"```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"  ```\n two lines\nhere\n```  ", "two lines\nhere"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, stripCodeFences(tc.in), "input %q", tc.in)
	}
}
