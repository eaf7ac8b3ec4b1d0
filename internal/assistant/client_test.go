package assistant

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nulbom/go-kiosk/pkg/faults"
)

func replyBody(text string) generateResponse {
	var out generateResponse
	out.Candidates = []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	}{
		{Content: content{Parts: []part{{Text: text}}}, FinishReason: "STOP"},
	}
	return out
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, APIKey: "test-key", Model: "test-model"}, nil)
}

func TestAskReturnsReply(t *testing.T) {
	var got generateRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(replyBody("The pharmacy is on the first floor."))
	})

	reply, err := c.Ask(context.Background(), "Where is the pharmacy?", "")
	require.NoError(t, err)
	assert.Equal(t, "The pharmacy is on the first floor.", reply)

	require.Len(t, got.Contents, 1)
	parts := got.Contents[0].Parts
	require.Len(t, parts, 2)
	assert.Equal(t, systemInstruction, parts[0].Text, "system framing precedes the question")
	assert.Equal(t, "Where is the pharmacy?", parts[1].Text)
}

func TestAskWithImage(t *testing.T) {
	var got generateRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(replyBody("That looks like a referral form."))
	})

	img := base64.StdEncoding.EncodeToString([]byte("fake-png"))
	_, err := c.Ask(context.Background(), "What is this document?", "data:image/jpeg;base64,"+img)
	require.NoError(t, err)

	parts := got.Contents[0].Parts
	require.Len(t, parts, 3)
	require.NotNil(t, parts[1].InlineData)
	assert.Equal(t, "image/jpeg", parts[1].InlineData.MimeType)
	assert.Equal(t, img, parts[1].InlineData.Data)
}

func TestAskEmptyQuestion(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := c.Ask(context.Background(), "   ", "")
	require.Error(t, err)
	assert.Equal(t, faults.CodeValidation, faults.CodeOf(err))
}

func TestAskInvalidImage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := c.Ask(context.Background(), "What is this?", "not!!base64??")
	require.Error(t, err)
	assert.Equal(t, faults.CodeValidation, faults.CodeOf(err))
}

func TestAskWithoutAPIKey(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://localhost:0"}, nil)

	_, err := c.Ask(context.Background(), "Where is the pharmacy?", "")
	require.Error(t, err)
	assert.Equal(t, faults.CodeAssistantUnavailable, faults.CodeOf(err))
}

func TestAskUpstreamError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{"error": map[string]string{"message": "quota exceeded"}})
	})

	_, err := c.Ask(context.Background(), "Where is the pharmacy?", "")
	require.Error(t, err)
	assert.Equal(t, faults.CodeAssistantUnavailable, faults.CodeOf(err))
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestAskBlockedQuestion(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var out generateResponse
		out.PromptFeedback.BlockReason = "SAFETY"
		json.NewEncoder(w).Encode(out)
	})

	_, err := c.Ask(context.Background(), "something inappropriate", "")
	require.Error(t, err)
	assert.Equal(t, faults.CodeValidation, faults.CodeOf(err))
}

func TestAskCircuitOpensAfterConsecutiveFailures(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	for i := 0; i < 5; i++ {
		_, err := c.Ask(context.Background(), "Where is the pharmacy?", "")
		require.Error(t, err)
	}

	// Breaker is now open: the next call fails fast without reaching upstream.
	_, err := c.Ask(context.Background(), "Where is the pharmacy?", "")
	require.Error(t, err)
	assert.Equal(t, faults.CodeAssistantUnavailable, faults.CodeOf(err))
}
