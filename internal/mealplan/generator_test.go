package mealplan

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"gastroguide/internal/anthropic"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCreator struct {
	resp  *anthropic.MessageResponse
	err   error
	calls []anthropic.MessageRequest
}

func (f *fakeCreator) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.calls = append(f.calls, req)
	return f.resp, f.err
}

func TestGenerator_Generate_FirstSegment(t *testing.T) {
	text := "## Morning\n- Oatmeal  \n\n## Lunch\n..."
	fake := &fakeCreator{resp: &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{
			{Type: "text", Text: text},
			{Type: "text", Text: "second segment"},
		},
	}}

	plan, err := NewGenerator(fake, DefaultSettings()).Generate(context.Background(), "the prompt")
	require.NoError(t, err)
	assert.Equal(t, text, plan.Text)
	assert.False(t, plan.Fallback)
	require.Len(t, fake.calls, 1)
}

func TestGenerator_Generate_EmptyContent(t *testing.T) {
	tests := []struct {
		name    string
		content []anthropic.ContentBlock
	}{
		{name: "nil content", content: nil},
		{name: "empty content", content: []anthropic.ContentBlock{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeCreator{resp: &anthropic.MessageResponse{Content: tt.content}}

			plan, err := NewGenerator(fake, DefaultSettings()).Generate(context.Background(), "p")
			require.NoError(t, err)
			assert.Equal(t, "No meal plan generated. Please try again.", plan.Text)
			assert.True(t, plan.Fallback)
		})
	}
}

func TestGenerator_Generate_PropagatesErrors(t *testing.T) {
	serviceErr := &anthropic.APIError{StatusCode: http.StatusTooManyRequests, Type: "rate_limit_error", Message: "slow down"}

	for _, want := range []error{anthropic.ErrMissingAPIKey, serviceErr, context.Canceled} {
		fake := &fakeCreator{err: want}
		plan, err := NewGenerator(fake, DefaultSettings()).Generate(context.Background(), "p")
		assert.True(t, errors.Is(err, want))
		assert.Empty(t, plan.Text)
	}
}

func TestGenerator_Plan_RequestParameters(t *testing.T) {
	fake := &fakeCreator{resp: &anthropic.MessageResponse{Content: []anthropic.ContentBlock{{Type: "text", Text: "ok"}}}}
	gen := NewGenerator(fake, Settings{})

	_, err := gen.Plan(context.Background(), exampleProfile())
	require.NoError(t, err)
	require.Len(t, fake.calls, 1)

	req := fake.calls[0]
	assert.Equal(t, "claude-3-5-sonnet-20240620", req.Model)
	assert.Equal(t, 1000, req.MaxTokens)
	assert.Equal(t, 0.0, req.Temperature)
	assert.Equal(t, "You are a world-class nutritionist specializing in stomach-related conditions.", req.System)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, anthropic.RoleUser, req.Messages[0].Role)
	require.Len(t, req.Messages[0].Content, 1)
	assert.Equal(t, anthropic.ContentTypeText, req.Messages[0].Content[0].Type)
	assert.Equal(t, BuildPrompt(exampleProfile()), req.Messages[0].Content[0].Text)
}

func TestNewGenerator_KeepsOverrides(t *testing.T) {
	gen := NewGenerator(&fakeCreator{}, Settings{Model: "other-model", MaxTokens: 200, Temperature: 0.3, SystemPrompt: "sys"})
	assert.Equal(t, Settings{Model: "other-model", MaxTokens: 200, Temperature: 0.3, SystemPrompt: "sys"}, gen.Settings())
}

// End to end through the real client: an empty content array from the wire
// must come back as the fallback text.
func TestGenerator_WithClient_EmptyContentResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content": []}`))
	}))
	defer server.Close()

	client := anthropic.NewClient(anthropic.Options{APIKey: "k", BaseURL: server.URL})
	plan, err := NewGenerator(client, DefaultSettings()).Plan(context.Background(), exampleProfile())
	require.NoError(t, err)
	assert.Equal(t, FallbackText, plan.Text)
	assert.True(t, plan.Fallback)
}
