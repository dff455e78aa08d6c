package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyzone/studyzone-api/internal/adapters/llm"
	"github.com/studyzone/studyzone-api/internal/domain/model"
)

// memChatStore is an in-memory chat store double.
type memChatStore struct {
	messages []*model.ChatMessage
	insertN  int
	failNext error
}

func (m *memChatStore) Insert(_ context.Context, studentID string, role model.ChatRole, content string) (*model.ChatMessage, error) {
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return nil, err
	}
	m.insertN++
	msg := &model.ChatMessage{
		ID:        fmt.Sprintf("msg-%d", m.insertN),
		StudentID: studentID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
	m.messages = append(m.messages, msg)
	return msg, nil
}

func (m *memChatStore) History(_ context.Context, studentID string, _ model.ChatHistoryOptions) ([]*model.ChatMessage, error) {
	var out []*model.ChatMessage
	for i := len(m.messages) - 1; i >= 0; i-- {
		if m.messages[i].StudentID == studentID {
			out = append(out, m.messages[i])
		}
	}
	return out, nil
}

func (m *memChatStore) Recent(_ context.Context, studentID string, n int) ([]*model.ChatMessage, error) {
	var out []*model.ChatMessage
	for _, msg := range m.messages {
		if msg.StudentID == studentID {
			out = append(out, msg)
		}
	}
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return out, nil
}

// clientFunc adapts a function to the completion client interface.
type clientFunc func(ctx context.Context, messages []llm.Message) (any, error)

func (f clientFunc) Complete(ctx context.Context, messages []llm.Message) (any, error) {
	return f(ctx, messages)
}

func openAIResponse(reply string) any {
	return map[string]any{
		"choices": []any{
			map[string]any{
				"message": map[string]any{"content": reply},
			},
		},
	}
}

func newTestChatService(t *testing.T, store *memChatStore, client clientFunc, mutate func(*ChatServiceOptions)) *ChatService {
	t.Helper()
	opts := ChatServiceOptions{
		Messages:          store,
		Client:            client,
		RequestsPerMinute: 100,
	}
	if mutate != nil {
		mutate(&opts)
	}
	svc, err := NewChatService(opts)
	require.NoError(t, err)
	return svc
}

func TestChatService_Chat_RoundTrip(t *testing.T) {
	store := &memChatStore{}
	var gotMessages []llm.Message
	svc := newTestChatService(t, store, func(_ context.Context, messages []llm.Message) (any, error) {
		gotMessages = messages
		return openAIResponse("Recursion is a function calling itself."), nil
	}, func(opts *ChatServiceOptions) {
		opts.SystemPrompt = "You are a study helper."
	})

	reply, err := svc.Chat(context.Background(), "student-1", model.ChatRequest{Prompt: "What is recursion?"})
	require.NoError(t, err)
	assert.Equal(t, model.ChatRoleAssistant, reply.Role)
	assert.Equal(t, "Recursion is a function calling itself.", reply.Content)

	// System prompt first, then the student's new prompt last.
	require.NotEmpty(t, gotMessages)
	assert.Equal(t, "system", gotMessages[0].Role)
	assert.Equal(t, "What is recursion?", gotMessages[len(gotMessages)-1].Content)

	// Both turns persisted.
	assert.Len(t, store.messages, 2)
	assert.Equal(t, model.ChatRoleUser, store.messages[0].Role)
	assert.Equal(t, model.ChatRoleAssistant, store.messages[1].Role)
}

func TestChatService_Chat_IncludesRecentContext(t *testing.T) {
	store := &memChatStore{}
	ctx := context.Background()
	_, err := store.Insert(ctx, "student-1", model.ChatRoleUser, "earlier question")
	require.NoError(t, err)
	_, err = store.Insert(ctx, "student-1", model.ChatRoleAssistant, "earlier answer")
	require.NoError(t, err)

	var gotMessages []llm.Message
	svc := newTestChatService(t, store, func(_ context.Context, messages []llm.Message) (any, error) {
		gotMessages = messages
		return openAIResponse("ok"), nil
	}, nil)

	_, err = svc.Chat(ctx, "student-1", model.ChatRequest{Prompt: "follow-up"})
	require.NoError(t, err)

	require.Len(t, gotMessages, 3)
	assert.Equal(t, "earlier question", gotMessages[0].Content)
	assert.Equal(t, "earlier answer", gotMessages[1].Content)
	assert.Equal(t, "follow-up", gotMessages[2].Content)
}

func TestChatService_Chat_UpstreamFailureKeepsPrompt(t *testing.T) {
	store := &memChatStore{}
	svc := newTestChatService(t, store, func(context.Context, []llm.Message) (any, error) {
		return nil, errors.New("upstream down")
	}, nil)

	_, err := svc.Chat(context.Background(), "student-1", model.ChatRequest{Prompt: "hello"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat completion")

	// The student's turn was stored before the upstream call.
	require.Len(t, store.messages, 1)
	assert.Equal(t, model.ChatRoleUser, store.messages[0].Role)
}

func TestChatService_Chat_NoReplyText(t *testing.T) {
	svc := newTestChatService(t, &memChatStore{}, func(context.Context, []llm.Message) (any, error) {
		return map[string]any{"choices": []any{}}, nil
	}, nil)

	_, err := svc.Chat(context.Background(), "student-1", model.ChatRequest{Prompt: "hello"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no reply text")
}

func TestChatService_Chat_RateLimited(t *testing.T) {
	svc := newTestChatService(t, &memChatStore{}, func(context.Context, []llm.Message) (any, error) {
		return openAIResponse("ok"), nil
	}, func(opts *ChatServiceOptions) {
		opts.RequestsPerMinute = 2
	})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.Chat(ctx, "student-1", model.ChatRequest{Prompt: "hi"})
		require.NoError(t, err)
	}

	_, err := svc.Chat(ctx, "student-1", model.ChatRequest{Prompt: "hi"})
	assert.ErrorIs(t, err, ErrChatRateLimited)

	// Per-student limits: another student is unaffected.
	_, err = svc.Chat(ctx, "student-2", model.ChatRequest{Prompt: "hi"})
	assert.NoError(t, err)
}

func TestChatService_Chat_Validation(t *testing.T) {
	svc := newTestChatService(t, &memChatStore{}, func(context.Context, []llm.Message) (any, error) {
		return openAIResponse("ok"), nil
	}, nil)

	_, err := svc.Chat(context.Background(), "student-1", model.ChatRequest{Prompt: "   "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prompt is required")

	_, err = svc.Chat(context.Background(), "", model.ChatRequest{Prompt: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "student ID is required")
}

func TestChatService_CustomReplyPath(t *testing.T) {
	svc := newTestChatService(t, &memChatStore{}, func(context.Context, []llm.Message) (any, error) {
		return map[string]any{"output": map[string]any{"text": "custom shape"}}, nil
	}, func(opts *ChatServiceOptions) {
		opts.ReplyPath = "output.text"
	})

	reply, err := svc.Chat(context.Background(), "student-1", model.ChatRequest{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "custom shape", reply.Content)
}

func TestNewChatService_BadReplyPath(t *testing.T) {
	_, err := NewChatService(ChatServiceOptions{
		Messages:  &memChatStore{},
		Client:    clientFunc(func(context.Context, []llm.Message) (any, error) { return nil, nil }),
		ReplyPath: "choices[",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile reply path")
}
