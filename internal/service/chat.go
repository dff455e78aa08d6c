package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"
	"github.com/studyzone/studyzone-api/internal/adapters/llm"
	"github.com/studyzone/studyzone-api/internal/domain/model"
	"github.com/studyzone/studyzone-api/internal/observability/statsd"
	"golang.org/x/time/rate"
)

// ErrChatRateLimited is returned when a student exceeds their chat budget.
var ErrChatRateLimited = errors.New("too many chat requests, slow down")

// defaultReplyPath extracts the assistant text from an OpenAI-style
// completion response.
const defaultReplyPath = "choices[0].message.content"

// completionClient is satisfied by *llm.Client.
type completionClient interface {
	Complete(ctx context.Context, messages []llm.Message) (any, error)
}

// chatStore is satisfied by *data.ChatRepo.
type chatStore interface {
	Insert(ctx context.Context, studentID string, role model.ChatRole, content string) (*model.ChatMessage, error)
	History(ctx context.Context, studentID string, opts model.ChatHistoryOptions) ([]*model.ChatMessage, error)
	Recent(ctx context.Context, studentID string, n int) ([]*model.ChatMessage, error)
}

// ChatServiceOptions groups dependencies for ChatService.
type ChatServiceOptions struct {
	Messages chatStore
	Client   completionClient
	Points   pointsAwarder // optional

	// ReplyPath is the JMESPath expression locating the assistant reply in
	// the provider response. Defaults to the OpenAI completion shape.
	ReplyPath string

	// SystemPrompt is prepended to every conversation when set.
	SystemPrompt string

	// ContextWindow is how many stored turns accompany each prompt.
	// Defaults to 10.
	ContextWindow int

	// RequestsPerMinute caps each student's chat rate. Defaults to 10.
	RequestsPerMinute int

	Metrics statsd.Sink // optional
	Logger  *slog.Logger
}

// ChatService proxies student prompts to the configured LLM endpoint,
// persisting both sides of the conversation.
type ChatService struct {
	messages      chatStore
	client        completionClient
	points        pointsAwarder
	replyPath     jmespath.JMESPath
	systemPrompt  string
	contextWindow int
	perMinute     rate.Limit
	burst         int
	metrics       statsd.Sink
	log           *slog.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewChatService constructs a new ChatService.
func NewChatService(opts ChatServiceOptions) (*ChatService, error) {
	if opts.Messages == nil {
		return nil, errors.New("chat store is required")
	}
	if opts.Client == nil {
		return nil, errors.New("completion client is required")
	}

	path := strings.TrimSpace(opts.ReplyPath)
	if path == "" {
		path = defaultReplyPath
	}
	compiled, err := jmespath.Compile(path)
	if err != nil {
		return nil, fmt.Errorf("compile reply path %q: %w", path, err)
	}

	window := opts.ContextWindow
	if window <= 0 {
		window = 10
	}
	perMinute := opts.RequestsPerMinute
	if perMinute <= 0 {
		perMinute = 10
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	return &ChatService{
		messages:      opts.Messages,
		client:        opts.Client,
		points:        opts.Points,
		replyPath:     compiled,
		systemPrompt:  opts.SystemPrompt,
		contextWindow: window,
		perMinute:     rate.Limit(float64(perMinute) / 60.0),
		burst:         perMinute,
		metrics:       opts.Metrics,
		log:           log.With("component", "chat_service"),
	}, nil
}

// Chat sends a prompt on behalf of a student and returns the stored
// assistant reply. Both turns are persisted; the student turn survives even
// when the upstream call fails.
func (s *ChatService) Chat(ctx context.Context, studentID string, req model.ChatRequest) (*model.ChatMessage, error) {
	if studentID == "" {
		return nil, errors.New("student ID is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !s.limiterFor(studentID).Allow() {
		s.count("chat.rate_limited")
		return nil, ErrChatRateLimited
	}

	history, err := s.messages.Recent(ctx, studentID, s.contextWindow)
	if err != nil {
		return nil, fmt.Errorf("load chat context: %w", err)
	}

	if _, err := s.messages.Insert(ctx, studentID, model.ChatRoleUser, req.Prompt); err != nil {
		return nil, fmt.Errorf("store prompt: %w", err)
	}

	started := time.Now()
	response, err := s.client.Complete(ctx, s.buildMessages(history, req.Prompt))
	if s.metrics != nil {
		s.metrics.Timing("chat.completion", time.Since(started), nil)
	}
	if err != nil {
		s.count("chat.upstream_error")
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	reply, err := s.extractReply(response)
	if err != nil {
		s.count("chat.extract_error")
		return nil, err
	}

	stored, err := s.messages.Insert(ctx, studentID, model.ChatRoleAssistant, reply)
	if err != nil {
		return nil, fmt.Errorf("store reply: %w", err)
	}

	s.count("chat.completed")
	s.awardChatPoints(ctx, studentID)
	return stored, nil
}

// History returns a student's conversation, newest first.
func (s *ChatService) History(ctx context.Context, studentID string, opts model.ChatHistoryOptions) ([]*model.ChatMessage, error) {
	return s.messages.History(ctx, studentID, opts)
}

// buildMessages assembles the wire conversation: optional system prompt,
// recent turns oldest first, then the new prompt.
func (s *ChatService) buildMessages(history []*model.ChatMessage, prompt string) []llm.Message {
	messages := make([]llm.Message, 0, len(history)+2)
	if s.systemPrompt != "" {
		messages = append(messages, llm.Message{Role: "system", Content: s.systemPrompt})
	}
	for _, turn := range history {
		messages = append(messages, llm.Message{Role: string(turn.Role), Content: turn.Content})
	}
	messages = append(messages, llm.Message{Role: "user", Content: prompt})
	return messages
}

// extractReply pulls the assistant text out of the provider response.
func (s *ChatService) extractReply(response any) (string, error) {
	raw, err := s.replyPath.Search(response)
	if err != nil {
		return "", fmt.Errorf("extract reply: %w", err)
	}
	reply, ok := raw.(string)
	if !ok || strings.TrimSpace(reply) == "" {
		return "", errors.New("completion response contained no reply text")
	}
	return reply, nil
}

// limiterFor returns the per-student limiter, creating it on first use.
func (s *ChatService) limiterFor(studentID string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.limiters == nil {
		s.limiters = make(map[string]*rate.Limiter)
	}
	limiter, ok := s.limiters[studentID]
	if !ok {
		limiter = rate.NewLimiter(s.perMinute, s.burst)
		s.limiters[studentID] = limiter
	}
	return limiter
}

func (s *ChatService) awardChatPoints(ctx context.Context, studentID string) {
	if s.points == nil {
		return
	}
	if _, err := s.points.Award(ctx, &model.AwardPointsRequest{
		StudentID: studentID,
		Delta:     pointsForChat,
		Reason:    "study helper chat",
	}); err != nil {
		s.log.ErrorContext(ctx, "points award failed",
			"student_id", studentID, "reason", "study helper chat", "error", err)
	}
}

func (s *ChatService) count(name string) {
	if s.metrics != nil {
		s.metrics.Count(name, 1, nil)
	}
}
