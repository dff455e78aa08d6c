package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const maxChatPromptLen = 4000

// ChatRole identifies who authored a chat message.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// Valid reports whether the chat role is supported.
func (r ChatRole) Valid() bool {
	return r == ChatRoleUser || r == ChatRoleAssistant
}

// ChatMessage is one turn of a student's AI study-helper conversation.
type ChatMessage struct {
	ID        string    `json:"id"         db:"id"`
	StudentID string    `json:"student_id" db:"student_id"`
	Role      ChatRole  `json:"role"       db:"role"`
	Content   string    `json:"content"    db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ChatRequest represents a student's prompt to the AI study helper.
type ChatRequest struct {
	Prompt string `json:"prompt"`
}

// Validate validates ChatRequest.
func (r *ChatRequest) Validate() error {
	p := strings.TrimSpace(r.Prompt)
	if p == "" {
		return errors.New("prompt is required")
	}
	if utf8.RuneCountInString(p) > maxChatPromptLen {
		return errors.New("prompt cannot exceed 4000 characters")
	}
	r.Prompt = p
	return nil
}

// ChatHistoryOptions controls paging for a student's chat history.
type ChatHistoryOptions struct {
	Limit  int
	Offset int
}
