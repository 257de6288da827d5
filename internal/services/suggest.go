package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kzmshx/taskhub/internal/authz"
	"github.com/kzmshx/taskhub/internal/repository"
	"github.com/sashabaranov/go-openai"
	"gorm.io/gorm"
)

var (
	ErrSuggestUnavailable = errors.New("task suggestion is not configured")
	ErrSuggestTextEmpty   = errors.New("text cannot be empty")
)

// SuggestService extracts task drafts from free-form text using OpenAI.
// Suggestions target a project, so the caller needs the same permission it
// would need to create tasks there.
type SuggestService struct {
	client      *openai.Client
	projectRepo repository.ProjectRepository
}

// SuggestedTask is a draft extracted from text. It is never persisted; the
// client decides which drafts become real tasks.
type SuggestedTask struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
}

// NewSuggestService creates a SuggestService. With an empty API key the
// service stays up but reports itself unavailable.
func NewSuggestService(apiKey string, projectRepo repository.ProjectRepository) *SuggestService {
	s := &SuggestService{projectRepo: projectRepo}
	if apiKey != "" {
		s.client = openai.NewClient(apiKey)
	}
	return s
}

// SuggestTasks extracts task drafts from text for a project.
func (s *SuggestService) SuggestTasks(ctx context.Context, caller authz.Identity, projectID uint64, text string) ([]SuggestedTask, error) {
	if s.client == nil {
		return nil, ErrSuggestUnavailable
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrSuggestTextEmpty
	}
	if !authz.CanPerform(caller.Role, authz.ActionCreate, authz.ResourceTask) {
		return nil, ErrPermissionDenied
	}

	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if !authz.CanCreateTaskIn(caller.Role, caller.UserID, project) {
		return nil, ErrPermissionDenied
	}

	prompt := fmt.Sprintf(`You are a task extraction assistant. Extract concrete tasks from the text below.

Current time: %s

Text:
%s

Return a JSON array of the extracted tasks in this shape:
[
  {
    "title": "short task title",
    "description": "task details",
    "due_date": "deadline in ISO8601, e.g. 2026-08-28T23:59:59Z, or null when the text gives none"
  }
]

Rules:
- Return an empty array [] when the text contains no tasks
- Convert relative deadlines ("tomorrow", "next week") into concrete timestamps
- due_date must be an ISO8601 string or null
- Return only JSON, no commentary`, time.Now().Format("2006-01-02 15:04:05"), text)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := resp.Choices[0].Message.Content

	var tasks []SuggestedTask
	if err := json.Unmarshal([]byte(content), &tasks); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	return tasks, nil
}
