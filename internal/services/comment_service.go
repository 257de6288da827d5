package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kzmshx/taskhub/internal/authz"
	"github.com/kzmshx/taskhub/internal/models"
	"github.com/kzmshx/taskhub/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrCommentNotFound  = errors.New("comment not found")
	ErrCommentEmpty     = errors.New("comment content cannot be empty")
	ErrNotCommentAuthor = errors.New("only the comment author can perform this action")
)

// CommentService provides business logic for comment operations. Mutation is
// author-only for every role; even an ADMIN may not edit someone else's
// comment.
type CommentService struct {
	commentRepo repository.CommentRepository
	taskService *TaskService
}

// NewCommentService creates a new CommentService.
func NewCommentService(commentRepo repository.CommentRepository, taskService *TaskService) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		taskService: taskService,
	}
}

// ListComments returns a task's comments newest first. Task visibility
// rules apply.
func (s *CommentService) ListComments(caller authz.Identity, taskID uint64) ([]models.Comment, error) {
	if _, err := s.taskService.requireVisible(caller, taskID, "Project"); err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// CreateComment posts a comment authored by the caller on a visible task.
func (s *CommentService) CreateComment(caller authz.Identity, taskID uint64, content string) (*models.Comment, error) {
	if !authz.CanPerform(caller.Role, authz.ActionCreate, authz.ResourceComment) {
		return nil, ErrPermissionDenied
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrCommentEmpty
	}

	if _, err := s.taskService.requireVisible(caller, taskID, "Project"); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content:  content,
		TaskID:   taskID,
		AuthorID: caller.UserID,
	}

	if err := s.commentRepo.Create(comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	return s.commentRepo.FindByID(comment.ID, "Author")
}

// UpdateComment replaces a comment's content. Author only, for all roles.
func (s *CommentService) UpdateComment(caller authz.Identity, commentID uint64, content string) (*models.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrCommentEmpty
	}

	comment, err := s.findComment(commentID)
	if err != nil {
		return nil, err
	}

	if !authz.CanMutateComment(caller.UserID, comment) {
		return nil, ErrNotCommentAuthor
	}

	comment.Content = content
	if err := s.commentRepo.Update(comment); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}

	return s.commentRepo.FindByID(comment.ID, "Author")
}

// DeleteComment removes a comment. Author only, for all roles.
func (s *CommentService) DeleteComment(caller authz.Identity, commentID uint64) error {
	comment, err := s.findComment(commentID)
	if err != nil {
		return err
	}

	if !authz.CanMutateComment(caller.UserID, comment) {
		return ErrNotCommentAuthor
	}

	if err := s.commentRepo.Delete(commentID); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	return nil
}

func (s *CommentService) findComment(commentID uint64) (*models.Comment, error) {
	comment, err := s.commentRepo.FindByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}
	return comment, nil
}
