package services

import (
	"testing"

	"github.com/kzmshx/taskhub/internal/models"
	"github.com/stretchr/testify/require"
)

func TestCommentService_CreateComment(t *testing.T) {
	env := setupTestEnv(t)

	manager := env.createUser(t, "manager@example.com", models.RoleManager)
	member := env.createUser(t, "member@example.com", models.RoleMember)
	project := env.createProject(t, "p", manager.ID)
	task := env.createTask(t, "task", project.ID, &member.ID)

	comment, err := env.commentService.CreateComment(identity(member), task.ID, "looks good")
	require.NoError(t, err)
	require.Equal(t, member.ID, comment.AuthorID)

	_, err = env.commentService.CreateComment(identity(member), task.ID, "   ")
	require.ErrorIs(t, err, ErrCommentEmpty)
}

func TestCommentService_CreateComment_HiddenTask(t *testing.T) {
	env := setupTestEnv(t)

	manager := env.createUser(t, "manager@example.com", models.RoleManager)
	member := env.createUser(t, "member@example.com", models.RoleMember)
	project := env.createProject(t, "p", manager.ID)
	task := env.createTask(t, "not yours", project.ID, nil)

	_, err := env.commentService.CreateComment(identity(member), task.ID, "sneaky")
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestCommentService_ListComments_NewestFirst(t *testing.T) {
	env := setupTestEnv(t)

	manager := env.createUser(t, "manager@example.com", models.RoleManager)
	project := env.createProject(t, "p", manager.ID)
	task := env.createTask(t, "task", project.ID, nil)

	for _, content := range []string{"first", "second", "third"} {
		comment := &models.Comment{Content: content, TaskID: task.ID, AuthorID: manager.ID}
		require.NoError(t, env.commentRepo.Create(comment))
	}

	comments, err := env.commentService.ListComments(identity(manager), task.ID)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	require.True(t, !comments[0].CreatedAt.Before(comments[2].CreatedAt))
}

func TestCommentService_MutationIsAuthorOnly(t *testing.T) {
	env := setupTestEnv(t)

	admin := env.createUser(t, "admin@example.com", models.RoleAdmin)
	manager := env.createUser(t, "manager@example.com", models.RoleManager)
	member := env.createUser(t, "member@example.com", models.RoleMember)
	project := env.createProject(t, "p", manager.ID)
	task := env.createTask(t, "task", project.ID, &member.ID)

	comment, err := env.commentService.CreateComment(identity(member), task.ID, "original")
	require.NoError(t, err)

	updated, err := env.commentService.UpdateComment(identity(member), comment.ID, "edited")
	require.NoError(t, err)
	require.Equal(t, "edited", updated.Content)

	// Author-only holds for every role; even an admin is refused
	_, err = env.commentService.UpdateComment(identity(admin), comment.ID, "overruled")
	require.ErrorIs(t, err, ErrNotCommentAuthor)

	err = env.commentService.DeleteComment(identity(admin), comment.ID)
	require.ErrorIs(t, err, ErrNotCommentAuthor)

	require.NoError(t, env.commentService.DeleteComment(identity(member), comment.ID))

	_, err = env.commentService.UpdateComment(identity(member), comment.ID, "gone")
	require.ErrorIs(t, err, ErrCommentNotFound)
}
