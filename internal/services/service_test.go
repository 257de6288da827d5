package services

import (
	"testing"
	"time"

	"github.com/kzmshx/taskhub/internal/authz"
	"github.com/kzmshx/taskhub/internal/models"
	"github.com/kzmshx/taskhub/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	db *gorm.DB

	userRepo       repository.UserRepository
	projectRepo    repository.ProjectRepository
	taskRepo       repository.TaskRepository
	labelRepo      repository.LabelRepository
	commentRepo    repository.CommentRepository
	attachmentRepo repository.AttachmentRepository

	authService      *AuthService
	userService      *UserService
	projectService   *ProjectService
	taskService      *TaskService
	labelService     *LabelService
	commentService   *CommentService
	dashboardService *DashboardService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Task{},
		&models.Label{},
		&models.Comment{},
		&models.Attachment{},
	)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	env := &testEnv{
		db:             db,
		userRepo:       repository.NewUserRepository(db),
		projectRepo:    repository.NewProjectRepository(db),
		taskRepo:       repository.NewTaskRepository(db),
		labelRepo:      repository.NewLabelRepository(db),
		commentRepo:    repository.NewCommentRepository(db),
		attachmentRepo: repository.NewAttachmentRepository(db),
	}

	env.authService = NewAuthService(env.userRepo)
	env.userService = NewUserService(env.userRepo)
	env.projectService = NewProjectService(env.projectRepo, env.taskRepo, env.labelRepo)
	env.taskService = NewTaskService(env.taskRepo, env.projectRepo, env.labelRepo, env.commentRepo, env.attachmentRepo, env.userRepo)
	env.labelService = NewLabelService(env.labelRepo, env.projectRepo)
	env.commentService = NewCommentService(env.commentRepo, env.taskService)
	env.dashboardService = NewDashboardService(env.taskRepo, env.projectRepo)

	return env
}

func (env *testEnv) createUser(t *testing.T, email string, role models.Role) *models.User {
	t.Helper()

	user := &models.User{
		Email:        email,
		Name:         email,
		Role:         role,
		PasswordHash: "x",
	}
	require.NoError(t, env.userRepo.Create(user))
	return user
}

func (env *testEnv) createProject(t *testing.T, name string, ownerID uint64) *models.Project {
	t.Helper()

	project := &models.Project{Name: name, OwnerID: ownerID}
	require.NoError(t, env.projectRepo.Create(project))
	return project
}

func (env *testEnv) createTask(t *testing.T, title string, projectID uint64, assigneeID *uint64) *models.Task {
	t.Helper()

	task := &models.Task{
		Title:      title,
		Status:     models.TaskStatusBacklog,
		Priority:   models.TaskPriorityMedium,
		ProjectID:  projectID,
		AssigneeID: assigneeID,
	}
	require.NoError(t, env.taskRepo.CreateWithLabels(task, nil))
	return task
}

func (env *testEnv) createLabel(t *testing.T, name string, projectID uint64) *models.Label {
	t.Helper()

	label := &models.Label{Name: name, Color: "#ff0000", ProjectID: projectID}
	require.NoError(t, env.labelRepo.Create(label))
	return label
}

func identity(user *models.User) authz.Identity {
	return authz.Identity{UserID: user.ID, Role: user.Role}
}

func datePtr(t time.Time) *time.Time {
	return &t
}
