package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kzmshx/taskhub/internal/middleware"
	"github.com/kzmshx/taskhub/internal/models"
	"github.com/kzmshx/taskhub/internal/repository"
	"github.com/kzmshx/taskhub/internal/services"
	"github.com/kzmshx/taskhub/pkg/auth"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type handlerTestEnv struct {
	db     *gorm.DB
	router *gin.Engine
	tokens *auth.TokenManager

	userRepo    repository.UserRepository
	projectRepo repository.ProjectRepository
	taskRepo    repository.TaskRepository

	authService *services.AuthService
}

func setupHandlerTestEnv(t *testing.T) *handlerTestEnv {
	t.Helper()

	gin.SetMode(gin.TestMode)

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

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	labelRepo := repository.NewLabelRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)

	tokens := auth.NewTokenManager("test-secret", time.Hour)

	authService := services.NewAuthService(userRepo)
	taskService := services.NewTaskService(taskRepo, projectRepo, labelRepo, commentRepo, attachmentRepo, userRepo)
	projectService := services.NewProjectService(projectRepo, taskRepo, labelRepo)
	suggestService := services.NewSuggestService("", projectRepo)

	authHandler := NewAuthHandler(authService, tokens)
	taskHandler := NewTaskHandler(taskService, suggestService)
	projectHandler := NewProjectHandler(projectService)

	r := gin.New()
	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", middleware.RequireAuth(tokens), authHandler.GetCurrentUser)

	projects := api.Group("/projects")
	projects.Use(middleware.RequireAuth(tokens))
	projects.GET("", projectHandler.ListProjects)
	projects.POST("", projectHandler.CreateProject)
	projects.GET("/:id", projectHandler.GetProject)

	tasks := api.Group("/tasks")
	tasks.Use(middleware.RequireAuth(tokens))
	tasks.GET("", taskHandler.ListTasks)
	tasks.POST("", taskHandler.CreateTask)
	tasks.POST("/suggest", taskHandler.SuggestTasks)
	tasks.GET("/:id", taskHandler.GetTask)
	tasks.PATCH("/:id", taskHandler.UpdateTask)
	tasks.DELETE("/:id", taskHandler.DeleteTask)

	return &handlerTestEnv{
		db:          db,
		router:      r,
		tokens:      tokens,
		userRepo:    userRepo,
		projectRepo: projectRepo,
		taskRepo:    taskRepo,
		authService: authService,
	}
}

func (env *handlerTestEnv) createUser(t *testing.T, email string, role models.Role) *models.User {
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

func (env *handlerTestEnv) tokenFor(t *testing.T, user *models.User) string {
	t.Helper()

	token, err := env.tokens.Issue(user.ID, user.Role)
	require.NoError(t, err)
	return token
}

func authorize(req *http.Request, token string) {
	req.Header.Set("Authorization", "Bearer "+token)
}
