package router

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/campus-portal-api/database"
	"github.com/sahilchouksey/campus-portal-api/handlers"
	admin_handlers "github.com/sahilchouksey/campus-portal-api/handlers/admin"
	auth_handlers "github.com/sahilchouksey/campus-portal-api/handlers/auth"
	course_handlers "github.com/sahilchouksey/campus-portal-api/handlers/course"
	event_handlers "github.com/sahilchouksey/campus-portal-api/handlers/event"
	notification_handlers "github.com/sahilchouksey/campus-portal-api/handlers/notification"
	placement_handlers "github.com/sahilchouksey/campus-portal-api/handlers/placement"
	"github.com/sahilchouksey/campus-portal-api/model"
	"github.com/sahilchouksey/campus-portal-api/services/storage"
	"github.com/sahilchouksey/campus-portal-api/utils/auth"
	"github.com/sahilchouksey/campus-portal-api/utils/cache"
	"github.com/sahilchouksey/campus-portal-api/utils/middleware"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, store database.Storage) {
	// Get JWT secret from environment
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "campus-portal-api"
	}

	jwtConfig := auth.JWTConfig{
		Secret:        jwtSecret,
		Expiry:        24 * time.Hour,     // Access token expires in 24 hours
		RefreshExpiry: 7 * 24 * time.Hour, // Refresh token expires in 7 days
		Issuer:        jwtIssuer,
	}
	jwtManager := auth.NewJWTManager(jwtConfig)

	// Get DB instance (type assert from interface)
	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	// Initialize Redis cache for brute force protection
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection will be disabled.", err)
	}

	var bruteForceProtection *middleware.BruteForceProtection
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	// Object storage for course materials, submissions and attachments
	storageClient, err := storage.NewSpacesClient(storage.SpacesConfig{
		AccessKey: os.Getenv("SPACES_ACCESS_KEY"),
		SecretKey: os.Getenv("SPACES_SECRET_KEY"),
		Bucket:    os.Getenv("SPACES_BUCKET"),
		Region:    os.Getenv("SPACES_REGION"),
		Endpoint:  os.Getenv("SPACES_ENDPOINT"),
	})
	if err != nil {
		log.Printf("Warning: Failed to initialize object storage: %v. File uploads will fail.", err)
	}

	// Initialize auth middleware with DB for blacklist checking
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, bruteForceProtection)
	courseHandler := course_handlers.NewCourseHandler(db, storageClient)
	eventHandler := event_handlers.NewEventHandler(db)
	notificationHandler := notification_handlers.NewNotificationHandler(db, storageClient)
	placementHandler := placement_handlers.NewPlacementHandler(db)
	adminHandler := admin_handlers.NewAdminHandler(db)

	// Apply security middleware
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:3001"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,             // 100 requests
		RateLimitWindow:   1 * time.Minute, // per minute
	})

	// Health check endpoint (public)
	app.Get("/ping", func(c *fiber.Ctx) error { return handlers.HandleCheckHealth(c, store) })

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)

	// Login with brute force protection
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	authGroup.Post("/refresh", authHandler.RefreshToken)

	// Protected auth routes
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)
	authGroup.Post("/change-password", authMiddleware.Required(), authHandler.ChangePassword)
	authGroup.Get("/me", authMiddleware.Required(), authHandler.GetProfile)

	// Profile routes (protected)
	profileGroup := api.Group("/profile", authMiddleware.Required())
	profileGroup.Get("/", authHandler.GetProfile)
	profileGroup.Put("/", authHandler.UpdateProfile)

	// Courses routes (all protected)
	courses := api.Group("/courses", authMiddleware.Required())
	courses.Get("/", courseHandler.ListCourses)
	courses.Get("/mine", courseHandler.MyCourses)
	courses.Get("/:id", courseHandler.GetCourse)
	courses.Post("/", authMiddleware.RequireRole(model.RoleFaculty, model.RoleAdmin), courseHandler.CreateCourse)
	courses.Put("/:id", authMiddleware.RequireRole(model.RoleFaculty, model.RoleAdmin), courseHandler.UpdateCourse)
	courses.Delete("/:id", authMiddleware.RequireRole(model.RoleFaculty, model.RoleAdmin), courseHandler.DeleteCourse)

	// Enrollment
	courses.Post("/:id/enroll", authMiddleware.RequireRole(model.RoleStudent), courseHandler.Enroll)
	courses.Delete("/:id/enroll", authMiddleware.RequireRole(model.RoleStudent), courseHandler.Unenroll)
	courses.Get("/:id/students", authMiddleware.RequireRole(model.RoleFaculty, model.RoleAdmin), courseHandler.ListEnrollments)

	// Course materials
	courses.Get("/:id/materials", courseHandler.ListMaterials)
	courses.Post("/:id/materials", authMiddleware.RequireRole(model.RoleFaculty, model.RoleAdmin), courseHandler.UploadMaterial)
	courses.Get("/:id/materials/:material_id/download", courseHandler.DownloadMaterial)
	courses.Delete("/:id/materials/:material_id", authMiddleware.RequireRole(model.RoleFaculty, model.RoleAdmin), courseHandler.DeleteMaterial)

	// Assignments and submissions
	courses.Get("/:id/assignments", courseHandler.ListAssignments)
	courses.Post("/:id/assignments", authMiddleware.RequireRole(model.RoleFaculty, model.RoleAdmin), courseHandler.CreateAssignment)
	courses.Delete("/:id/assignments/:assignment_id", authMiddleware.RequireRole(model.RoleFaculty, model.RoleAdmin), courseHandler.DeleteAssignment)
	courses.Post("/:id/assignments/:assignment_id/submissions", authMiddleware.RequireRole(model.RoleStudent), courseHandler.SubmitAssignment)
	courses.Get("/:id/assignments/:assignment_id/submissions", authMiddleware.RequireRole(model.RoleFaculty, model.RoleAdmin), courseHandler.ListSubmissions)
	courses.Patch("/:id/assignments/:assignment_id/submissions/:submission_id", authMiddleware.RequireRole(model.RoleFaculty, model.RoleAdmin), courseHandler.GradeSubmission)

	// Attendance
	courses.Post("/:id/attendance", authMiddleware.RequireRole(model.RoleFaculty, model.RoleAdmin), courseHandler.MarkAttendance)
	courses.Get("/:id/attendance", courseHandler.GetAttendance)

	// Events routes (all protected)
	events := api.Group("/events", authMiddleware.Required())
	events.Get("/", eventHandler.ListEvents)
	events.Get("/:id", eventHandler.GetEvent)
	events.Post("/", authMiddleware.RequireRole(model.RoleFaculty, model.RoleAdmin), eventHandler.CreateEvent)
	events.Delete("/:id", authMiddleware.RequireRole(model.RoleFaculty, model.RoleAdmin), eventHandler.DeleteEvent)
	events.Patch("/:id/status", authMiddleware.RequireAdmin(), eventHandler.UpdateStatus)
	events.Patch("/:id/capacity", authMiddleware.RequireRole(model.RoleFaculty, model.RoleAdmin), eventHandler.UpdateCapacity)
	events.Post("/:id/register", authMiddleware.RequireRole(model.RoleStudent), eventHandler.Register)
	events.Delete("/:id/register", authMiddleware.RequireRole(model.RoleStudent), eventHandler.Unregister)
	events.Get("/:id/registrations", authMiddleware.RequireRole(model.RoleFaculty, model.RoleAdmin), eventHandler.ListRegistrations)

	// Notifications routes (all protected)
	notifications := api.Group("/notifications", authMiddleware.Required())
	notifications.Get("/", notificationHandler.ListNotifications)
	notifications.Get("/unread-count", notificationHandler.GetUnreadCount)
	notifications.Post("/read-all", notificationHandler.MarkAllAsRead)
	notifications.Get("/:id", notificationHandler.GetNotification)
	notifications.Post("/", authMiddleware.RequireRole(model.RoleFaculty, model.RoleAdmin), notificationHandler.CreateNotification)
	notifications.Delete("/:id", authMiddleware.RequireRole(model.RoleFaculty, model.RoleAdmin), notificationHandler.DeleteNotification)
	notifications.Post("/:id/read", notificationHandler.MarkAsRead)
	notifications.Post("/:id/attachments", authMiddleware.RequireRole(model.RoleFaculty, model.RoleAdmin), notificationHandler.UploadAttachment)
	notifications.Get("/:id/attachments/:attachment_id/download", notificationHandler.DownloadAttachment)

	// Placements routes
	placements := api.Group("/placements", authMiddleware.Required())
	placements.Get("/", placementHandler.ListPlacements)
	placements.Get("/stats", placementHandler.GetStats)
	placements.Post("/", authMiddleware.RequireAdmin(), placementHandler.CreatePlacement)
	placements.Post("/upload", authMiddleware.RequireAdmin(), placementHandler.UploadPlacements)
	placements.Delete("/:id", authMiddleware.RequireAdmin(), placementHandler.DeletePlacement)

	// Admin routes
	admin := api.Group("/admin", authMiddleware.RequireAdmin())
	admin.Get("/users", adminHandler.ListUsers)
	admin.Get("/users/next-code", adminHandler.PreviewUserCode)
	admin.Get("/users/:id", adminHandler.GetUser)
	admin.Post("/users", adminHandler.CreateUser)
	admin.Put("/users/:id", adminHandler.UpdateUser)
	admin.Delete("/users/:id", adminHandler.DeleteUser)
	admin.Get("/activities", adminHandler.ListActivities)
	admin.Post("/broadcast", notificationHandler.Broadcast)
}
