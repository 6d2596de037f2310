package router

import (
	"log"
	"os"
	"time"

	"github.com/coursedeck/coursedeck/database"
	"github.com/coursedeck/coursedeck/handlers"
	assignment_handlers "github.com/coursedeck/coursedeck/handlers/assignment"
	auth_handlers "github.com/coursedeck/coursedeck/handlers/auth"
	course_handlers "github.com/coursedeck/coursedeck/handlers/course"
	submission_handlers "github.com/coursedeck/coursedeck/handlers/submission"
	"github.com/coursedeck/coursedeck/model"
	"github.com/coursedeck/coursedeck/services"
	"github.com/coursedeck/coursedeck/utils/auth"
	"github.com/coursedeck/coursedeck/utils/cache"
	"github.com/coursedeck/coursedeck/utils/middleware"
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes wires every endpoint. The store argument may be nil when no
// object storage is configured; file submissions return an error then.
func SetupRoutes(app *fiber.App, dbStore *database.GORMStore, objectStore services.ObjectStore) {
	// Get JWT secret from environment
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "coursedeck-api"
	}

	// Initialize JWT manager with config
	jwtConfig := auth.JWTConfig{
		Secret:        jwtSecret,
		Expiry:        24 * time.Hour,     // Access token expires in 24 hours
		RefreshExpiry: 7 * 24 * time.Hour, // Refresh token expires in 7 days
		Issuer:        jwtIssuer,
	}
	jwtManager := auth.NewJWTManager(jwtConfig)

	db := dbStore.DB()

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
	if redisCache != nil && err == nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	// Initialize auth middleware with DB for blacklist checking
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	// Services
	courseService := services.NewCourseService(db)
	assignmentService := services.NewAssignmentService(db)
	submissionService := services.NewSubmissionService(db, objectStore)

	// Handlers
	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, bruteForceProtection)
	courseHandler := course_handlers.NewCourseHandler(courseService)
	assignmentHandler := assignment_handlers.NewAssignmentHandler(assignmentService)
	submissionHandler := submission_handlers.NewSubmissionHandler(submissionService)

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
	app.Get("/ping", handlers.HandleCheckHealth(dbStore))

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes (public)
	authGroup := api.Group("/auth")

	// Login with brute force protection
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	authGroup.Post("/refresh", authHandler.RefreshToken)

	// Protected auth routes
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)

	// Profile routes (protected)
	profileGroup := api.Group("/profile", authMiddleware.Required())
	profileGroup.Get("/", authHandler.GetProfile)
	profileGroup.Put("/", authHandler.UpdateProfile)

	// Professor course roster
	professors := api.Group("/professors", authMiddleware.Required())
	professors.Get("/me/courses", authMiddleware.RequireStaff(), courseHandler.MyCourses)

	// Student course list
	students := api.Group("/students", authMiddleware.Required())
	students.Get("/me/courses", authMiddleware.RequireRole(model.RoleStudent), courseHandler.StudentCourses)

	// Courses
	courses := api.Group("/courses", authMiddleware.Required())
	courses.Post("/", authMiddleware.RequireStaff(), courseHandler.UpsertCourse)
	courses.Get("/:id", courseHandler.GetCourse)
	courses.Get("/:course_id/assignments", authMiddleware.RequireStaff(), assignmentHandler.CourseAssignments)
	courses.Get("/:course_id/assignments/student", authMiddleware.RequireRole(model.RoleStudent), assignmentHandler.StudentCourseAssignments)

	// Assignments
	assignments := api.Group("/assignments", authMiddleware.Required())
	assignments.Post("/", authMiddleware.RequireStaff(), assignmentHandler.UpsertAssignment)
	assignments.Get("/:id/student", authMiddleware.RequireRole(model.RoleStudent), assignmentHandler.StudentAssignment)
	assignments.Get("/:id/submissions", authMiddleware.RequireStaff(), assignmentHandler.AssignmentSubmissions)
	assignments.Post("/:id/submit", authMiddleware.RequireRole(model.RoleStudent), submissionHandler.Submit)

	// Submissions
	submissions := api.Group("/submissions", authMiddleware.Required())
	submissions.Post("/", authMiddleware.RequireRole(model.RoleStudent), submissionHandler.Create)
	submissions.Post("/:id/grade", authMiddleware.RequireStaff(), submissionHandler.Grade)
}
