package router

import (
	"github.com/anonto42/nano-social/backend/internal/handlers"
	"github.com/anonto42/nano-social/backend/internal/middleware"
	"github.com/anonto42/nano-social/backend/internal/notifications"
	"github.com/anonto42/nano-social/backend/internal/realtime"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/internal/token"
	"github.com/anonto42/nano-social/backend/internal/validators"
	"github.com/anonto42/nano-social/backend/pkg/logger"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
)

// Repositories groups the stores the handlers are built on
type Repositories struct {
	Users         repositories.UserRepository
	Posts         repositories.PostRepository
	Likes         repositories.LikeRepository
	Comments      repositories.CommentRepository
	Follows       repositories.FollowRepository
	Notifications repositories.NotificationRepository
}

// MongoRepositories builds every repository on one database
func MongoRepositories(db *mongo.Database) Repositories {
	return Repositories{
		Users:         repositories.NewMongoUserRepository(db),
		Posts:         repositories.NewMongoPostRepository(db),
		Likes:         repositories.NewMongoLikeRepository(db),
		Comments:      repositories.NewMongoCommentRepository(db),
		Follows:       repositories.NewMongoFollowRepository(db),
		Notifications: repositories.NewMongoNotificationRepository(db),
	}
}

// Dependencies is everything SetupRoutes wires together
type Dependencies struct {
	Repos  Repositories
	Issuer *token.Issuer
	Hub    *realtime.Hub
	// Emitter is the hub itself or a relay in front of it
	Emitter realtime.Emitter
	// FirebaseAuth is nil when federated login is disabled
	FirebaseAuth  handlers.IDTokenVerifier
	HealthChecks  map[string]handlers.Pinger
	WSRequireAuth bool
	CookieSecure  bool
	WSConfig      realtime.Config
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, log zerolog.Logger) {
	e.HideBanner = true
	e.HTTPErrorHandler = handlers.ErrorHandler
	e.Validator = validators.NewValidator()

	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.Use(logger.EchoMiddleware(log))
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	repos := deps.Repos
	auth := middleware.JWTAuthMiddleware(deps.Issuer)
	notifier := notifications.NewNotifier(repos.Notifications, repos.Posts, deps.Emitter)

	e.GET("/health", handlers.NewHealthHandler(deps.HealthChecks).HealthCheck)

	// --- Authentication ---
	authHandler := handlers.NewAuthHandler(repos.Users, deps.Issuer, deps.FirebaseAuth, deps.CookieSecure)
	authHandler.RegisterAuthRoutes(e.Group("/auth"))

	// --- Users ---
	users := e.Group("/users")
	handlers.NewUserHandler(repos.Users).RegisterProfileRoutes(users, auth)
	postHandler := handlers.NewPostHandler(repos.Posts, repos.Follows, notifier)
	postHandler.RegisterOwnPostRoutes(users, auth)
	likeHandler := handlers.NewLikeHandler(repos.Likes, notifier)
	likeHandler.RegisterLikedPostRoutes(users, auth)
	handlers.NewFollowHandler(repos.Follows, notifier).RegisterFollowRoutes(users, auth)

	// --- Posts ---
	posts := e.Group("/posts")
	handlers.NewFeedHandler(repos.Posts, repos.Likes).RegisterFeedRoutes(posts)
	postHandler.RegisterPostRoutes(posts)
	likeHandler.RegisterLikeRoutes(posts, auth)
	handlers.NewCommentHandler(repos.Comments, notifier).RegisterCommentRoutes(posts, auth)

	// --- Search ---
	handlers.NewSearchHandler(repos.Users, repos.Posts).RegisterSearchRoutes(e.Group("/search"))

	// --- Notifications (all protected) ---
	handlers.NewNotificationHandler(repos.Notifications).RegisterNotificationRoutes(e.Group("/notifications", auth))

	// --- Live channel ---
	handlers.NewWSHandler(deps.Hub, deps.Issuer, deps.WSRequireAuth, deps.WSConfig).RegisterRoutes(e)

	l := logger.L()
	l.Info().Int("routes", len(e.Routes())).Bool("firebase", deps.FirebaseAuth != nil).Msg("routes configured")
}
