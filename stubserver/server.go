// Package stubserver is a self-contained implementation of the platform API
// the synchronization core consumes: auth, progress updates, comments,
// replies, likes, and follow relationships over an in-memory database. It
// backs local development, the demo command, and the integration tests.
package stubserver

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"skillsync/models"
)

// Server bundles the fiber app and its database.
type Server struct {
	App    *fiber.App
	DB     *gorm.DB
	secret string
}

// New builds the server with an in-memory sqlite database and all routes
// registered.
func New(jwtSecret string) *Server {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.ProgressUpdate{},
		&models.Comment{},
		&models.Reply{},
		&models.Like{},
		&models.Follow{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	s := &Server{
		App:    fiber.New(fiber.Config{DisableStartupMessage: true}),
		DB:     db,
		secret: jwtSecret,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.App.Group("/api")

	// Health check
	api.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "skillsync stub api",
			"version": "1.0.0",
		})
	})

	auth := api.Group("/auth")
	auth.Post("/signup", s.Signup)
	auth.Post("/login", s.Login)

	users := api.Group("/users")
	users.Get("/:id/followers", s.GetFollowers)
	users.Get("/:id/following", s.GetFollowing)
	users.Get("/:id/is-following", s.IsFollowing)
	users.Post("/:id/follow", s.authRequired, s.FollowUser)
	users.Delete("/:id/follow", s.authRequired, s.UnfollowUser)

	progress := api.Group("/progress")
	progress.Post("/", s.authRequired, s.CreateProgress)
	progress.Get("/:id", s.GetProgress)
	progress.Get("/:id/comments", s.GetComments)
	progress.Post("/:id/comments", s.authRequired, s.CreateComment)
	progress.Post("/:id/like", s.authRequired, s.LikeProgress)
	progress.Delete("/:id/like", s.authRequired, s.UnlikeProgress)

	comments := api.Group("/comments")
	comments.Put("/:id", s.authRequired, s.UpdateComment)
	comments.Delete("/:id", s.authRequired, s.DeleteComment)
	comments.Get("/:id/replies", s.GetReplies)
	comments.Post("/:id/replies", s.authRequired, s.CreateReply)

	replies := api.Group("/replies")
	replies.Put("/:id", s.authRequired, s.UpdateReply)
	replies.Delete("/:id", s.authRequired, s.DeleteReply)
}

// Listen starts serving on the given port.
func (s *Server) Listen(port string) error {
	return s.App.Listen(":" + port)
}
