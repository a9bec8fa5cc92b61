package stubserver

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"skillsync/models"
)

func (s *Server) userRef(id string) models.UserRef {
	var user models.User
	if err := s.DB.First(&user, "id = ?", id).Error; err != nil {
		return models.UserRef{ID: id}
	}
	return models.UserRef{
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
}

// GetFollowers returns a user's followers as {count, users} (public)
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	userID := c.Params("id")

	var edges []models.Follow
	if err := s.DB.Where("followee_id = ?", userID).Find(&edges).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}
	users := make([]models.UserRef, 0, len(edges))
	for _, e := range edges {
		users = append(users, s.userRef(e.FollowerID))
	}
	return c.JSON(fiber.Map{"count": len(users), "users": users})
}

// GetFollowing returns who a user follows. This endpoint predates the
// followers one and still ships the list under "following"; clients
// normalize both shapes.
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	userID := c.Params("id")

	var edges []models.Follow
	if err := s.DB.Where("follower_id = ?", userID).Find(&edges).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}
	users := make([]models.UserRef, 0, len(edges))
	for _, e := range edges {
		users = append(users, s.userRef(e.FolloweeID))
	}
	return c.JSON(fiber.Map{"count": len(users), "following": users})
}

// IsFollowing answers the direct relationship query (public)
func (s *Server) IsFollowing(c *fiber.Ctx) error {
	subjectID := c.Params("id")
	viewerID := c.Query("viewerId")
	if viewerID == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("viewerId is required"))
	}

	var count int64
	if err := s.DB.Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", viewerID, subjectID).
		Count(&count).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"isFollowing": count > 0})
}

// FollowUser creates a follow edge; repeated follows are no-ops (protected)
func (s *Server) FollowUser(c *fiber.Ctx) error {
	followerID := c.Locals("userID").(string)
	followeeID := c.Params("id")

	if followerID == followeeID {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Cannot follow yourself"))
	}
	if err := s.DB.First(&models.User{}, "id = ?", followeeID).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("User", followeeID))
	}

	edge := models.Follow{
		ID:         uuid.New().String(),
		FollowerID: followerID,
		FolloweeID: followeeID,
	}
	// Idempotent: duplicate follows hit the unique pair index and are dropped.
	if err := s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&edge).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"success": true, "message": "Now following"})
}

// UnfollowUser removes a follow edge; removing a missing edge is a no-op (protected)
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	followerID := c.Locals("userID").(string)
	followeeID := c.Params("id")

	if err := s.DB.Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&models.Follow{}).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"success": true, "message": "Unfollowed"})
}
