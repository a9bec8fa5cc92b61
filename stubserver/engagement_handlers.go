package stubserver

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"skillsync/models"
)

// CreateProgress creates a progress update (protected)
func (s *Server) CreateProgress(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Content == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Content is required"))
	}

	item := models.ProgressUpdate{
		ID:      uuid.New().String(),
		UserID:  userID,
		Title:   req.Title,
		Content: req.Content,
		Likes:   []string{},
	}
	if err := s.DB.Create(&item).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// GetProgress returns one progress update with its derived counts (public)
func (s *Server) GetProgress(c *fiber.Ctx) error {
	id := c.Params("id")

	var item models.ProgressUpdate
	if err := s.DB.First(&item, "id = ?", id).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Progress update", id))
	}

	var likes []models.Like
	if err := s.DB.Where("progress_id = ?", id).Find(&likes).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}
	item.Likes = make([]string, 0, len(likes))
	for _, l := range likes {
		item.Likes = append(item.Likes, l.UserID)
	}
	item.LikeCount = len(item.Likes)

	count, err := s.commentCount(id)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}
	item.CommentCount = count

	return c.JSON(item)
}

// commentCount computes comments + replies for a progress update.
func (s *Server) commentCount(progressID string) (int, error) {
	var commentIDs []string
	if err := s.DB.Model(&models.Comment{}).
		Where("progress_id = ?", progressID).
		Pluck("id", &commentIDs).Error; err != nil {
		return 0, err
	}
	total := int64(len(commentIDs))
	if len(commentIDs) > 0 {
		var replies int64
		if err := s.DB.Model(&models.Reply{}).
			Where("comment_id IN ?", commentIDs).
			Count(&replies).Error; err != nil {
			return 0, err
		}
		total += replies
	}
	return int(total), nil
}

func (s *Server) attachCommentUsernames(comments []models.Comment) {
	for i := range comments {
		var user models.User
		if err := s.DB.First(&user, "id = ?", comments[i].UserID).Error; err == nil {
			comments[i].Username = user.Username
		}
	}
}

// GetComments returns all comments for a progress update (public)
func (s *Server) GetComments(c *fiber.Ctx) error {
	id := c.Params("id")

	if err := s.DB.First(&models.ProgressUpdate{}, "id = ?", id).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Progress update", id))
	}

	var comments []models.Comment
	if err := s.DB.Where("progress_id = ?", id).Order("created_at").Find(&comments).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}
	s.attachCommentUsernames(comments)
	return c.JSON(comments)
}

// CreateComment creates a comment on a progress update (protected)
func (s *Server) CreateComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	progressID := c.Params("id")

	if err := s.DB.First(&models.ProgressUpdate{}, "id = ?", progressID).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Progress update", progressID))
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Content == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Content is required"))
	}

	comment := models.Comment{
		ID:         uuid.New().String(),
		ProgressID: progressID,
		UserID:     userID,
		Content:    req.Content,
	}
	if err := s.DB.Create(&comment).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}
	s.attachCommentUsernames([]models.Comment{comment})
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// UpdateComment updates a comment (owner only)
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	commentID := c.Params("id")

	var comment models.Comment
	if err := s.DB.First(&comment, "id = ?", commentID).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Comment", commentID))
	}
	if comment.UserID != userID {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You can only update your own comments"))
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil || req.Content == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Content is required"))
	}

	comment.Content = req.Content
	comment.Edited = true
	if err := s.DB.Save(&comment).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}
	return c.JSON(comment)
}

// DeleteComment deletes a comment and all of its replies (owner only)
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	commentID := c.Params("id")

	var comment models.Comment
	if err := s.DB.First(&comment, "id = ?", commentID).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Comment", commentID))
	}
	if comment.UserID != userID {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You can only delete your own comments"))
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("comment_id = ?", commentID).Delete(&models.Reply{}).Error; err != nil {
			return err
		}
		return tx.Delete(&comment).Error
	})
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}
	return c.SendStatus(fiber.StatusOK)
}

// GetReplies returns all replies for a comment (public)
func (s *Server) GetReplies(c *fiber.Ctx) error {
	commentID := c.Params("id")

	if err := s.DB.First(&models.Comment{}, "id = ?", commentID).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Comment", commentID))
	}

	var replies []models.Reply
	if err := s.DB.Where("comment_id = ?", commentID).Order("created_at").Find(&replies).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}
	for i := range replies {
		var user models.User
		if err := s.DB.First(&user, "id = ?", replies[i].UserID).Error; err == nil {
			replies[i].Username = user.Username
		}
	}
	return c.JSON(replies)
}

// CreateReply creates a reply to a comment (protected). Replies cannot be
// nested further.
func (s *Server) CreateReply(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	commentID := c.Params("id")

	if err := s.DB.First(&models.Comment{}, "id = ?", commentID).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Comment", commentID))
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil || req.Content == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Content is required"))
	}

	reply := models.Reply{
		ID:        uuid.New().String(),
		CommentID: commentID,
		UserID:    userID,
		Content:   req.Content,
	}
	if err := s.DB.Create(&reply).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}
	return c.Status(fiber.StatusCreated).JSON(reply)
}

// UpdateReply updates a reply (owner only)
func (s *Server) UpdateReply(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	replyID := c.Params("id")

	var reply models.Reply
	if err := s.DB.First(&reply, "id = ?", replyID).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Reply", replyID))
	}
	if reply.UserID != userID {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You can only update your own comments"))
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil || req.Content == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Content is required"))
	}

	reply.Content = req.Content
	if err := s.DB.Save(&reply).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}
	return c.JSON(reply)
}

// DeleteReply deletes a reply (owner only)
func (s *Server) DeleteReply(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	replyID := c.Params("id")

	var reply models.Reply
	if err := s.DB.First(&reply, "id = ?", replyID).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Reply", replyID))
	}
	if reply.UserID != userID {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You can only delete your own comments"))
	}

	if err := s.DB.Delete(&reply).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}
	return c.SendStatus(fiber.StatusOK)
}

// LikeProgress records a like; repeating it is a no-op (protected)
func (s *Server) LikeProgress(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	progressID := c.Params("id")

	if err := s.DB.First(&models.ProgressUpdate{}, "id = ?", progressID).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Progress update", progressID))
	}

	like := models.Like{
		ID:         uuid.New().String(),
		UserID:     userID,
		ProgressID: progressID,
	}
	// Idempotent: the unique (user, progress) index absorbs duplicates.
	err := s.DB.Where("user_id = ? AND progress_id = ?", userID, progressID).
		FirstOrCreate(&like).Error
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}
	return c.SendStatus(fiber.StatusOK)
}

// UnlikeProgress removes a like; removing a missing like is a no-op (protected)
func (s *Server) UnlikeProgress(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	progressID := c.Params("id")

	if err := s.DB.Where("user_id = ? AND progress_id = ?", userID, progressID).
		Delete(&models.Like{}).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}
	return c.SendStatus(fiber.StatusOK)
}
