package stubserver

import (
	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"skillsync/models"
)

// Seed inserts n fake users, each with one progress update, and returns
// them. Intended for local development and the demo command.
func (s *Server) Seed(n int) ([]models.User, []models.ProgressUpdate, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		return nil, nil, err
	}

	users := make([]models.User, 0, n)
	items := make([]models.ProgressUpdate, 0, n)
	for i := 0; i < n; i++ {
		user := models.User{
			ID:        uuid.New().String(),
			Username:  gofakeit.Username(),
			FirstName: gofakeit.FirstName(),
			LastName:  gofakeit.LastName(),
			Email:     gofakeit.Email(),
			Password:  string(hashed),
		}
		if err := s.DB.Create(&user).Error; err != nil {
			return nil, nil, err
		}
		item := models.ProgressUpdate{
			ID:      uuid.New().String(),
			UserID:  user.ID,
			Title:   gofakeit.Sentence(4),
			Content: gofakeit.Paragraph(1, 2, 8, " "),
		}
		if err := s.DB.Create(&item).Error; err != nil {
			return nil, nil, err
		}
		users = append(users, user)
		items = append(items, item)
	}
	return users, items, nil
}

// TokenFor issues a token for an existing user, for tests and the demo.
func (s *Server) TokenFor(userID string) (string, error) {
	return s.issueToken(userID)
}
