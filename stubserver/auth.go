package stubserver

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"skillsync/models"
)

type authRequest struct {
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func (s *Server) issueToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(24 * time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secret))
}

// Signup registers a user and returns a signed token.
func (s *Server) Signup(c *fiber.Ctx) error {
	var req authRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username, email and password are required"))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}

	user := models.User{
		ID:        uuid.New().String(),
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  string(hashed),
	}
	if err := s.DB.Create(&user).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewValidationError("Username or email already taken"))
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}
	return c.Status(fiber.StatusCreated).JSON(authResponse{Token: token, User: user})
}

// Login authenticates by email or username.
func (s *Server) Login(c *fiber.Ctx) error {
	var req authRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	var user models.User
	q := s.DB
	switch {
	case req.Email != "":
		q = q.Where("email = ?", req.Email)
	case req.Username != "":
		q = q.Where("username = ?", req.Username)
	default:
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Email or username is required"))
	}
	if err := q.First(&user).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewAuthRequiredError("Invalid credentials"))
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewAuthRequiredError("Invalid credentials"))
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}
	return c.JSON(authResponse{Token: token, User: user})
}

// authRequired validates the bearer token and stores the user ID in locals.
func (s *Server) authRequired(c *fiber.Ctx) error {
	header := c.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewAuthRequiredError("Missing or invalid authorization header"))
	}
	tokenStr := strings.TrimPrefix(header, "Bearer ")

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.secret), nil
	})
	if err != nil || !token.Valid {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewAuthRequiredError("Invalid or expired token"))
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewAuthRequiredError("Invalid token subject"))
	}
	c.Locals("userID", sub)
	return c.Next()
}
