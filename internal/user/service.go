package user

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/marketplace-backend/config"
	"github.com/dustin/marketplace-backend/internal/catalog"
	"github.com/dustin/marketplace-backend/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// tokenIssuer is the iss claim on issued tokens
const tokenIssuer = "marketplace-backend"

// service implements the Service interface
type service struct {
	repo      Repository
	jwtSecret string
	jwtExpiry time.Duration
	logger    *logger.Logger
}

// NewService creates a user service with JWT validation and defaults
func NewService(cfg *config.JWTConfig, repo Repository, log *logger.Logger) (Service, error) {
	// Set defaults for nil or empty config values
	secret := "change-me-in-production"
	if cfg != nil && cfg.Secret != "" {
		secret = cfg.Secret
	}

	var expiry time.Duration = 24 * time.Hour
	if cfg != nil && cfg.Expiration != "" {
		duration, err := time.ParseDuration(cfg.Expiration)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT expiration '%s': %v", cfg.Expiration, err)
		}
		expiry = duration
	}

	return &service{
		repo:      repo,
		jwtSecret: secret,
		jwtExpiry: expiry,
		logger:    log.WithComponent("user-service"),
	}, nil
}

// Claims represents JWT claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

func (s *service) SignUp(email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	s.logger.Info("User signup attempt for email: " + email)

	// Check if user exists
	existing, _ := s.repo.FindByEmail(email)
	if existing != nil {
		s.logger.Info("Signup failed - user already exists: " + email)
		return nil, ErrUserExists
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("Failed to hash password for " + email + ": " + err.Error())
		return nil, err
	}

	preferences, err := catalog.EncodePreferences(catalog.DefaultPreferences())
	if err != nil {
		return nil, fmt.Errorf("failed to encode preferences: %w", err)
	}

	user := &User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hashedPassword),
		Preferences:  preferences,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.repo.Create(user); err != nil {
		s.logger.Error("Failed to create user " + email + ": " + err.Error())
		return nil, err
	}

	s.logger.Info("User created successfully: " + email + " (ID: " + user.ID.String() + ")")

	return user, nil
}

func (s *service) Login(email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	s.logger.Info("User login attempt for email: " + email)

	user, err := s.repo.FindByEmail(email)
	if err != nil {
		s.logger.Info("Login failed - user not found: " + email)
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("Login failed - invalid password for " + email + " (ID: " + user.ID.String() + ")")
		return "", ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		s.logger.Error("Failed to generate JWT token for " + email + " (ID: " + user.ID.String() + "): " + err.Error())
		return "", err
	}

	s.logger.Info("User logged in successfully: " + email + " (ID: " + user.ID.String() + ")")

	return token, nil
}

func (s *service) GetUserByID(id uuid.UUID) (*User, error) {
	return s.repo.FindByID(id)
}

func (s *service) ValidateToken(tokenString string) (*User, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, errors.New("invalid user ID in token")
	}

	user, err := s.repo.FindByID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	return user, nil
}

func (s *service) UpdatePreferences(id uuid.UUID, req *UpdatePreferencesRequest) (*User, error) {
	s.logger.Info("Updating preferences for user " + id.String())

	user, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}

	prefs, err := mergePreferences(catalog.DecodePreferences(user.Preferences), req)
	if err != nil {
		s.logger.Warn("Rejected preferences for user " + id.String() + ": " + err.Error())
		return nil, err
	}

	encoded, err := catalog.EncodePreferences(prefs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode preferences: %w", err)
	}

	if err := s.repo.UpdatePreferences(id, encoded); err != nil {
		s.logger.Error("Failed to update preferences for user " + id.String() + ": " + err.Error())
		return nil, err
	}

	user.Preferences = encoded
	user.UpdatedAt = time.Now()
	return user, nil
}

// mergePreferences applies the supplied fields onto current
func mergePreferences(current catalog.Preferences, req *UpdatePreferencesRequest) (catalog.Preferences, error) {
	if req == nil {
		return current, nil
	}

	if req.Categories != nil {
		categories := make([]string, 0, len(req.Categories))
		seen := make(map[string]bool, len(req.Categories))
		for _, c := range req.Categories {
			c = strings.TrimSpace(c)
			if c == "" || seen[strings.ToLower(c)] {
				continue
			}
			seen[strings.ToLower(c)] = true
			categories = append(categories, c)
		}
		current.Categories = categories
	}

	if r := req.PriceRange; r != nil {
		if r.Min < 0 || r.Max <= 0 || r.Max < r.Min {
			return current, fmt.Errorf("%w: price range must satisfy 0 <= min <= max and max > 0", ErrInvalidPreferences)
		}
		current.PriceRange = *r
	}

	if req.Expertise != nil {
		if v := strings.TrimSpace(*req.Expertise); v != "" {
			current.Expertise = v
		} else {
			current.Expertise = catalog.DefaultExpertise
		}
	}
	if req.UsageType != nil {
		if v := strings.TrimSpace(*req.UsageType); v != "" {
			current.UsageType = v
		} else {
			current.UsageType = catalog.DefaultUsageType
		}
	}

	return current, nil
}

func (s *service) generateToken(user *User) (string, error) {
	claims := Claims{
		UserID: user.ID.String(),
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.jwtExpiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    tokenIssuer,
			Subject:   user.ID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}
