package user

import (
	"errors"
	"time"

	"github.com/dustin/marketplace-backend/internal/catalog"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidPreferences = errors.New("invalid preferences")
)

// User represents a marketplace account
type User struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email        string         `json:"email" gorm:"uniqueIndex;not null;size:255"`
	PasswordHash string         `json:"-" gorm:"not null;size:255"`
	Preferences  datatypes.JSON `json:"preferences" gorm:"type:jsonb"`
	CreatedAt    time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `json:"updated_at" gorm:"autoUpdateTime"`

	// Associations - will be loaded explicitly when needed
	Orders  []Order  `json:"orders,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Reviews []Review `json:"reviews,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// Order represents the order entity (forward declaration for association)
type Order struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;index"`
	AgentID uuid.UUID `gorm:"type:uuid;not null"`
}

// Review represents the review entity (forward declaration for association)
type Review struct {
	UserID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	AgentID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Rating  int
}

// Repository defines the interface for user data access
type Repository interface {
	Create(user *User) error
	FindByEmail(email string) (*User, error)
	FindByID(id uuid.UUID) (*User, error)
	UpdatePreferences(id uuid.UUID, preferences datatypes.JSON) error
}

// Service defines the interface for user business logic
type Service interface {
	SignUp(email, password string) (*User, error)
	Login(email, password string) (string, error)
	GetUserByID(id uuid.UUID) (*User, error)
	ValidateToken(tokenString string) (*User, error)
	UpdatePreferences(id uuid.UUID, req *UpdatePreferencesRequest) (*User, error)
}

// CreateUserRequest represents user creation request
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest represents login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdatePreferencesRequest changes explicit preferences. Omitted fields keep
// their stored values.
type UpdatePreferencesRequest struct {
	Categories []string            `json:"categories"`
	PriceRange *catalog.PriceRange `json:"priceRange"`
	Expertise  *string             `json:"expertise"`
	UsageType  *string             `json:"usageType"`
}

// UserResponse represents user in API responses (without password)
type UserResponse struct {
	ID          uuid.UUID           `json:"id"`
	Email       string              `json:"email"`
	Preferences catalog.Preferences `json:"preferences"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Preferences: catalog.DecodePreferences(u.Preferences),
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}
