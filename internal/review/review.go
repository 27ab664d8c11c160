package review

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAgentNotFound  = errors.New("agent not found")
	ErrReviewNotFound = errors.New("review not found")
	ErrInvalidRating  = errors.New("rating must be between 1 and 5")
)

// Review is a user's star rating of an agent, one per user and agent
type Review struct {
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;primaryKey;not null;index:idx_user_reviews"`
	AgentID   uuid.UUID `json:"agent_id" gorm:"type:uuid;primaryKey;not null;index:idx_agent_reviews"`
	Rating    int       `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Comment   string    `json:"comment" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Associations (forward declarations)
	User  *User  `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Agent *Agent `json:"agent,omitempty" gorm:"foreignKey:AgentID;constraint:OnDelete:CASCADE"`
}

// User represents user for foreign key relationship (forward declaration)
type User struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email string
}

// Agent represents the reviewed listing (forward declaration)
type Agent struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string
	Status      string
	Rating      float64
	ReviewCount int
}

// TableName returns the table name for GORM
func (Agent) TableName() string {
	return "agents"
}

// Repository defines the interface for review data access
type Repository interface {
	Create(review *Review) error
	FindByUserAndAgent(userID, agentID uuid.UUID) (*Review, error)
	Update(review *Review) error
	Delete(userID, agentID uuid.UUID) error

	FindAgent(agentID uuid.UUID) (*Agent, error)
	GetAverageRating(agentID uuid.UUID) (float64, int, error)
	UpdateAgentRating(agentID uuid.UUID, average float64, count int) error
}

// Invalidator is told when ratings change so cached rankings are rebuilt
type Invalidator interface {
	Invalidate()
}

// Service defines the interface for review business logic
type Service interface {
	ReviewAgent(userID, agentID uuid.UUID, rating int, comment string) (*Review, error)
	GetReview(userID, agentID uuid.UUID) (*Review, error)
	DeleteReview(userID, agentID uuid.UUID) error
}

// ReviewAgentRequest represents review creation/update request
type ReviewAgentRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=2000"`
}

// ReviewResponse represents review in API responses
type ReviewResponse struct {
	UserID    uuid.UUID `json:"user_id"`
	AgentID   uuid.UUID `json:"agent_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToResponse converts Review to ReviewResponse
func (r *Review) ToResponse() *ReviewResponse {
	return &ReviewResponse{
		UserID:    r.UserID,
		AgentID:   r.AgentID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// IsValidRating checks if the rating is within valid range
func (r *Review) IsValidRating() bool {
	return r.Rating >= 1 && r.Rating <= 5
}

// TableName returns the table name for GORM
func (Review) TableName() string {
	return "reviews"
}
