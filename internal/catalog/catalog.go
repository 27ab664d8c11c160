// Package catalog defines the read-side records the ranking engine consumes
// and the Gateway contract that supplies them.
package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Agent listing status constants
const (
	AgentStatusPending   = "pending"
	AgentStatusApproved  = "approved"
	AgentStatusRejected  = "rejected"
	AgentStatusSuspended = "suspended"
)

// Order status constants
const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusRefunded  = "refunded"
	OrderStatusCancelled = "cancelled"
)

// ErrNotFound is returned by gateways when a single record lookup misses
var ErrNotFound = errors.New("record not found")

// Agent is a marketplace listing
type Agent struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SellerID    uuid.UUID      `json:"seller_id" gorm:"type:uuid;not null;index:idx_seller_agents"`
	Name        string         `json:"name" gorm:"not null;size:255"`
	Description string         `json:"description" gorm:"type:text"`
	Category    string         `json:"category" gorm:"size:100;index"`
	Price       float64        `json:"price" gorm:"not null;default:0;check:price >= 0"`
	Rating      float64        `json:"rating" gorm:"default:0"`
	ReviewCount int            `json:"review_count" gorm:"default:0"`
	TotalSales  int            `json:"total_sales" gorm:"default:0;index"`
	Tags        datatypes.JSON `json:"tags" gorm:"type:jsonb"`
	Features    datatypes.JSON `json:"features" gorm:"type:jsonb"`
	Status      string         `json:"status" gorm:"size:20;default:'pending';index"`
	Verified    bool           `json:"verified" gorm:"default:false"`
	Featured    bool           `json:"featured" gorm:"default:false"`
	CreatedAt   time.Time      `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt   time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName returns the table name for GORM
func (Agent) TableName() string {
	return "agents"
}

// TagList decodes the stored tags, tolerating malformed JSON
func (a *Agent) TagList() []string {
	return DecodeStrings(a.Tags)
}

// FeatureList decodes the stored feature bullets, tolerating malformed JSON
func (a *Agent) FeatureList() []string {
	return DecodeStrings(a.Features)
}

// IsApproved reports whether the listing is visible to buyers
func (a *Agent) IsApproved() bool {
	return a.Status == AgentStatusApproved
}

// Order is a purchase of one agent by one user
type Order struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index:idx_user_orders"`
	AgentID   uuid.UUID `json:"agent_id" gorm:"type:uuid;not null;index:idx_agent_orders"`
	Amount    float64   `json:"amount" gorm:"not null;default:0"`
	Status    string    `json:"status" gorm:"size:20;default:'pending';index"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// IsCompleted reports whether the order counts as a purchase
func (o *Order) IsCompleted() bool {
	return o.Status == OrderStatusCompleted
}

// Review is the read-side view of a user's star rating (forward declaration)
type Review struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	AgentID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Rating    int
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (Review) TableName() string {
	return "reviews"
}

// SearchHistory records a query typed by a signed-in user
type SearchHistory struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index:idx_user_searches"`
	Query     string    `json:"query" gorm:"not null;size:500"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}

// TableName returns the table name for GORM
func (SearchHistory) TableName() string {
	return "search_histories"
}

// User is the read-side view of an account (forward declaration)
type User struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Preferences datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt   time.Time
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// UserHistory bundles one user's transactional history
type UserHistory struct {
	Orders   []*Order
	Reviews  []*Review
	Searches []string
}

// Gateway supplies already-authorized catalog and history records
type Gateway interface {
	ListApprovedAgents(ctx context.Context, filters Filters) ([]*Agent, error)
	CountAgentsMatching(ctx context.Context, filters Filters) (int64, error)
	GetUserHistory(ctx context.Context, userID uuid.UUID) (*UserHistory, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	ListCompletedOrders(ctx context.Context) ([]*Order, error)
	ListReviews(ctx context.Context) ([]*Review, error)
	RecordSearch(ctx context.Context, userID uuid.UUID, query string) error
}
