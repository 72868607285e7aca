package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Moderation roles.
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
)

// Admin represents an admin or moderator user
type Admin struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"` // Never return password in JSON
	Role      string             `bson:"role" json:"role"`  // "admin" or "moderator"
	Name      string             `bson:"name" json:"name"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ModerationLog records one moderation action for auditing
type ModerationLog struct {
	ID         primitive.ObjectID     `bson:"_id,omitempty" json:"id,omitempty"`
	AdminEmail string                 `bson:"adminEmail" json:"adminEmail"`
	Action     string                 `bson:"action" json:"action"`
	StoryID    primitive.ObjectID     `bson:"storyId" json:"storyId"`
	IPAddress  string                 `bson:"ipAddress,omitempty" json:"ipAddress,omitempty"`
	UserAgent  string                 `bson:"userAgent,omitempty" json:"userAgent,omitempty"`
	Timestamp  time.Time              `bson:"timestamp" json:"timestamp"`
	Details    map[string]interface{} `bson:"details,omitempty" json:"details,omitempty"`
}

// Identity is a signed-in site user as reported by the hosted auth service.
type Identity struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Nickname string `json:"nickname,omitempty"`
}

// AuthSession is the token set returned by sign-in and refresh.
type AuthSession struct {
	AccessToken  string `json:"accessToken"`
	IDToken      string `json:"idToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ExpiresIn    int32  `json:"expiresIn"`
	TokenType    string `json:"tokenType,omitempty"`
}

// StoryEvent is pushed to websocket subscribers of the story board.
type StoryEvent struct {
	Type      string    `json:"type"`
	StoryID   string    `json:"storyId"`
	Title     string    `json:"title"`
	Timestamp time.Time `json:"timestamp"`
}

// StoryEventPublished announces a newly approved story.
const StoryEventPublished = "story_published"

// Moderation log actions.
const (
	ActionApproveStory   = "approve_story"
	ActionUnpublishStory = "unpublish_story"
	ActionReviewStory    = "review_story"
)
