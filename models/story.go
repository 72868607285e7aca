package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Relationship labels offered by the submission form.
const (
	RelationshipSelf         = "Person with autism"
	RelationshipParent       = "Parent"
	RelationshipSibling      = "Sibling"
	RelationshipOtherFamily  = "Other family"
	RelationshipCaregiver    = "Caregiver"
	RelationshipProfessional = "Professional"
	RelationshipOther        = "Other"
)

// RelationshipOption pairs a stored relationship value with the label shown on the form.
type RelationshipOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// RelationshipOptions lists the choices in display order.
var RelationshipOptions = []RelationshipOption{
	{Value: RelationshipSelf, Label: "I have autism"},
	{Value: RelationshipParent, Label: "I'm a parent of someone with autism"},
	{Value: RelationshipSibling, Label: "I'm a sibling of someone with autism"},
	{Value: RelationshipOtherFamily, Label: "I'm a family member"},
	{Value: RelationshipCaregiver, Label: "I'm a caregiver"},
	{Value: RelationshipProfessional, Label: "I'm a professional who works with autism"},
	{Value: RelationshipOther, Label: "Other"},
}

// Story is a user-submitted narrative. Field names follow the stories table schema.
type Story struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title        string             `bson:"title" json:"title"`
	AuthorName   string             `bson:"author_name" json:"author_name"`
	Relationship string             `bson:"relationship" json:"relationship"`
	Content      string             `bson:"content" json:"content"`
	Approved     bool               `bson:"approved" json:"approved"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	SubmittedBy  string             `bson:"submitted_by,omitempty" json:"-"`
	ModeratedAt  *time.Time         `bson:"moderated_at,omitempty" json:"moderated_at,omitempty"`
	ModeratedBy  string             `bson:"moderated_by,omitempty" json:"moderated_by,omitempty"`
}

// MarshalJSON renders the ObjectID as a plain hex string.
func (s Story) MarshalJSON() ([]byte, error) {
	type Alias Story
	return json.Marshal(&struct {
		ID string `json:"id"`
		Alias
	}{
		ID:    s.ID.Hex(),
		Alias: (Alias)(s),
	})
}

// StorySummary is the card shown on the story board.
type StorySummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	AuthorName   string    `json:"author_name"`
	Relationship string    `json:"relationship"`
	Excerpt      string    `json:"excerpt"`
	CreatedAt    time.Time `json:"created_at"`
}

// StoryDetail is a single published story prepared for reading.
type StoryDetail struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	AuthorName    string    `json:"author_name"`
	Relationship  string    `json:"relationship"`
	Content       string    `json:"content"`
	Paragraphs    []string  `json:"paragraphs"`
	CreatedAt     time.Time `json:"created_at"`
	FormattedDate string    `json:"formatted_date"`
}

// StoryPage is one page of a story listing.
type StoryPage struct {
	Stories []StorySummary `json:"stories"`
	Total   int64          `json:"total"`
	Page    int            `json:"page"`
	Limit   int            `json:"limit"`
}

// StorySubmission holds the validated fields of a new story.
type StorySubmission struct {
	Title        string
	AuthorName   string
	Relationship string
	Content      string
}

// StoryReview is a moderation suggestion produced by the language model.
type StoryReview struct {
	StoryID        string   `json:"storyId"`
	Recommendation string   `json:"recommendation"` // "approve", "reject", "needs_edit"
	Reasons        []string `json:"reasons"`
	Summary        string   `json:"summary"`
}

// ModerationPage is one page of the moderation queue with full story bodies.
type ModerationPage struct {
	Stories []Story `json:"stories"`
	Total   int64   `json:"total"`
	Page    int     `json:"page"`
	Limit   int     `json:"limit"`
}
