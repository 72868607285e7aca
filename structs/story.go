package structs

import "spectrumhub/models"

type SubmitStoryRequest struct {
	AuthorName   string `json:"author_name" binding:"required"`
	Title        string `json:"title" binding:"required"`
	Content      string `json:"content" binding:"required"`
	Relationship string `json:"relationship" binding:"required"`
}

// ToSubmission hands the raw fields to the story service, which owns the length rules.
func (r SubmitStoryRequest) ToSubmission() models.StorySubmission {
	return models.StorySubmission{
		Title:        r.Title,
		AuthorName:   r.AuthorName,
		Relationship: r.Relationship,
		Content:      r.Content,
	}
}
