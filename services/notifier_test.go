package services

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"spectrumhub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSMTPNotifier(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	n := NewSMTPNotifier(SMTPSettings{
		Host:        "smtp.example.com",
		Port:        587,
		SenderEmail: "noreply@example.com",
		SenderName:  "Spectrum Hub",
		Inbox:       "mods@example.com",
	})
	n.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	story := &models.Story{ID: primitive.NewObjectID(), Title: "Line\r\nBcc: evil@example.com", AuthorName: "Sam", Relationship: "Parent", Content: "Body"}
	require.NoError(t, n.StorySubmitted(context.Background(), story))

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "noreply@example.com", gotFrom)
	assert.Equal(t, []string{"mods@example.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "Subject: New story awaiting moderation: Line  Bcc: evil@example.com\r\n")
	assert.NotContains(t, string(gotMsg), "\r\nBcc:")
	assert.Contains(t, string(gotMsg), story.ID.Hex())
}

func TestSMTPNotifierError(t *testing.T) {
	n := NewSMTPNotifier(SMTPSettings{Host: "smtp.example.com", Port: 25})
	n.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("refused") }

	err := n.StorySubmitted(context.Background(), &models.Story{})
	assert.ErrorContains(t, err, "failed to send moderation email")
}
