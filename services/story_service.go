package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"spectrumhub/content"
	"spectrumhub/db"
	"spectrumhub/models"
	"spectrumhub/utils"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	ErrStoryNotFound  = errors.New("story not found")
	ErrInvalidStoryID = errors.New("invalid story id")
)

// Pagination defaults for story listings.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MinApprovedStories is the board size below which samples are seeded.
	MinApprovedStories = 3
)

// Submission length rules, counted in characters after trimming.
const (
	minAuthorLength  = 2
	minTitleLength   = 3
	minContentLength = 50
	maxAuthorLength  = 100
	maxTitleLength   = 200
	maxContentLength = 10000
)

// ValidationError lists rejected fields with a message for each.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := lo.Keys(e.Fields)
	sort.Strings(keys)
	parts := lo.Map(keys, func(k string, _ int) string {
		return k + ": " + e.Fields[k]
	})
	return "validation failed: " + strings.Join(parts, "; ")
}

// StoryRepository is the persistence the story service needs.
type StoryRepository interface {
	Insert(ctx context.Context, story *models.Story) error
	FindByApproval(ctx context.Context, approved bool, skip, limit int64, newestFirst bool) ([]models.Story, error)
	CountByApproval(ctx context.Context, approved bool) (int64, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Story, error)
	FindApprovedByID(ctx context.Context, id primitive.ObjectID) (*models.Story, error)
	SetApproval(ctx context.Context, id primitive.ObjectID, approved bool, moderator string, at time.Time) (*models.Story, bool, error)
	ExistingTitles(ctx context.Context, titles []string) ([]string, error)
}

// ModerationLogRepository stores the moderation audit trail.
type ModerationLogRepository interface {
	Insert(ctx context.Context, entry *models.ModerationLog) error
	List(ctx context.Context, skip, limit int64) ([]models.ModerationLog, error)
}

// StoryEventPublisher fans story events out to live subscribers.
type StoryEventPublisher interface {
	Broadcast(event models.StoryEvent)
}

// Actor identifies who performed a moderation action.
type Actor struct {
	Email     string
	IPAddress string
	UserAgent string
}

// StoryService owns submission, the public board and moderation.
type StoryService struct {
	stories  StoryRepository
	logs     ModerationLogRepository
	events   StoryEventPublisher
	notifier ModerationNotifier
	reviewer StoryReviewer
	logger   *zap.Logger
	now      func() time.Time
}

// StoryServiceOption configures optional collaborators.
type StoryServiceOption func(*StoryService)

func WithEventPublisher(p StoryEventPublisher) StoryServiceOption {
	return func(s *StoryService) { s.events = p }
}

func WithNotifier(n ModerationNotifier) StoryServiceOption {
	return func(s *StoryService) { s.notifier = n }
}

func WithReviewer(r StoryReviewer) StoryServiceOption {
	return func(s *StoryService) { s.reviewer = r }
}

func WithClock(now func() time.Time) StoryServiceOption {
	return func(s *StoryService) { s.now = now }
}

func NewStoryService(stories StoryRepository, logs ModerationLogRepository, logger *zap.Logger, opts ...StoryServiceOption) *StoryService {
	s := &StoryService{
		stories: stories,
		logs:    logs,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ReviewerConfigured reports whether review suggestions are available.
func (s *StoryService) ReviewerConfigured() bool {
	return s.reviewer != nil
}

// Submit validates a story and queues it for moderation. Submissions are
// never published directly. submitter is the signed-in email, or empty.
func (s *StoryService) Submit(ctx context.Context, sub models.StorySubmission, submitter string) (*models.Story, error) {
	sub = normalizeSubmission(sub)
	if err := validateSubmission(sub); err != nil {
		return nil, err
	}

	story := &models.Story{
		Title:        sub.Title,
		AuthorName:   sub.AuthorName,
		Relationship: sub.Relationship,
		Content:      sub.Content,
		Approved:     false,
		CreatedAt:    s.now().UTC(),
		SubmittedBy:  submitter,
	}
	if err := s.stories.Insert(ctx, story); err != nil {
		return nil, err
	}

	s.logger.Info("story submitted",
		zap.String("storyId", story.ID.Hex()),
		zap.Bool("signedIn", submitter != ""))

	if s.notifier != nil {
		if err := s.notifier.StorySubmitted(ctx, story); err != nil {
			s.logger.Warn("moderation notification failed", zap.String("storyId", story.ID.Hex()), zap.Error(err))
		}
	}
	return story, nil
}

func normalizeSubmission(sub models.StorySubmission) models.StorySubmission {
	return models.StorySubmission{
		Title:        strings.TrimSpace(sub.Title),
		AuthorName:   strings.TrimSpace(sub.AuthorName),
		Relationship: strings.TrimSpace(sub.Relationship),
		Content:      strings.TrimSpace(sub.Content),
	}
}

func validateSubmission(sub models.StorySubmission) error {
	fields := map[string]string{}
	checkFieldLength(fields, "author_name", sub.AuthorName, minAuthorLength, maxAuthorLength)
	checkFieldLength(fields, "title", sub.Title, minTitleLength, maxTitleLength)
	checkFieldLength(fields, "content", sub.Content, minContentLength, maxContentLength)
	if sub.Relationship == "" {
		fields["relationship"] = "Please select your relationship to autism"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func checkFieldLength(fields map[string]string, name, value string, minLen, maxLen int) {
	n := utf8.RuneCountInString(value)
	switch {
	case n < minLen:
		fields[name] = fmt.Sprintf("must be at least %d characters", minLen)
	case n > maxLen:
		fields[name] = fmt.Sprintf("must be at most %d characters", maxLen)
	}
}

// maxPage bounds page numbers so skips stay positive.
const maxPage = math.MaxInt32

// normalizePage applies listing defaults and bounds.
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

// pageSkip is the number of documents before page.
func pageSkip(page, limit int) int64 {
	return int64(page-1) * int64(limit)
}

// ListApproved returns published stories, newest first, as board cards.
func (s *StoryService) ListApproved(ctx context.Context, page, limit int) (*models.StoryPage, error) {
	page, limit = normalizePage(page, limit)
	skip := pageSkip(page, limit)

	stories, err := s.stories.FindByApproval(ctx, true, skip, int64(limit), true)
	if err != nil {
		return nil, err
	}
	total, err := s.stories.CountByApproval(ctx, true)
	if err != nil {
		return nil, err
	}

	return &models.StoryPage{
		Stories: lo.Map(stories, func(st models.Story, _ int) models.StorySummary { return toSummary(st) }),
		Total:   total,
		Page:    page,
		Limit:   limit,
	}, nil
}

// GetApproved returns one published story. Pending stories are reported as
// not found so they cannot be read before moderation.
func (s *StoryService) GetApproved(ctx context.Context, id string) (*models.StoryDetail, error) {
	oid, err := parseStoryID(id)
	if err != nil {
		return nil, err
	}

	story, err := s.stories.FindApprovedByID(ctx, oid)
	if err != nil {
		return nil, mapNotFound(err)
	}
	detail := toDetail(*story)
	return &detail, nil
}

// ListPending is the moderation queue, oldest first.
func (s *StoryService) ListPending(ctx context.Context, page, limit int) (*models.ModerationPage, error) {
	return s.listForModeration(ctx, false, page, limit)
}

// ListPublished lists approved stories with full bodies for moderators.
func (s *StoryService) ListPublished(ctx context.Context, page, limit int) (*models.ModerationPage, error) {
	return s.listForModeration(ctx, true, page, limit)
}

func (s *StoryService) listForModeration(ctx context.Context, approved bool, page, limit int) (*models.ModerationPage, error) {
	page, limit = normalizePage(page, limit)
	skip := pageSkip(page, limit)

	stories, err := s.stories.FindByApproval(ctx, approved, skip, int64(limit), approved)
	if err != nil {
		return nil, err
	}
	total, err := s.stories.CountByApproval(ctx, approved)
	if err != nil {
		return nil, err
	}
	return &models.ModerationPage{Stories: stories, Total: total, Page: page, Limit: limit}, nil
}

// Approve publishes a story and announces it to live subscribers.
// Approving a published story changes nothing and announces nothing.
func (s *StoryService) Approve(ctx context.Context, id string, actor Actor) (*models.Story, error) {
	story, changed, err := s.setApproval(ctx, id, true, actor)
	if err != nil {
		return nil, err
	}

	if changed && s.events != nil {
		s.events.Broadcast(models.StoryEvent{
			Type:      models.StoryEventPublished,
			StoryID:   story.ID.Hex(),
			Title:     story.Title,
			Timestamp: s.now().UTC(),
		})
	}
	return story, nil
}

// Unpublish hides a story from the board again. Stories are never deleted.
func (s *StoryService) Unpublish(ctx context.Context, id string, actor Actor) (*models.Story, error) {
	story, _, err := s.setApproval(ctx, id, false, actor)
	return story, err
}

// setApproval audits only real transitions.
func (s *StoryService) setApproval(ctx context.Context, id string, approved bool, actor Actor) (*models.Story, bool, error) {
	oid, err := parseStoryID(id)
	if err != nil {
		return nil, false, err
	}

	story, changed, err := s.stories.SetApproval(ctx, oid, approved, actor.Email, s.now().UTC())
	if err != nil {
		return nil, false, mapNotFound(err)
	}
	if !changed {
		return story, false, nil
	}

	action := models.ActionUnpublishStory
	if approved {
		action = models.ActionApproveStory
	}
	s.audit(ctx, action, oid, actor, nil)
	return story, true, nil
}

// Review asks the language model for a moderation suggestion.
func (s *StoryService) Review(ctx context.Context, id string, actor Actor) (*models.StoryReview, error) {
	if s.reviewer == nil {
		return nil, ErrReviewerUnavailable
	}
	oid, err := parseStoryID(id)
	if err != nil {
		return nil, err
	}

	story, err := s.stories.FindByID(ctx, oid)
	if err != nil {
		return nil, mapNotFound(err)
	}

	review, err := s.reviewer.Review(ctx, story)
	if err != nil {
		return nil, err
	}

	s.audit(ctx, models.ActionReviewStory, oid, actor, map[string]interface{}{
		"recommendation": review.Recommendation,
	})
	return review, nil
}

// ModerationLogs lists audit entries, newest first.
func (s *StoryService) ModerationLogs(ctx context.Context, page, limit int) ([]models.ModerationLog, error) {
	page, limit = normalizePage(page, limit)
	return s.logs.List(ctx, pageSkip(page, limit), int64(limit))
}

// audit writes a moderation log entry. Failures are logged, not returned.
func (s *StoryService) audit(ctx context.Context, action string, storyID primitive.ObjectID, actor Actor, details map[string]interface{}) {
	entry := &models.ModerationLog{
		AdminEmail: actor.Email,
		Action:     action,
		StoryID:    storyID,
		IPAddress:  actor.IPAddress,
		UserAgent:  actor.UserAgent,
		Timestamp:  s.now().UTC(),
		Details:    details,
	}
	if err := s.logs.Insert(ctx, entry); err != nil {
		s.logger.Error("failed to write moderation log",
			zap.String("action", action),
			zap.String("storyId", storyID.Hex()),
			zap.Error(err))
		return
	}
	s.logger.Info("story moderated",
		zap.String("action", action),
		zap.String("storyId", storyID.Hex()),
		zap.String("moderator", actor.Email))
}

// SeedSamples fills a near-empty board with the bundled sample stories.
// Samples already stored (matched by title) are skipped. It returns the
// number of stories inserted.
func (s *StoryService) SeedSamples(ctx context.Context) (int, error) {
	approved, err := s.stories.CountByApproval(ctx, true)
	if err != nil {
		return 0, err
	}
	if approved >= MinApprovedStories {
		return 0, nil
	}

	samples, err := content.SampleStories()
	if err != nil {
		return 0, err
	}

	titles := lo.Map(samples, func(st models.Story, _ int) string { return st.Title })
	existing, err := s.stories.ExistingTitles(ctx, titles)
	if err != nil {
		return 0, err
	}
	missing := lo.Reject(samples, func(st models.Story, _ int) bool {
		return lo.Contains(existing, st.Title)
	})

	// Space samples a day apart so the board order matches the file order.
	base := s.now().UTC()
	inserted := 0
	for i := range missing {
		story := missing[i]
		story.CreatedAt = base.Add(-time.Duration(i) * 24 * time.Hour)
		if err := s.stories.Insert(ctx, &story); err != nil {
			return inserted, fmt.Errorf("failed to seed %q: %w", story.Title, err)
		}
		inserted++
	}

	if inserted > 0 {
		s.logger.Info("seeded sample stories", zap.Int("count", inserted))
	}
	return inserted, nil
}

func parseStoryID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidStoryID
	}
	return oid, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return ErrStoryNotFound
	}
	return err
}

func toSummary(st models.Story) models.StorySummary {
	return models.StorySummary{
		ID:           st.ID.Hex(),
		Title:        st.Title,
		AuthorName:   st.AuthorName,
		Relationship: st.Relationship,
		Excerpt:      utils.Excerpt(st.Content, utils.ExcerptLength),
		CreatedAt:    st.CreatedAt,
	}
}

func toDetail(st models.Story) models.StoryDetail {
	return models.StoryDetail{
		ID:            st.ID.Hex(),
		Title:         st.Title,
		AuthorName:    st.AuthorName,
		Relationship:  st.Relationship,
		Content:       st.Content,
		Paragraphs:    utils.Paragraphs(st.Content),
		CreatedAt:     st.CreatedAt,
		FormattedDate: utils.FormatStoryDate(st.CreatedAt),
	}
}
