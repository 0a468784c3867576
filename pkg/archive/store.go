package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store persists published posts.
type Store struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewStore creates an archive store.
func NewStore(db *gorm.DB, logger *logrus.Logger) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle is required")
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Store{db: db, logger: logger}, nil
}

// SavePublished records a published post, updating the row on tweet_id
// conflict so re-publishes are idempotent.
func (s *Store) SavePublished(ctx context.Context, post *Post) error {
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tweet_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "filename", "fingerprint", "keywords",
			"language", "source_url", "translated", "published_at",
		}),
	}).Create(post)

	if result.Error != nil {
		return fmt.Errorf("failed to save published post: %w", result.Error)
	}

	s.logger.WithFields(logrus.Fields{
		"tweet_id": post.TweetID,
		"filename": post.Filename,
	}).Debug("Archived published post")

	return nil
}

// PublishedSince returns posts published after the given time, newest first.
func (s *Store) PublishedSince(ctx context.Context, since time.Time) ([]Post, error) {
	var posts []Post
	err := s.db.WithContext(ctx).
		Where("published_at > ?", since).
		Order("published_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query published posts: %w", err)
	}
	return posts, nil
}

// Count returns the total number of archived posts.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&Post{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count archived posts: %w", err)
	}
	return count, nil
}
