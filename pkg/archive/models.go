// Package archive stores published posts in Postgres for reporting and
// cross-run history. It is an optional collaborator: the pipeline runs
// without it when no database is configured.
package archive

import (
	"time"

	"github.com/lib/pq"
)

// Post is the database model for one published page.
type Post struct {
	ID          uint           `gorm:"primaryKey;autoIncrement"`
	TweetID     string         `gorm:"column:tweet_id;uniqueIndex;not null"`
	Title       string         `gorm:"column:title;not null"`
	Filename    string         `gorm:"column:filename;not null"`
	Fingerprint string         `gorm:"column:fingerprint;not null;index"`
	Keywords    pq.StringArray `gorm:"column:keywords;type:text[]"`
	Language    string         `gorm:"column:language"`
	SourceURL   string         `gorm:"column:source_url"`
	Translated  bool           `gorm:"column:translated;default:true"`
	PublishedAt time.Time      `gorm:"column:published_at;not null;default:CURRENT_TIMESTAMP"`
}

// TableName specifies the table name for the Post model
func (Post) TableName() string {
	return "published_posts"
}
