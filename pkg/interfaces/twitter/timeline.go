package twitter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
)

// GetUserByUsername resolves a username to its user ID.
// Rate limit: 900/15m (app)
func (c *TwitterClient) GetUserByUsername(ctx context.Context, username string) (string, error) {
	endpoint := fmt.Sprintf("%s/by/username/%s", c.config.UserEndpoint, username)

	resp, err := c.makeRequest(ctx, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to look up user %q: %w", username, err)
	}
	defer resp.Body.Close()

	var userResp UserResponse
	if err := json.NewDecoder(resp.Body).Decode(&userResp); err != nil {
		return "", fmt.Errorf("failed to decode user response: %w", err)
	}
	if userResp.Data.ID == "" {
		return "", fmt.Errorf("user %q not found", username)
	}

	return userResp.Data.ID, nil
}

// GetUserTweetsParams holds the parameters for a timeline fetch.
type GetUserTweetsParams struct {
	UserID     string
	MaxResults int
	SinceID    string
}

// GetUserTweets retrieves recent original tweets from a user timeline,
// following pagination until MaxResults tweets are collected or the timeline
// is exhausted.
// Rate limit: 1500/15m (app), 900/15m (user)
func (c *TwitterClient) GetUserTweets(ctx context.Context, params GetUserTweetsParams) ([]Tweet, error) {
	log := c.logger.WithFields(logrus.Fields{
		"method": "GetUserTweets",
		"userID": params.UserID,
	})

	endpoint := fmt.Sprintf("%s/%s/tweets", c.config.UserEndpoint, params.UserID)

	var tweets []Tweet
	paginationToken := ""
	for {
		query := map[string]string{
			"max_results":      fmt.Sprintf("%d", params.MaxResults),
			"tweet.fields":     "id,text,created_at,conversation_id,author_id,lang",
			"exclude":          "retweets,replies",
			"since_id":         params.SinceID,
			"pagination_token": paginationToken,
		}

		resp, err := c.makeRequest(ctx, endpoint, query)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch user tweets: %w", err)
		}

		var page TweetResponse
		decodeErr := json.NewDecoder(resp.Body).Decode(&page)
		resp.Body.Close()
		if decodeErr != nil {
			return nil, fmt.Errorf("failed to decode timeline response: %w", decodeErr)
		}

		tweets = append(tweets, page.Data...)

		log.WithFields(logrus.Fields{
			"page_count": page.Meta.ResultCount,
			"total":      len(tweets),
		}).Debug("Fetched timeline page")

		if page.Meta.NextToken == "" || len(tweets) >= params.MaxResults {
			break
		}
		paginationToken = page.Meta.NextToken
	}

	if len(tweets) > params.MaxResults {
		tweets = tweets[:params.MaxResults]
	}

	return tweets, nil
}
