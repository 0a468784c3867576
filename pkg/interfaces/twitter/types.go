package twitter

import "fmt"

// Tweet is the subset of the v2 tweet object the pipeline consumes.
type Tweet struct {
	ID             string `json:"id"`
	Text           string `json:"text"`
	AuthorID       string `json:"author_id,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
	Lang           string `json:"lang,omitempty"`
}

// URL returns the canonical web URL of the tweet.
func (t Tweet) URL(username string) string {
	return fmt.Sprintf("https://twitter.com/%s/status/%s", username, t.ID)
}

// TweetResponse is a page of timeline results.
type TweetResponse struct {
	Data []Tweet `json:"data"`
	Meta struct {
		ResultCount int    `json:"result_count"`
		NextToken   string `json:"next_token,omitempty"`
	} `json:"meta"`
	Errors []struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"errors,omitempty"`
}

// UserResponse is the user lookup result.
type UserResponse struct {
	Data struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Username string `json:"username"`
	} `json:"data"`
}
