package twitter

import (
	"fmt"
	"net/http"
	"time"

	"github.com/mrjones/oauth"
)

const (
	RequestTokenURL   = "https://api.twitter.com/oauth/request_token"
	AuthorizeTokenURL = "https://api.twitter.com/oauth/authorize"
	AccessTokenURL    = "https://api.twitter.com/oauth/access_token"
)

type Authenticator struct {
	client      *http.Client
	bearerToken string
}

func NewAuthenticator(config *TwitterConfig) (*Authenticator, error) {
	// OAuth 1.0a user context when full credentials are present
	if config.ConsumerKey != "" && config.AccessToken != "" {
		return newUserAuthenticator(
			config.ConsumerKey,
			config.ConsumerSecret,
			config.AccessToken,
			config.AccessTokenSecret,
		)
	}

	// App-only bearer token is enough for timeline reads
	if config.BearerToken != "" {
		return newAppAuthenticator(config.BearerToken)
	}

	return nil, fmt.Errorf("either OAuth 1.0a credentials or Bearer token must be provided")
}

func newAppAuthenticator(bearerToken string) (*Authenticator, error) {
	return &Authenticator{
		client:      &http.Client{Timeout: 30 * time.Second},
		bearerToken: bearerToken,
	}, nil
}

func newUserAuthenticator(consumerKey, consumerSecret, accessToken, accessTokenSecret string) (*Authenticator, error) {
	consumer := oauth.NewConsumer(consumerKey, consumerSecret, oauth.ServiceProvider{
		RequestTokenUrl:   RequestTokenURL,
		AuthorizeTokenUrl: AuthorizeTokenURL,
		AccessTokenUrl:    AccessTokenURL,
	})
	consumer.HttpClient = &http.Client{Timeout: 30 * time.Second}

	token := oauth.AccessToken{
		Token:  accessToken,
		Secret: accessTokenSecret,
	}

	client, err := consumer.MakeHttpClient(&token)
	if err != nil {
		return nil, fmt.Errorf("failed to create OAuth client: %w", err)
	}

	return &Authenticator{client: client}, nil
}

func (a *Authenticator) GetClient() *http.Client {
	return a.client
}

// SetAuthHeader adds the bearer token for app-only auth. The OAuth 1.0a
// client signs requests itself.
func (a *Authenticator) SetAuthHeader(req *http.Request) {
	if a.bearerToken != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", a.bearerToken))
	}
}
