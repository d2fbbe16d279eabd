package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

// SearchParams holds the parameters for a recent-search request, backing the
// discovery loop's keyword queries.
type SearchParams struct {
	Query           string
	PaginationToken string
	MaxResults      int
}

// Search runs a recent-tweets search and streams paginated results, following
// the same channel-pagination shape as GetTweets/GetUserMentions.
// Rate limit: 300/15m (app auth) — see rate-limit engine's built-in "search" key.
func (c *TwitterClient) Search(ctx context.Context, params SearchParams) (chan *TweetResponse, chan error) {
	dataChan := make(chan *TweetResponse)
	errChan := make(chan error)

	go func() {
		defer close(dataChan)
		defer close(errChan)

		log := c.logger.WithFields(logrus.Fields{
			"method": "Search",
			"query":  params.Query,
		})

		endpoint := c.config.SearchEndpoint

		for {
			select {
			case <-ctx.Done():
				errChan <- ctx.Err()
				return
			default:
				maxResults := params.MaxResults
				if maxResults == 0 {
					maxResults = 25
				}
				body := map[string]interface{}{
					"query":            params.Query,
					"pagination_token": params.PaginationToken,
					"max_results":      maxResults,
					"tweet.fields": strings.Join(append(
						c.config.GetTweetFields(),
						"conversation_id",
						"public_metrics",
					), ","),
					"expansions": c.config.GetExpansions(),
				}

				log.WithFields(logrus.Fields{
					"endpoint": endpoint,
					"params":   body,
				}).Debug("running search request")

				resp, err := c.makeRequest(ctx, http.MethodGet, endpoint, body)
				if err != nil {
					log.WithError(err).Error("search request failed")
					errChan <- fmt.Errorf("failed to run search: %w", err)
					return
				}
				defer resp.Body.Close()

				var searchResp TweetResponse
				if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
					log.WithError(err).Error("failed to decode search response")
					errChan <- fmt.Errorf("failed to decode response: %w", err)
					return
				}

				dataChan <- &searchResp

				if searchResp.Meta.NextToken == "" {
					return
				}
				params.PaginationToken = searchResp.Meta.NextToken
			}
		}
	}()

	return dataChan, errChan
}
