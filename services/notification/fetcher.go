package notification

import (
	"context"
	"fmt"
	"net/http"

	"taskmate/models"
	"taskmate/services/session"
)

// NewAPIFetcher builds a FetchFunc that resyncs against the marketplace API.
func NewAPIFetcher(api *session.Client) FetchFunc {
	return func(ctx context.Context) ([]models.Notification, error) {
		resp, err := api.Do(ctx, session.Operation{
			Method: http.MethodGet,
			Path:   "/api/notifications",
		})
		if err != nil {
			return nil, err
		}
		if !resp.OK() {
			return nil, fmt.Errorf("notification fetch rejected with status %d", resp.Status)
		}
		var records []models.Notification
		if err := resp.Decode(&records); err != nil {
			return nil, err
		}
		return records, nil
	}
}
