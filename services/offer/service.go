package offer

import (
	"context"
	"fmt"
	"net/http"

	"taskmate/models"
	"taskmate/services/session"
)

// OfferService defines the client-side offer operations.
type OfferService interface {
	SubmitOffer(ctx context.Context, o models.Offer) (*models.Offer, error)
	AcceptOffer(ctx context.Context, taskID, offerID string) error
	ListOffers(ctx context.Context, taskID string) ([]models.Offer, error)
}

// DefaultOfferService is the production implementation.
type DefaultOfferService struct {
	API *session.Client
}

func (s *DefaultOfferService) SubmitOffer(ctx context.Context, o models.Offer) (*models.Offer, error) {
	if o.TaskID == "" {
		return nil, fmt.Errorf("offer must reference a task")
	}
	if o.Amount <= 0 {
		return nil, fmt.Errorf("offer amount must be positive")
	}
	resp, err := s.API.Do(ctx, session.Operation{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/api/tasks/%s/offers", o.TaskID),
		Body:   o,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit offer: %w", err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("offer rejected with status %d", resp.Status)
	}
	var created models.Offer
	if err := resp.Decode(&created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *DefaultOfferService) AcceptOffer(ctx context.Context, taskID, offerID string) error {
	resp, err := s.API.Do(ctx, session.Operation{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/api/tasks/%s/offers/%s/accept", taskID, offerID),
	})
	if err != nil {
		return fmt.Errorf("failed to accept offer: %w", err)
	}
	if !resp.OK() {
		return fmt.Errorf("offer acceptance rejected with status %d", resp.Status)
	}
	return nil
}

func (s *DefaultOfferService) ListOffers(ctx context.Context, taskID string) ([]models.Offer, error) {
	resp, err := s.API.Do(ctx, session.Operation{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/api/tasks/%s/offers", taskID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("offer list rejected with status %d", resp.Status)
	}
	var offers []models.Offer
	if err := resp.Decode(&offers); err != nil {
		return nil, err
	}
	return offers, nil
}
