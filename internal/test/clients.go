package test

import (
	"context"
	"sync"

	"github.com/polkiloo/codguard/internal/domain/model"
)

// CodGuardClientStub records CodGuard API calls and lets tests override responses.
type CodGuardClientStub struct {
	FetchRatingFn  func(ctx context.Context, shopID, email, publicKey string) (float64, error)
	SendFeedbackFn func(ctx context.Context, publicKey string, feedback model.Feedback) error
	ImportOrdersFn func(ctx context.Context, keys model.APIKeys, orders []model.OrderRecord) (*model.ImportResult, error)

	mu          sync.Mutex
	ratingCalls int
	feedback    []model.Feedback
	imports     [][]model.OrderRecord
}

// FetchRating returns override result or a perfect rating.
func (s *CodGuardClientStub) FetchRating(ctx context.Context, shopID, email, publicKey string) (float64, error) {
	s.mu.Lock()
	s.ratingCalls++
	s.mu.Unlock()
	if s.FetchRatingFn != nil {
		return s.FetchRatingFn(ctx, shopID, email, publicKey)
	}
	return 1, nil
}

// SendFeedback records payload.
func (s *CodGuardClientStub) SendFeedback(ctx context.Context, publicKey string, feedback model.Feedback) error {
	s.mu.Lock()
	s.feedback = append(s.feedback, feedback)
	s.mu.Unlock()
	if s.SendFeedbackFn != nil {
		return s.SendFeedbackFn(ctx, publicKey, feedback)
	}
	return nil
}

// ImportOrders records batch and reports success by default.
func (s *CodGuardClientStub) ImportOrders(ctx context.Context, keys model.APIKeys, orders []model.OrderRecord) (*model.ImportResult, error) {
	s.mu.Lock()
	s.imports = append(s.imports, append([]model.OrderRecord(nil), orders...))
	s.mu.Unlock()
	if s.ImportOrdersFn != nil {
		return s.ImportOrdersFn(ctx, keys, orders)
	}
	return &model.ImportResult{StatusCode: 200, Body: []byte(`{}`)}, nil
}

// RatingCalls returns number of rating lookups.
func (s *CodGuardClientStub) RatingCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ratingCalls
}

// Feedback returns recorded feedback payloads.
func (s *CodGuardClientStub) Feedback() []model.Feedback {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Feedback(nil), s.feedback...)
}

// Imports returns recorded import batches.
func (s *CodGuardClientStub) Imports() [][]model.OrderRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]model.OrderRecord(nil), s.imports...)
}
