package service

import (
	"context"
	"errors"

	"geo2max-server/internal/domain"
	"geo2max-server/internal/remote"
)

// StreamService proxies per-activity route streams from the remote API.
// Streams are never stored; the browse client fetches them on demand
// when it draws a route.
type StreamService struct {
	source remote.Source
}

func NewStreamService(source remote.Source) *StreamService {
	return &StreamService{source: source}
}

func (s *StreamService) FetchLatLngStream(ctx context.Context, credential string, activityID int64) (domain.LatLngStream, error) {
	stream, err := s.source.FetchLatLngStream(ctx, credential, activityID)
	if err != nil {
		var notFound *remote.NotFoundError
		if errors.As(err, &notFound) {
			return nil, err
		}
		return nil, mapRemoteError(err)
	}
	return stream, nil
}
