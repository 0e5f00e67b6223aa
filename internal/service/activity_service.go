package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"regexp"
	"strings"
	"time"

	"geo2max-server/internal/domain"
	"geo2max-server/internal/observability"
	"geo2max-server/internal/repository"
	"geo2max-server/internal/websocket"
)

// ActivityService serves paginated, searched and sorted views over a
// user's stored activities, and owns the full-collection drop.
type ActivityService struct {
	repo      repository.ActivityRepository
	wsManager *websocket.Manager
}

func NewActivityService(repo repository.ActivityRepository, wsManager *websocket.Manager) *ActivityService {
	return &ActivityService{
		repo:      repo,
		wsManager: wsManager,
	}
}

// Query resolves one page. The total is computed over the full filtered
// set before pagination, so out-of-range pages come back empty with a
// correct total. A malformed structured filter degrades to an empty
// result plus a diagnostic instead of failing the request.
func (s *ActivityService) Query(ctx context.Context, userKey string, req *domain.QueryRequest) (*domain.QueryResult, error) {
	start := time.Now()
	defer func() {
		observability.ObserveQueryDuration(time.Since(start))
	}()

	selector, err := parseSearch(req.Search)
	if err != nil {
		var filterErr *InvalidFilterError
		if errors.As(err, &filterErr) {
			log.Printf("query %s: unparseable filter %q: %s", userKey, req.Search, filterErr.Message)
			return &domain.QueryResult{
				Total:      0,
				Activities: []*domain.Activity{},
				Error:      filterErr.Message,
			}, nil
		}
		return nil, err
	}

	total, err := s.repo.CountMatching(ctx, userKey, selector)
	if err != nil {
		return nil, &StoreError{Op: "count activities", Err: err}
	}

	skip := (req.Page - 1) * req.PerPage
	activities, err := s.repo.FindPage(ctx, userKey, selector, req.SortBy, req.SortDesc, skip, req.PerPage)
	if err != nil {
		return nil, &StoreError{Op: "find activities", Err: err}
	}
	if activities == nil {
		activities = []*domain.Activity{}
	}

	return &domain.QueryResult{
		Total:      total,
		Activities: activities,
	}, nil
}

// Drop clears the user's collection. Dropping a collection that does
// not exist succeeds.
func (s *ActivityService) Drop(ctx context.Context, userKey string) error {
	if err := s.repo.DropCollection(ctx, userKey); err != nil {
		return &StoreError{Op: "drop collection", Err: err}
	}

	log.Printf("dropped activity collection for %s", userKey)

	if s.wsManager != nil {
		msg, err := websocket.NewMessage(websocket.TypeCollectionDropped, &websocket.CollectionDroppedPayload{
			DroppedAt: time.Now(),
		})
		if err == nil {
			s.wsManager.BroadcastToUser(userKey, msg)
		}
	}

	return nil
}

// parseSearch turns the raw search input into a selector the store
// understands. A JSON object passes through as a structured filter with
// the store's native semantics; anything else matches the literal text
// against the activity name, case-insensitively, with every filter
// metacharacter escaped.
func parseSearch(search string) (map[string]interface{}, error) {
	search = strings.TrimSpace(search)
	if search == "" {
		return map[string]interface{}{}, nil
	}

	if strings.HasPrefix(search, "{") && strings.HasSuffix(search, "}") {
		var selector map[string]interface{}
		if err := json.Unmarshal([]byte(search), &selector); err != nil {
			return nil, &InvalidFilterError{Message: err.Error()}
		}
		return selector, nil
	}

	return map[string]interface{}{
		"name": map[string]interface{}{
			"$regex": "(?i)" + regexp.QuoteMeta(search),
		},
	}, nil
}
