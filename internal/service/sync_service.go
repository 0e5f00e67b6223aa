package service

import (
	"context"
	"log"
	"time"

	"geo2max-server/internal/domain"
	"geo2max-server/internal/observability"
	"geo2max-server/internal/remote"
	"geo2max-server/internal/repository"
	"geo2max-server/internal/websocket"
)

// DefaultPageSize is the fixed page size requested from the remote API.
const DefaultPageSize = 200

// SyncService pulls the delta between the remote activity history and
// the user's stored collection. The remote delivers newest-first, so the
// fetch walks forward page by page and stops at the first record that is
// not strictly newer than the most recent stored one.
type SyncService struct {
	repo      repository.ActivityRepository
	source    remote.Source
	wsManager *websocket.Manager
	pageSize  int
	gate      *userGate
}

func NewSyncService(repo repository.ActivityRepository, source remote.Source, wsManager *websocket.Manager, pageSize int) *SyncService {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &SyncService{
		repo:      repo,
		source:    source,
		wsManager: wsManager,
		pageSize:  pageSize,
		gate:      newUserGate(),
	}
}

// Sync fetches every remote activity newer than the stored boundary and
// commits them in one batch insert. Any remote failure aborts the whole
// sync with nothing written.
func (s *SyncService) Sync(ctx context.Context, userKey, credential string) (*domain.SyncResult, error) {
	unlock := s.gate.lock(userKey)
	defer unlock()

	boundary, err := s.repo.FindMostRecent(ctx, userKey)
	if err != nil {
		return nil, &StoreError{Op: "find most recent activity", Err: err}
	}
	if boundary != nil {
		log.Printf("sync %s: most recent stored activity %d (%s)",
			userKey, boundary.ID, boundary.StartDate.Format(time.RFC3339))
	}

	s.broadcast(userKey, websocket.TypeSyncStarted, &websocket.SyncStartedPayload{StartedAt: time.Now()})

	var pending []*domain.Activity
	done := false
	for page := 1; !done; page++ {
		log.Printf("sync %s: fetching page %d", userKey, page)
		activities, err := s.source.ListActivities(ctx, credential, page, s.pageSize)
		if err != nil {
			observability.RecordSyncError()
			return nil, mapRemoteError(err)
		}
		observability.RecordPageFetched()

		if len(activities) == 0 {
			break
		}

		for i := range activities {
			if boundary != nil && !activities[i].StartDate.After(boundary.StartDate) {
				// Newest-first ordering: everything from here on is
				// already stored.
				done = true
				break
			}
			activity := activities[i]
			pending = append(pending, &activity)
		}

		s.broadcast(userKey, websocket.TypeSyncPage, &websocket.SyncPagePayload{
			Page:    page,
			Fetched: len(activities),
		})
	}

	preCount, err := s.repo.CountMatching(ctx, userKey, nil)
	if err != nil {
		observability.RecordSyncError()
		return nil, &StoreError{Op: "count activities", Err: err}
	}

	if len(pending) > 0 {
		if _, err := s.repo.InsertMany(ctx, userKey, pending); err != nil {
			observability.RecordSyncError()
			return nil, &StoreError{Op: "insert activities", Err: err}
		}
	}

	result := &domain.SyncResult{
		Total:       preCount + len(pending),
		NumInserted: len(pending),
	}

	observability.RecordActivitiesInserted(result.NumInserted)
	observability.RecordSyncCompleted(time.Now())
	log.Printf("sync %s: inserted %d new activities (total %d)", userKey, result.NumInserted, result.Total)

	s.broadcast(userKey, websocket.TypeSyncCompleted, &websocket.SyncCompletedPayload{
		Total:       result.Total,
		NumInserted: result.NumInserted,
	})

	return result, nil
}

func (s *SyncService) broadcast(userKey string, msgType websocket.MessageType, payload interface{}) {
	if s.wsManager == nil {
		return
	}
	msg, err := websocket.NewMessage(msgType, payload)
	if err != nil {
		return
	}
	s.wsManager.BroadcastToUser(userKey, msg)
}
