package service

import (
	"context"
	"reflect"
	"testing"

	"geo2max-server/internal/domain"
)

func TestActivityService_QueryDefaults(t *testing.T) {
	repo := newMockActivityRepo()
	a1 := makeActivity(1, "2024-03-01T08:00:00Z")
	a2 := makeActivity(2, "2024-03-02T08:00:00Z")
	repo.stored = []*domain.Activity{&a1, &a2}
	repo.pageResult = []*domain.Activity{&a2, &a1}

	service := NewActivityService(repo, nil)

	result, err := service.Query(context.Background(), "user1", &domain.QueryRequest{
		Page:     1,
		PerPage:  30,
		SortBy:   "start_date",
		SortDesc: true,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if result.Total != 2 {
		t.Errorf("expected total 2, got %d", result.Total)
	}
	if len(result.Activities) != 2 {
		t.Errorf("expected 2 activities, got %d", len(result.Activities))
	}
	if result.Error != "" {
		t.Errorf("expected no diagnostic, got %q", result.Error)
	}
	if len(repo.lastSelector) != 0 {
		t.Errorf("expected empty selector, got %v", repo.lastSelector)
	}
	if repo.lastSortBy != "start_date" || !repo.lastSortDesc {
		t.Errorf("expected descending start_date sort, got %s desc=%v", repo.lastSortBy, repo.lastSortDesc)
	}
}

func TestActivityService_QueryPagination(t *testing.T) {
	repo := newMockActivityRepo()
	service := NewActivityService(repo, nil)

	_, err := service.Query(context.Background(), "user1", &domain.QueryRequest{
		Page:    3,
		PerPage: 10,
		SortBy:  "start_date",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if repo.lastSkip != 20 {
		t.Errorf("expected skip 20, got %d", repo.lastSkip)
	}
	if repo.lastLimit != 10 {
		t.Errorf("expected limit 10, got %d", repo.lastLimit)
	}
}

func TestActivityService_QueryFreeTextEscaped(t *testing.T) {
	repo := newMockActivityRepo()
	service := NewActivityService(repo, nil)

	_, err := service.Query(context.Background(), "user1", &domain.QueryRequest{
		Page:    1,
		PerPage: 30,
		Search:  "a.b*c",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := map[string]interface{}{
		"name": map[string]interface{}{
			"$regex": `(?i)a\.b\*c`,
		},
	}
	if !reflect.DeepEqual(repo.lastSelector, want) {
		t.Errorf("expected selector %v, got %v", want, repo.lastSelector)
	}
}

func TestActivityService_QueryStructuredFilter(t *testing.T) {
	repo := newMockActivityRepo()
	service := NewActivityService(repo, nil)

	_, err := service.Query(context.Background(), "user1", &domain.QueryRequest{
		Page:    1,
		PerPage: 30,
		Search:  `{"distance": {"$gt": 10000}}`,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	inner, ok := repo.lastSelector["distance"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected structured selector passthrough, got %v", repo.lastSelector)
	}
	if inner["$gt"] != float64(10000) {
		t.Errorf("expected $gt 10000, got %v", inner["$gt"])
	}
}

func TestActivityService_QueryMalformedFilterDegrades(t *testing.T) {
	repo := newMockActivityRepo()
	service := NewActivityService(repo, nil)

	result, err := service.Query(context.Background(), "user1", &domain.QueryRequest{
		Page:    1,
		PerPage: 30,
		Search:  `{"distance": {$gt: 10000}}`,
	})
	if err != nil {
		t.Fatalf("expected degraded result, got error %v", err)
	}

	if result.Error == "" {
		t.Error("expected a diagnostic message")
	}
	if result.Total != 0 || len(result.Activities) != 0 {
		t.Errorf("expected empty result, got total %d with %d activities", result.Total, len(result.Activities))
	}
	if repo.countCalls != 0 || repo.findPageCalls != 0 {
		t.Error("expected store untouched on malformed filter")
	}
}

func TestActivityService_QueryOutOfRangePage(t *testing.T) {
	repo := newMockActivityRepo()
	a1 := makeActivity(1, "2024-03-01T08:00:00Z")
	repo.stored = []*domain.Activity{&a1}
	repo.pageResult = nil

	service := NewActivityService(repo, nil)

	result, err := service.Query(context.Background(), "user1", &domain.QueryRequest{
		Page:    50,
		PerPage: 30,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if result.Total != 1 {
		t.Errorf("expected total 1, got %d", result.Total)
	}
	if result.Activities == nil || len(result.Activities) != 0 {
		t.Errorf("expected empty non-nil page, got %v", result.Activities)
	}
}

func TestActivityService_Drop(t *testing.T) {
	repo := newMockActivityRepo()
	a1 := makeActivity(1, "2024-03-01T08:00:00Z")
	repo.stored = []*domain.Activity{&a1}

	service := NewActivityService(repo, nil)

	if err := service.Drop(context.Background(), "user1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(repo.stored) != 0 {
		t.Error("expected collection cleared")
	}

	// Dropping again is a no-op, not an error.
	if err := service.Drop(context.Background(), "user1"); err != nil {
		t.Fatalf("expected idempotent drop, got %v", err)
	}
	if repo.dropCalls != 2 {
		t.Errorf("expected 2 drop calls, got %d", repo.dropCalls)
	}
}

func TestParseSearch(t *testing.T) {
	tests := []struct {
		name    string
		search  string
		want    map[string]interface{}
		wantErr bool
	}{
		{
			name:   "empty matches all",
			search: "",
			want:   map[string]interface{}{},
		},
		{
			name:   "whitespace matches all",
			search: "   ",
			want:   map[string]interface{}{},
		},
		{
			name:   "free text becomes name regex",
			search: "morning",
			want: map[string]interface{}{
				"name": map[string]interface{}{"$regex": "(?i)morning"},
			},
		},
		{
			name:   "json object passes through",
			search: `{"type": "Run"}`,
			want:   map[string]interface{}{"type": "Run"},
		},
		{
			name:    "malformed json rejected",
			search:  `{"type": Run}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSearch(tt.search)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
