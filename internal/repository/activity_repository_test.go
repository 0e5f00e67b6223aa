package repository

import (
	"reflect"
	"testing"
	"time"

	"geo2max-server/internal/domain"
)

func TestDatabaseName(t *testing.T) {
	tests := []struct {
		name    string
		userKey string
		want    string
	}{
		{"plain key", "12345", "activities_12345"},
		{"uppercase folded", "Athlete42", "activities_athlete42"},
		{"special chars folded", "user@example.com", "activities_user-example-com"},
		{"underscore and dash kept", "a_b-c", "activities_a_b-c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := databaseName(tt.userKey); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestBuildFindQuery(t *testing.T) {
	t.Run("sort field gets match-anything guard", func(t *testing.T) {
		query := buildFindQuery(nil, "start_date", true, 0, 1)

		sel := query["selector"].(map[string]interface{})
		guard, ok := sel["start_date"].(map[string]interface{})
		if !ok {
			t.Fatalf("expected guard on start_date, got %v", sel)
		}
		if guard["$gt"] != nil {
			t.Errorf("expected $gt null guard, got %v", guard)
		}

		sort := query["sort"].([]map[string]string)
		if !reflect.DeepEqual(sort, []map[string]string{{"start_date": "desc"}}) {
			t.Errorf("unexpected sort: %v", sort)
		}
	})

	t.Run("selector field not overwritten by guard", func(t *testing.T) {
		selector := map[string]interface{}{
			"start_date": map[string]interface{}{"$gt": "2024-01-01T00:00:00Z"},
		}
		query := buildFindQuery(selector, "start_date", false, 0, 10)

		sel := query["selector"].(map[string]interface{})
		cond := sel["start_date"].(map[string]interface{})
		if cond["$gt"] != "2024-01-01T00:00:00Z" {
			t.Errorf("expected caller condition kept, got %v", cond)
		}
	})

	t.Run("caller selector not mutated", func(t *testing.T) {
		selector := map[string]interface{}{"type": "Run"}
		buildFindQuery(selector, "distance", true, 0, 10)

		if len(selector) != 1 {
			t.Errorf("expected caller selector untouched, got %v", selector)
		}
	})

	t.Run("skip only when positive", func(t *testing.T) {
		query := buildFindQuery(nil, "", false, 0, 30)
		if _, ok := query["skip"]; ok {
			t.Error("expected no skip for first page")
		}
		if _, ok := query["sort"]; ok {
			t.Error("expected no sort without sort field")
		}

		query = buildFindQuery(nil, "", false, 60, 30)
		if query["skip"] != 60 {
			t.Errorf("expected skip 60, got %v", query["skip"])
		}
		if query["limit"] != 30 {
			t.Errorf("expected limit 30, got %v", query["limit"])
		}
	})
}

func TestToDocument(t *testing.T) {
	start, _ := time.Parse(time.RFC3339, "2024-03-01T08:00:00Z")
	activity := &domain.Activity{
		ID:        123456,
		StartDate: start,
		Fields: map[string]interface{}{
			"name":     "Morning Run",
			"distance": 5000.0,
		},
	}

	doc, err := toDocument(activity)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if doc["_id"] != "123456" {
		t.Errorf("expected _id 123456, got %v", doc["_id"])
	}
	if doc["start_date"] != "2024-03-01T08:00:00Z" {
		t.Errorf("expected RFC3339 start_date, got %v", doc["start_date"])
	}
	if doc["name"] != "Morning Run" {
		t.Errorf("expected name kept, got %v", doc["name"])
	}
	if doc["distance"] != 5000.0 {
		t.Errorf("expected distance kept, got %v", doc["distance"])
	}
}
