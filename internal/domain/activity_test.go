package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestActivity_UnmarshalKeepsUnknownFields(t *testing.T) {
	raw := `{
		"id": 123456789,
		"name": "Lunch Ride",
		"start_date": "2024-03-01T12:30:00Z",
		"distance": 31042.7,
		"type": "Ride",
		"kudos_count": 12,
		"start_latlng": [52.52, 13.40]
	}`

	var activity Activity
	if err := json.Unmarshal([]byte(raw), &activity); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if activity.ID != 123456789 {
		t.Errorf("expected id 123456789, got %d", activity.ID)
	}
	want, _ := time.Parse(time.RFC3339, "2024-03-01T12:30:00Z")
	if !activity.StartDate.Equal(want) {
		t.Errorf("expected start date %v, got %v", want, activity.StartDate)
	}

	if activity.Fields["name"] != "Lunch Ride" {
		t.Errorf("expected name in fields, got %v", activity.Fields["name"])
	}
	if activity.Fields["type"] != "Ride" {
		t.Errorf("expected type in fields, got %v", activity.Fields["type"])
	}
	if _, ok := activity.Fields["id"]; ok {
		t.Error("expected id removed from fields")
	}
	if _, ok := activity.Fields["start_date"]; ok {
		t.Error("expected start_date removed from fields")
	}
}

func TestActivity_UnmarshalDropsStorageFields(t *testing.T) {
	raw := `{
		"_id": "123",
		"_rev": "1-abc",
		"id": 123,
		"name": "Morning Run",
		"start_date": "2024-03-01T08:00:00Z"
	}`

	var activity Activity
	if err := json.Unmarshal([]byte(raw), &activity); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, ok := activity.Fields["_id"]; ok {
		t.Error("expected _id dropped")
	}
	if _, ok := activity.Fields["_rev"]; ok {
		t.Error("expected _rev dropped")
	}
}

func TestActivity_UnmarshalMissingStartDate(t *testing.T) {
	var activity Activity
	err := json.Unmarshal([]byte(`{"id": 1, "name": "No Date"}`), &activity)
	if err == nil {
		t.Fatal("expected error for missing start_date")
	}
}

func TestActivity_MarshalFlattens(t *testing.T) {
	start, _ := time.Parse(time.RFC3339, "2024-03-01T08:00:00+01:00")
	activity := Activity{
		ID:        42,
		StartDate: start,
		Fields: map[string]interface{}{
			"name": "Morning Run",
		},
	}

	raw, err := json.Marshal(activity)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("expected valid json, got %v", err)
	}

	if doc["id"] != float64(42) {
		t.Errorf("expected id 42, got %v", doc["id"])
	}
	if doc["start_date"] != "2024-03-01T07:00:00Z" {
		t.Errorf("expected UTC start_date, got %v", doc["start_date"])
	}
	if doc["name"] != "Morning Run" {
		t.Errorf("expected name flattened, got %v", doc["name"])
	}
}
