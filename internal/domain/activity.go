package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Activity is one remote activity record. Only the identifier and the
// start date are interpreted by the server; every other field the remote
// API sends (name, type, distance, elevation, counts, geo flags) is kept
// opaque in Fields and stored exactly as received.
type Activity struct {
	ID        int64
	StartDate time.Time
	Fields    map[string]interface{}
}

const startDateLayout = time.RFC3339

func (a Activity) MarshalJSON() ([]byte, error) {
	doc := make(map[string]interface{}, len(a.Fields)+2)
	for k, v := range a.Fields {
		doc[k] = v
	}
	doc["id"] = a.ID
	doc["start_date"] = a.StartDate.UTC().Format(startDateLayout)
	return json.Marshal(doc)
}

func (a *Activity) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc map[string]interface{}
	if err := dec.Decode(&doc); err != nil {
		return err
	}

	id, err := parseActivityID(doc["id"])
	if err != nil {
		return err
	}

	rawDate, ok := doc["start_date"].(string)
	if !ok {
		return fmt.Errorf("activity %d is missing start_date", id)
	}
	startDate, err := time.Parse(startDateLayout, rawDate)
	if err != nil {
		return fmt.Errorf("activity %d has invalid start_date %q: %w", id, rawDate, err)
	}

	delete(doc, "id")
	delete(doc, "start_date")
	// Storage bookkeeping fields are not part of the activity payload.
	delete(doc, "_id")
	delete(doc, "_rev")

	a.ID = id
	a.StartDate = startDate
	a.Fields = doc
	return nil
}

func parseActivityID(raw interface{}) (int64, error) {
	switch v := raw.(type) {
	case json.Number:
		return v.Int64()
	case string:
		var n json.Number = json.Number(v)
		return n.Int64()
	case nil:
		return 0, fmt.Errorf("activity is missing id")
	default:
		return 0, fmt.Errorf("activity has invalid id %v", raw)
	}
}
