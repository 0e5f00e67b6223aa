package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"geo2max-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

// ActivityRepository is the per-user persistent activity collection.
// Every read on a collection that was never created behaves as an empty
// collection rather than an error; DropCollection on a missing
// collection is a no-op.
type ActivityRepository interface {
	FindMostRecent(ctx context.Context, userKey string) (*domain.Activity, error)
	InsertMany(ctx context.Context, userKey string, activities []*domain.Activity) (int, error)
	CountMatching(ctx context.Context, userKey string, selector map[string]interface{}) (int, error)
	FindPage(ctx context.Context, userKey string, selector map[string]interface{}, sortBy string, sortDesc bool, skip, limit int) ([]*domain.Activity, error)
	DropCollection(ctx context.Context, userKey string) error
}

type activityRepository struct {
	client *kivik.Client
}

func NewActivityRepository(client *kivik.Client) ActivityRepository {
	return &activityRepository{client: client}
}

const dbPrefix = "activities_"

// countLimit bounds how many matching ids a count query reads; mango has
// no server-side count, so CountMatching streams ids and counts them.
const countLimit = 100000000

// databaseName maps a user key onto its collection. CouchDB names only
// allow lowercase letters, digits and a few symbols; anything else in
// the key is folded to '-'.
func databaseName(userKey string) string {
	var b strings.Builder
	b.WriteString(dbPrefix)
	for _, r := range strings.ToLower(userKey) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}

func (r *activityRepository) FindMostRecent(ctx context.Context, userKey string) (*domain.Activity, error) {
	db, err := r.openIfExists(ctx, userKey)
	if err != nil || db == nil {
		return nil, err
	}

	if err := r.ensureSortIndex(ctx, db, "start_date"); err != nil {
		return nil, err
	}

	query := buildFindQuery(nil, "start_date", true, 0, 1)
	rows := db.Find(ctx, query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query most recent activity: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, nil
	}

	var activity domain.Activity
	if err := rows.ScanDoc(&activity); err != nil {
		return nil, fmt.Errorf("failed to scan most recent activity: %w", err)
	}

	return &activity, nil
}

func (r *activityRepository) InsertMany(ctx context.Context, userKey string, activities []*domain.Activity) (int, error) {
	if len(activities) == 0 {
		return 0, nil
	}

	dbName := databaseName(userKey)
	exists, err := r.client.DBExists(ctx, dbName)
	if err != nil {
		return 0, fmt.Errorf("failed to check collection: %w", err)
	}
	if !exists {
		// A concurrent sync may have created it in the meantime.
		if err := r.client.CreateDB(ctx, dbName); err != nil && kivik.HTTPStatus(err) != http.StatusPreconditionFailed {
			return 0, fmt.Errorf("failed to create collection: %w", err)
		}
	}

	docs := make([]interface{}, 0, len(activities))
	for _, activity := range activities {
		doc, err := toDocument(activity)
		if err != nil {
			return 0, fmt.Errorf("failed to encode activity %d: %w", activity.ID, err)
		}
		docs = append(docs, doc)
	}

	results, err := r.client.DB(dbName).BulkDocs(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("failed to insert activities: %w", err)
	}

	inserted := 0
	for _, res := range results {
		if res.Error == nil {
			inserted++
		}
	}

	return inserted, nil
}

func (r *activityRepository) CountMatching(ctx context.Context, userKey string, selector map[string]interface{}) (int, error) {
	db, err := r.openIfExists(ctx, userKey)
	if err != nil || db == nil {
		return 0, err
	}

	query := buildFindQuery(selector, "", false, 0, countLimit)
	query["fields"] = []string{"_id"}

	rows := db.Find(ctx, query)
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to count activities: %w", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		count++
	}

	return count, nil
}

func (r *activityRepository) FindPage(ctx context.Context, userKey string, selector map[string]interface{}, sortBy string, sortDesc bool, skip, limit int) ([]*domain.Activity, error) {
	db, err := r.openIfExists(ctx, userKey)
	if err != nil || db == nil {
		return nil, err
	}

	if sortBy != "" {
		if err := r.ensureSortIndex(ctx, db, sortBy); err != nil {
			return nil, err
		}
	}

	query := buildFindQuery(selector, sortBy, sortDesc, skip, limit)
	rows := db.Find(ctx, query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	var activities []*domain.Activity
	for rows.Next() {
		var activity domain.Activity
		if err := rows.ScanDoc(&activity); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, &activity)
	}

	return activities, nil
}

func (r *activityRepository) DropCollection(ctx context.Context, userKey string) error {
	err := r.client.DestroyDB(ctx, databaseName(userKey))
	if err != nil && kivik.HTTPStatus(err) != http.StatusNotFound {
		return fmt.Errorf("failed to drop collection: %w", err)
	}
	return nil
}

// openIfExists returns the user's database, or nil when the collection
// was never created (which every read treats as empty).
func (r *activityRepository) openIfExists(ctx context.Context, userKey string) (*kivik.DB, error) {
	dbName := databaseName(userKey)
	exists, err := r.client.DBExists(ctx, dbName)
	if err != nil {
		return nil, fmt.Errorf("failed to check collection: %w", err)
	}
	if !exists {
		return nil, nil
	}
	return r.client.DB(dbName), nil
}

// ensureSortIndex creates a mango index for the sort field. CreateIndex
// is idempotent, so repeated queries on the same field are cheap.
func (r *activityRepository) ensureSortIndex(ctx context.Context, db *kivik.DB, field string) error {
	index := map[string]interface{}{
		"fields": []string{field},
	}
	if err := db.CreateIndex(ctx, "", "", index); err != nil {
		return fmt.Errorf("failed to create index on %s: %w", field, err)
	}
	return nil
}

// buildFindQuery assembles the mango query. A caller-supplied selector
// passes through untouched except for one adjustment: mango refuses to
// sort on a field the selector never mentions, so the sort field gets a
// match-anything "$gt": null guard when absent.
func buildFindQuery(selector map[string]interface{}, sortBy string, sortDesc bool, skip, limit int) map[string]interface{} {
	sel := make(map[string]interface{}, len(selector)+1)
	for k, v := range selector {
		sel[k] = v
	}
	if sortBy != "" {
		if _, ok := sel[sortBy]; !ok {
			sel[sortBy] = map[string]interface{}{"$gt": nil}
		}
	}

	query := map[string]interface{}{
		"selector": sel,
		"limit":    limit,
	}
	if sortBy != "" {
		direction := "asc"
		if sortDesc {
			direction = "desc"
		}
		query["sort"] = []map[string]string{{sortBy: direction}}
	}
	if skip > 0 {
		query["skip"] = skip
	}

	return query
}

// toDocument flattens an activity into its stored form. The document id
// is the activity id, so re-inserting an already stored activity
// conflicts instead of duplicating it.
func toDocument(activity *domain.Activity) (map[string]interface{}, error) {
	raw, err := json.Marshal(activity)
	if err != nil {
		return nil, err
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	doc["_id"] = strconv.FormatInt(activity.ID, 10)
	return doc, nil
}
