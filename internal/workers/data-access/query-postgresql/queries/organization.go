// internal/workers/data-access/query-postgresql/queries/organization.go
package queries

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"grantmatch-workers/internal/models"
)

func OrganizationProfile(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	orgID, ok := params["organizationId"].(string)
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	var doc []byte
	err := db.QueryRowContext(ctx, `
		SELECT profile FROM organizations WHERE id = $1`, orgID).Scan(&doc)
	if err != nil {
		return nil, 0, 0, err
	}

	var org models.Organization
	if err := json.Unmarshal(doc, &org); err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return org, 1, execTime, nil
}

// PartnerCandidates returns completed, active profiles other than the
// requesting organization, bounded by the optional limit.
func PartnerCandidates(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	orgID, ok := params["organizationId"].(string)
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}
	limit, _ := params["limit"].(int)
	if limit <= 0 {
		limit = 200
	}

	start := time.Now()

	rows, err := db.QueryContext(ctx, `
		SELECT profile FROM organizations
		WHERE status = 'ACTIVE' AND profile_completed AND id != $1
		LIMIT $2`, orgID, limit)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var results []models.Organization
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, 0, 0, err
		}
		var org models.Organization
		if err := json.Unmarshal(doc, &org); err != nil {
			return nil, 0, 0, err
		}
		results = append(results, org)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return results, len(results), execTime, nil
}
