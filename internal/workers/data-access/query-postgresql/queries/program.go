// internal/workers/data-access/query-postgresql/queries/program.go
package queries

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"

	"grantmatch-workers/internal/models"
)

func ProgramDetails(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	programID, ok := params["programId"].(string)
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	var doc []byte
	err := db.QueryRowContext(ctx, `
		SELECT document FROM funding_programs WHERE id = $1`, programID).Scan(&doc)
	if err != nil {
		return nil, 0, 0, err
	}

	var prog models.FundingProgram
	if err := json.Unmarshal(doc, &prog); err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return prog, 1, execTime, nil
}

// ActivePrograms lists open announcements, optionally narrowed to one
// category through filters.
func ActivePrograms(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	limit, _ := params["limit"].(int)
	if limit <= 0 {
		limit = 500
	}
	var category string
	if filters, ok := params["filters"].(map[string]interface{}); ok {
		category, _ = filters["category"].(string)
	}

	start := time.Now()

	rows, err := db.QueryContext(ctx, `
		SELECT document FROM funding_programs
		WHERE status = 'ACTIVE' AND (deadline IS NULL OR deadline > NOW())
		  AND ($1 = '' OR document->>'category' = $1)
		ORDER BY deadline NULLS LAST
		LIMIT $2`, category, limit)
	if err != nil {
		return nil, 0, 0, err
	}

	results, err := scanProgramDocuments(rows)
	if err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return results, len(results), execTime, nil
}

func ProgramsByIDs(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	programIDs, ok := params["programIds"].([]string)
	if !ok || len(programIDs) == 0 {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	rows, err := db.QueryContext(ctx, `
		SELECT document FROM funding_programs WHERE id = ANY($1)`, pq.Array(programIDs))
	if err != nil {
		return nil, 0, 0, err
	}

	results, err := scanProgramDocuments(rows)
	if err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return results, len(results), execTime, nil
}

func scanProgramDocuments(rows *sql.Rows) ([]models.FundingProgram, error) {
	defer rows.Close()

	var results []models.FundingProgram
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var prog models.FundingProgram
		if err := json.Unmarshal(doc, &prog); err != nil {
			return nil, err
		}
		results = append(results, prog)
	}
	return results, rows.Err()
}
