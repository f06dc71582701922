// internal/workers/data-access/query-elasticsearch/queries/registry.go
package queries

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
)

// QueryResult carries the decoded hits plus the metadata the worker
// surfaces as process variables.
type QueryResult struct {
	Data      []map[string]interface{}
	TotalHits int64
	MaxScore  float64
	Took      int64
}

// Execute runs one registry query against the cluster. Params use the
// handler's wire names; pagination arrives already defaulted and capped.
func Execute(ctx context.Context, esClient *elasticsearch.Client, params map[string]interface{}) (*QueryResult, error) {
	index, _ := params["indexName"].(string)
	if index == "" {
		return nil, ErrMissingIndex
	}
	queryType, _ := params["queryType"].(string)

	eq := ElasticsearchQuery{
		Index:     index,
		QueryType: queryType,
		Filters:   map[string]interface{}{},
	}
	if filters, ok := params["filters"].(map[string]interface{}); ok && filters != nil {
		eq.Filters = filters
	}
	if programID, ok := params["programId"].(string); ok {
		eq.ProgramID = programID
	}
	if category, ok := params["category"].(string); ok {
		eq.Category = category
	}
	if from, ok := params["from"].(int); ok && from > 0 {
		eq.Pagination.From = from
	}
	if size, ok := params["size"].(int); ok && size > 0 {
		eq.Pagination.Size = size
	}

	req, err := BuildQuery(esClient, eq)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := req.Do(ctx, esClient)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		if res.StatusCode == 404 {
			return nil, fmt.Errorf("%w: %s", ErrMissingIndex, index)
		}
		return nil, fmt.Errorf("search query failed: %s", res.String())
	}

	var body struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			MaxScore *float64 `json:"max_score"`
			Hits     []struct {
				Source map[string]interface{} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	data := make([]map[string]interface{}, 0, len(body.Hits.Hits))
	for _, hit := range body.Hits.Hits {
		data = append(data, hit.Source)
	}

	maxScore := 0.0
	if body.Hits.MaxScore != nil {
		maxScore = *body.Hits.MaxScore
	}

	return &QueryResult{
		Data:      data,
		TotalHits: body.Hits.Total.Value,
		MaxScore:  maxScore,
		Took:      time.Since(start).Milliseconds(),
	}, nil
}
