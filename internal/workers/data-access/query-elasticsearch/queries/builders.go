package queries

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var (
	ErrUnknownQueryType = errors.New("unknown query type")
	ErrMissingIndex     = errors.New("index name is required")
)

// ElasticsearchQuery defines the structure of a query request
type ElasticsearchQuery struct {
	Index      string
	QueryType  string
	Filters    map[string]interface{}
	ProgramID  string
	Category   string
	Pagination struct {
		From int
		Size int
	}
}

// BuildQuery builds an Elasticsearch search request based on query type and filters
func BuildQuery(esClient *elasticsearch.Client, eq ElasticsearchQuery) (*esapi.SearchRequest, error) {
	if eq.Index == "" {
		return nil, ErrMissingIndex
	}

	var queryBody map[string]interface{}

	switch eq.QueryType {
	case "program_search":
		queryBody = buildProgramSearchQuery(eq)
	case "related_programs":
		queryBody = buildRelatedProgramsQuery(eq)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownQueryType, eq.QueryType)
	}

	body, _ := json.Marshal(queryBody)

	// Zero pagination values stay unset so the cluster defaults apply.
	req := esapi.SearchRequest{
		Index:  []string{eq.Index},
		Body:   strings.NewReader(string(body)),
		Pretty: true,
	}
	if eq.Pagination.From > 0 {
		req.From = &eq.Pagination.From
	}
	if eq.Pagination.Size > 0 {
		req.Size = &eq.Pagination.Size
	}

	return &req, nil
}

// buildProgramSearchQuery builds the main funding-program search query dynamically
func buildProgramSearchQuery(eq ElasticsearchQuery) map[string]interface{} {
	boolQuery := make(map[string]interface{})
	mustClauses := []interface{}{}
	filterClauses := []interface{}{}

	// Keyword search
	if keywords, ok := eq.Filters["keywords"].(string); ok && keywords != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  keywords,
				"fields": []string{"title^3", "keywords^2", "description"},
				"type":   "best_fields",
			},
		})
	}

	// Category filter
	if category, ok := eq.Filters["category"].(string); ok && category != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"category": category},
		})
	} else if eq.Category != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"category": eq.Category},
		})
	}

	// Status filter
	if status, ok := eq.Filters["status"].(string); ok && status != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"status": status},
		})
	}

	// TRL filter: the program's stated range must contain the requested level.
	// Programs that never state a range carry no trl_min field and stay in.
	if trl, ok := asNumber(eq.Filters["trlLevel"]); ok && trl >= 1 && trl <= 9 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []interface{}{
					map[string]interface{}{
						"bool": map[string]interface{}{
							"must_not": map[string]interface{}{
								"exists": map[string]interface{}{"field": "trl_min"},
							},
						},
					},
					map[string]interface{}{
						"bool": map[string]interface{}{
							"must": []interface{}{
								map[string]interface{}{
									"range": map[string]interface{}{
										"trl_min": map[string]interface{}{"lte": trl},
									},
								},
								map[string]interface{}{
									"range": map[string]interface{}{
										"trl_max": map[string]interface{}{"gte": trl},
									},
								},
							},
						},
					},
				},
				"minimum_should_match": 1,
			},
		})
	}

	// Budget range filter
	if budgetRange, ok := eq.Filters["budgetRange"].(map[string]interface{}); ok {
		budgetBounds := map[string]interface{}{}
		if minVal, ok := asNumber(budgetRange["min"]); ok && minVal > 0 {
			budgetBounds["gte"] = minVal
		}
		if maxVal, ok := asNumber(budgetRange["max"]); ok && maxVal > 0 {
			budgetBounds["lte"] = maxVal
		}
		if len(budgetBounds) > 0 {
			filterClauses = append(filterClauses, map[string]interface{}{
				"range": map[string]interface{}{"budget_amount": budgetBounds},
			})
		}
	}

	// Deadline window filter: open programs closing within the next N days
	if days, ok := asNumber(eq.Filters["deadlineWithinDays"]); ok && days > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"range": map[string]interface{}{
				"deadline": map[string]interface{}{
					"gte": "now/d",
					"lte": fmt.Sprintf("now+%dd/d", int(days)),
				},
			},
		})
	}

	// Default match_all if no keyword
	if len(mustClauses) == 0 {
		mustClauses = append(mustClauses, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	boolQuery["must"] = mustClauses
	if len(filterClauses) > 0 {
		boolQuery["filter"] = filterClauses
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": boolQuery,
		},
	}

	// Sorting logic
	if sortBy, ok := eq.Filters["sortBy"].(string); ok {
		switch sortBy {
		case "deadline":
			query["sort"] = []map[string]interface{}{{"deadline": "asc"}}
		case "budget":
			query["sort"] = []map[string]interface{}{{"budget_amount": "desc"}}
		}
	}

	return query
}

// buildRelatedProgramsQuery builds "similar funding programs" query
func buildRelatedProgramsQuery(eq ElasticsearchQuery) map[string]interface{} {
	if eq.ProgramID == "" {
		return map[string]interface{}{
			"query": map[string]interface{}{
				"match_none": map[string]interface{}{},
			},
		}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"more_like_this": map[string]interface{}{
				"fields": []string{"title", "description", "keywords", "category"},
				"like": []map[string]interface{}{
					{"_index": eq.Index, "_id": eq.ProgramID},
				},
				"min_term_freq":   1,
				"max_query_terms": 12,
				"min_doc_freq":    1,
				"min_word_length": 2, // Korean program terms are often two syllables
			},
		},
	}
}

func asNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
