package queryelasticsearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grantmatch-workers/internal/common/logger"
	"grantmatch-workers/internal/workers/data-access/query-elasticsearch/queries"
)

func createTestConfig() *Config {
	return &Config{
		Timeout:     30 * time.Second,
		DefaultSize: 10,
		MaxSize:     50,
	}
}

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewTestLogger(t)
}

func deadlineFromNow(days int) string {
	return time.Now().AddDate(0, 0, days).Format("2006-01-02")
}

func createRealElasticsearchClient(t *testing.T) *elasticsearch.Client {
	cfg := elasticsearch.Config{
		Addresses: []string{"http://localhost:9200"},
	}

	esClient, err := elasticsearch.NewClient(cfg)
	if err != nil {
		t.Skipf("Skipping test: Failed to create Elasticsearch client: %v", err)
		return nil
	}

	res, err := esClient.Info()
	if err != nil {
		t.Skipf("Skipping test: Elasticsearch container not responding: %v", err)
		return nil
	}
	defer res.Body.Close()

	if res.IsError() {
		t.Skipf("Skipping test: Elasticsearch error: %s", res.String())
		return nil
	}

	t.Log("✅ Connected to REAL Elasticsearch container")
	return esClient
}

func setupRealTestData(t *testing.T, esClient *elasticsearch.Client) {
	esClient.Indices.Delete([]string{"funding-programs"}, esClient.Indices.Delete.WithIgnoreUnavailable(true))

	time.Sleep(2 * time.Second)

	indexBody := `{
		"mappings": {
			"properties": {
				"title": {"type": "text"},
				"description": {"type": "text"},
				"keywords": {"type": "text"},
				"category": {"type": "keyword"},
				"status": {"type": "keyword"},
				"deadline": {"type": "date"},
				"budget_amount": {"type": "long"},
				"trl_min": {"type": "integer"},
				"trl_max": {"type": "integer"}
			}
		}
	}`

	res, err := esClient.Indices.Create(
		"funding-programs",
		esClient.Indices.Create.WithBody(strings.NewReader(indexBody)),
	)
	require.NoError(t, err, "Failed to create index")
	res.Body.Close()

	time.Sleep(1 * time.Second)

	testDocs := []map[string]interface{}{
		{
			"title":         "중소기업 기술혁신 지원사업",
			"description":   "제조 중소기업의 기술혁신 및 공정개선 지원",
			"keywords":      []string{"기술혁신", "공정개선", "스마트공장"},
			"category":      "제조업",
			"status":        "ACTIVE",
			"deadline":      deadlineFromNow(30),
			"budget_amount": 500000000,
			"trl_min":       4,
			"trl_max":       6,
		},
		{
			"title":         "로봇산업 핵심기술 개발사업",
			"description":   "협동로봇 및 자율이동로봇 핵심부품 국산화 개발",
			"keywords":      []string{"로봇", "자동화", "핵심부품"},
			"category":      "로봇",
			"status":        "ACTIVE",
			"deadline":      deadlineFromNow(75),
			"budget_amount": 1200000000,
			"trl_min":       5,
			"trl_max":       8,
		},
		{
			"title":         "바이오헬스 혁신 창업지원",
			"description":   "바이오헬스 분야 초기 창업기업 사업화 지원",
			"keywords":      []string{"바이오", "헬스케어", "창업"},
			"category":      "바이오",
			"status":        "ACTIVE",
			"deadline":      deadlineFromNow(10),
			"budget_amount": 300000000,
			"trl_min":       3,
			"trl_max":       5,
		},
		{
			"title":         "소재부품장비 경쟁력 강화사업",
			"description":   "소재 부품 장비 국산화 기술개발 지원",
			"keywords":      []string{"소재", "부품", "장비"},
			"category":      "제조업",
			"status":        "EXPIRED",
			"deadline":      deadlineFromNow(-60),
			"budget_amount": 800000000,
			"trl_min":       6,
			"trl_max":       9,
		},
		{
			// Consolidated announcement: no budget, no stated TRL range
			"title":       "2026년 정보통신 산업 종합 공고",
			"description": "정보통신 분야 지원사업 통합 공고",
			"keywords":    []string{"정보통신", "ICT"},
			"category":    "정보통신",
			"status":      "ACTIVE",
			"deadline":    deadlineFromNow(45),
		},
	}

	for i, doc := range testDocs {
		docJSON, _ := json.Marshal(doc)
		res, err := esClient.Index(
			"funding-programs",
			strings.NewReader(string(docJSON)),
			esClient.Index.WithDocumentID(fmt.Sprintf("prog-%d", i+1)),
			esClient.Index.WithRefresh("wait_for"),
		)
		require.NoError(t, err, "Failed to index document %d: %v", i+1, doc)
		res.Body.Close()
	}

	_, err = esClient.Indices.Refresh(esClient.Indices.Refresh.WithIndex("funding-programs"))
	require.NoError(t, err, "Failed to refresh index")

	countRes, err := esClient.Count(esClient.Count.WithIndex("funding-programs"))
	require.NoError(t, err)
	defer countRes.Body.Close()

	var countResult map[string]interface{}
	require.NoError(t, json.NewDecoder(countRes.Body).Decode(&countResult))
	count := int(countResult["count"].(float64))
	require.Equal(t, len(testDocs), count)

	t.Logf("📊 Verified: %d program documents in index", count)
}

func TestHandler_Execute_Success_RealElasticsearch(t *testing.T) {
	esClient := createRealElasticsearchClient(t)
	if esClient == nil {
		return
	}
	setupRealTestData(t, esClient)

	handler := NewHandler(createTestConfig(), esClient, createTestLogger(t))

	tests := []struct {
		name     string
		input    *Input
		validate func(t *testing.T, output *Output)
	}{
		{
			name: "search all programs",
			input: &Input{
				IndexName:  "funding-programs",
				QueryType:  "program_search",
				Filters:    map[string]interface{}{},
				Pagination: Pagination{From: 0, Size: 10},
			},
			validate: func(t *testing.T, output *Output) {
				assert.Equal(t, int64(5), output.TotalHits, "Should find all 5 test documents")
				assert.Equal(t, 5, len(output.Data))
				assert.GreaterOrEqual(t, output.Took, int64(0))
				t.Logf("✅ Found %d programs in %d ms", output.TotalHits, output.Took)
			},
		},
		{
			name: "search manufacturing category",
			input: &Input{
				IndexName: "funding-programs",
				QueryType: "program_search",
				Filters: map[string]interface{}{
					"category": "제조업",
				},
				Pagination: Pagination{From: 0, Size: 10},
			},
			validate: func(t *testing.T, output *Output) {
				assert.Equal(t, int64(2), output.TotalHits, "Should find 2 manufacturing programs")
				for _, item := range output.Data {
					assert.Equal(t, "제조업", item["category"])
				}
			},
		},
		{
			name: "search active manufacturing programs",
			input: &Input{
				IndexName: "funding-programs",
				QueryType: "program_search",
				Filters: map[string]interface{}{
					"category": "제조업",
					"status":   "ACTIVE",
				},
				Pagination: Pagination{From: 0, Size: 10},
			},
			validate: func(t *testing.T, output *Output) {
				assert.Equal(t, int64(1), output.TotalHits, "Expired manufacturing program should drop out")
				if output.TotalHits > 0 {
					assert.Equal(t, "중소기업 기술혁신 지원사업", output.Data[0]["title"])
				}
			},
		},
		{
			name: "search with robot keyword",
			input: &Input{
				IndexName: "funding-programs",
				QueryType: "program_search",
				Filters: map[string]interface{}{
					"keywords": "로봇",
				},
				Pagination: Pagination{From: 0, Size: 10},
			},
			validate: func(t *testing.T, output *Output) {
				assert.Equal(t, int64(1), output.TotalHits, "Should find 1 robotics program")
				if output.TotalHits > 0 {
					assert.Equal(t, "로봇산업 핵심기술 개발사업", output.Data[0]["title"])
					t.Logf("✅ Found robotics program: %s", output.Data[0]["title"])
				}
			},
		},
		{
			name: "search with localization keyword",
			input: &Input{
				IndexName: "funding-programs",
				QueryType: "program_search",
				Filters: map[string]interface{}{
					"keywords": "국산화",
				},
				Pagination: Pagination{From: 0, Size: 10},
			},
			validate: func(t *testing.T, output *Output) {
				assert.Equal(t, int64(2), output.TotalHits, "Should find both localization programs")
			},
		},
		{
			name: "sort active programs by deadline",
			input: &Input{
				IndexName: "funding-programs",
				QueryType: "program_search",
				Filters: map[string]interface{}{
					"status": "ACTIVE",
					"sortBy": "deadline",
				},
				Pagination: Pagination{From: 0, Size: 10},
			},
			validate: func(t *testing.T, output *Output) {
				assert.Equal(t, int64(4), output.TotalHits)
				if len(output.Data) > 0 {
					assert.Equal(t, "바이오헬스 혁신 창업지원", output.Data[0]["title"],
						"Program closing soonest should come first")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := handler.execute(context.Background(), tt.input)

			assert.NoError(t, err)
			assert.NotNil(t, output)

			if tt.validate != nil {
				tt.validate(t, output)
			}
		})
	}
}

func TestHandler_Execute_TRLFilter_RealElasticsearch(t *testing.T) {
	esClient := createRealElasticsearchClient(t)
	if esClient == nil {
		return
	}
	setupRealTestData(t, esClient)

	handler := NewHandler(createTestConfig(), esClient, createTestLogger(t))

	tests := []struct {
		name         string
		trlLevel     int
		expectedHits int64
		description  string
	}{
		{
			name:         "mid maturity (TRL 5)",
			trlLevel:     5,
			expectedHits: 4,
			description:  "Three programs span TRL 5 and the rangeless announcement stays in",
		},
		{
			name:         "early development (TRL 4)",
			trlLevel:     4,
			expectedHits: 3,
			description:  "Should find the two ranges containing 4 plus the rangeless announcement",
		},
		{
			name:         "commercialization (TRL 9)",
			trlLevel:     9,
			expectedHits: 2,
			description:  "Only the 6-9 program and the rangeless announcement admit TRL 9",
		},
		{
			name:         "basic research (TRL 1)",
			trlLevel:     1,
			expectedHits: 1,
			description:  "No stated range reaches down to TRL 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := &Input{
				IndexName: "funding-programs",
				QueryType: "program_search",
				Filters: map[string]interface{}{
					"trlLevel": tt.trlLevel,
				},
				Pagination: Pagination{From: 0, Size: 10},
			}

			output, err := handler.execute(context.Background(), input)

			assert.NoError(t, err)
			assert.NotNil(t, output)
			assert.Equal(t, tt.expectedHits, output.TotalHits, tt.description)

			t.Logf("✅ TRL %d: %d hits (%s)", tt.trlLevel, output.TotalHits, tt.description)
		})
	}
}

func TestHandler_Execute_BudgetRange_RealElasticsearch(t *testing.T) {
	esClient := createRealElasticsearchClient(t)
	if esClient == nil {
		return
	}
	setupRealTestData(t, esClient)

	handler := NewHandler(createTestConfig(), esClient, createTestLogger(t))

	tests := []struct {
		name         string
		budgetMin    float64
		budgetMax    float64
		expectedHits int64
		description  string
	}{
		{
			name:         "minimum budget only (400M+)",
			budgetMin:    400000000,
			budgetMax:    0,
			expectedHits: 3,
			description:  "Should find programs with budget >= 400M",
		},
		{
			name:         "maximum budget only (up to 600M)",
			budgetMin:    0,
			budgetMax:    600000000,
			expectedHits: 2,
			description:  "Should find programs with budget <= 600M",
		},
		{
			name:         "mid budget band (400M-900M)",
			budgetMin:    400000000,
			budgetMax:    900000000,
			expectedHits: 2,
			description:  "Should find programs whose budget falls within the band",
		},
		{
			name:         "very high minimum (2B+)",
			budgetMin:    2000000000,
			budgetMax:    0,
			expectedHits: 0,
			description:  "No program budget reaches 2B",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := &Input{
				IndexName: "funding-programs",
				QueryType: "program_search",
				Filters: map[string]interface{}{
					"budgetRange": map[string]interface{}{
						"min": tt.budgetMin,
						"max": tt.budgetMax,
					},
				},
				Pagination: Pagination{From: 0, Size: 10},
			}

			output, err := handler.execute(context.Background(), input)

			assert.NoError(t, err)
			assert.NotNil(t, output)
			assert.Equal(t, tt.expectedHits, output.TotalHits, tt.description)

			if output.TotalHits > 0 {
				t.Logf("🔍 Found %d programs in range %v-%v:", output.TotalHits, tt.budgetMin, tt.budgetMax)
				for _, item := range output.Data {
					t.Logf("   - %s: %v", item["title"], item["budget_amount"])
				}
			}
		})
	}
}

func TestHandler_Execute_DeadlineWindow_RealElasticsearch(t *testing.T) {
	esClient := createRealElasticsearchClient(t)
	if esClient == nil {
		return
	}
	setupRealTestData(t, esClient)

	handler := NewHandler(createTestConfig(), esClient, createTestLogger(t))

	tests := []struct {
		name         string
		withinDays   int
		expectedHits int64
		description  string
	}{
		{
			name:         "closing within two weeks",
			withinDays:   15,
			expectedHits: 1,
			description:  "Only the bio program closes within 15 days",
		},
		{
			name:         "closing within 45 days",
			withinDays:   45,
			expectedHits: 3,
			description:  "Should find the three programs closing within 45 days",
		},
		{
			name:         "closing within a year",
			withinDays:   365,
			expectedHits: 4,
			description:  "All open programs qualify; the expired one stays out",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := &Input{
				IndexName: "funding-programs",
				QueryType: "program_search",
				Filters: map[string]interface{}{
					"deadlineWithinDays": tt.withinDays,
				},
				Pagination: Pagination{From: 0, Size: 10},
			}

			output, err := handler.execute(context.Background(), input)

			assert.NoError(t, err)
			assert.NotNil(t, output)
			assert.Equal(t, tt.expectedHits, output.TotalHits, tt.description)

			t.Logf("✅ Within %d days: %d hits", tt.withinDays, output.TotalHits)
		})
	}
}

func TestHandler_Execute_Pagination_RealElasticsearch(t *testing.T) {
	esClient := createRealElasticsearchClient(t)
	if esClient == nil {
		return
	}
	setupRealTestData(t, esClient)

	handler := NewHandler(createTestConfig(), esClient, createTestLogger(t))

	t.Run("first page of two", func(t *testing.T) {
		input := &Input{
			IndexName:  "funding-programs",
			QueryType:  "program_search",
			Filters:    map[string]interface{}{},
			Pagination: Pagination{From: 0, Size: 2},
		}

		output, err := handler.execute(context.Background(), input)

		assert.NoError(t, err)
		assert.Equal(t, int64(5), output.TotalHits)
		assert.Equal(t, 2, len(output.Data))
	})

	t.Run("trailing page", func(t *testing.T) {
		input := &Input{
			IndexName:  "funding-programs",
			QueryType:  "program_search",
			Filters:    map[string]interface{}{},
			Pagination: Pagination{From: 4, Size: 2},
		}

		output, err := handler.execute(context.Background(), input)

		assert.NoError(t, err)
		assert.Equal(t, int64(5), output.TotalHits)
		assert.Equal(t, 1, len(output.Data))
	})
}

func TestHandler_Execute_IndexNotFound_RealElasticsearch(t *testing.T) {
	esClient := createRealElasticsearchClient(t)
	if esClient == nil {
		return
	}

	handler := NewHandler(createTestConfig(), esClient, createTestLogger(t))

	input := &Input{
		IndexName: "nonexistent_index",
		QueryType: "program_search",
		Filters:   map[string]interface{}{},
	}

	output, err := handler.execute(context.Background(), input)

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrIndexNotFound) || strings.Contains(err.Error(), "index_not_found"))
	assert.Nil(t, output)

	t.Logf("✅ Correctly handled missing index: %v", err)
}

func TestHandler_ErrorMapping(t *testing.T) {
	handler := NewHandler(createTestConfig(), nil, createTestLogger(t))

	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"index not found", ErrIndexNotFound, "INDEX_NOT_FOUND"},
		{"search timeout", ErrSearchTimeout, "SEARCH_TIMEOUT"},
		{"search query failed", ErrSearchQueryFailed, "SEARCH_QUERY_FAILED"},
		{"connection failed", ErrElasticsearchConnectionFailed, "ELASTICSEARCH_CONNECTION_FAILED"},
		{"unknown error", errors.New("random error"), "UNKNOWN_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := handler.mapErrorToCode(tt.err)
			assert.Equal(t, tt.expected, code)
		})
	}
}

func TestHandler_EdgeCases(t *testing.T) {
	handler := NewHandler(createTestConfig(), nil, createTestLogger(t))

	t.Run("nil input", func(t *testing.T) {
		output, err := handler.execute(context.Background(), nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be nil")
		assert.Nil(t, output)
	})

	t.Run("empty index name", func(t *testing.T) {
		input := &Input{
			IndexName: "",
			QueryType: "program_search",
			Filters:   map[string]interface{}{},
		}
		output, err := handler.execute(context.Background(), input)
		assert.Error(t, err)
		assert.True(t, errors.Is(err, ErrIndexNotFound))
		assert.Nil(t, output)
	})

	t.Run("invalid query type", func(t *testing.T) {
		input := &Input{
			IndexName: "funding-programs",
			QueryType: "invalid_query_type",
			Filters:   map[string]interface{}{},
		}
		output, err := handler.execute(context.Background(), input)
		assert.Error(t, err)
		assert.True(t, errors.Is(err, ErrSearchQueryFailed))
		assert.Nil(t, output)
	})
}

func TestHandler_PageSize(t *testing.T) {
	handler := NewHandler(createTestConfig(), nil, createTestLogger(t))

	t.Run("unset pagination falls back to the default", func(t *testing.T) {
		assert.Equal(t, 10, handler.pageSize(0))
	})

	t.Run("explicit size within bounds passes through", func(t *testing.T) {
		assert.Equal(t, 25, handler.pageSize(25))
	})

	t.Run("oversized request clamped to the ceiling", func(t *testing.T) {
		assert.Equal(t, 50, handler.pageSize(500))
	})
}

// ==========================
// Query Builder Tests
// ==========================

func decodeQueryBody(t *testing.T, req *esapi.SearchRequest) map[string]interface{} {
	t.Helper()

	body, err := io.ReadAll(req.Body)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &decoded))
	return decoded
}

func TestBuildQuery_ProgramSearch(t *testing.T) {
	t.Run("keyword search uses multi_match over program fields", func(t *testing.T) {
		eq := queries.ElasticsearchQuery{
			Index:     "funding-programs",
			QueryType: "program_search",
			Filters:   map[string]interface{}{"keywords": "로봇"},
		}

		req, err := queries.BuildQuery(nil, eq)
		require.NoError(t, err)

		decoded := decodeQueryBody(t, req)
		boolQuery := decoded["query"].(map[string]interface{})["bool"].(map[string]interface{})
		must := boolQuery["must"].([]interface{})
		require.Len(t, must, 1)

		multiMatch := must[0].(map[string]interface{})["multi_match"].(map[string]interface{})
		assert.Equal(t, "로봇", multiMatch["query"])
		assert.Contains(t, multiMatch["fields"], "title^3")
		assert.Contains(t, multiMatch["fields"], "keywords^2")
	})

	t.Run("no keyword falls back to match_all", func(t *testing.T) {
		eq := queries.ElasticsearchQuery{
			Index:     "funding-programs",
			QueryType: "program_search",
			Filters:   map[string]interface{}{},
		}

		req, err := queries.BuildQuery(nil, eq)
		require.NoError(t, err)

		decoded := decodeQueryBody(t, req)
		boolQuery := decoded["query"].(map[string]interface{})["bool"].(map[string]interface{})
		must := boolQuery["must"].([]interface{})
		require.Len(t, must, 1)
		assert.Contains(t, must[0].(map[string]interface{}), "match_all")
	})

	t.Run("category and status become term filters", func(t *testing.T) {
		eq := queries.ElasticsearchQuery{
			Index:     "funding-programs",
			QueryType: "program_search",
			Filters: map[string]interface{}{
				"category": "제조업",
				"status":   "ACTIVE",
			},
		}

		req, err := queries.BuildQuery(nil, eq)
		require.NoError(t, err)

		decoded := decodeQueryBody(t, req)
		boolQuery := decoded["query"].(map[string]interface{})["bool"].(map[string]interface{})
		filters := boolQuery["filter"].([]interface{})
		assert.Len(t, filters, 2)
	})

	t.Run("trl filter keeps rangeless programs eligible", func(t *testing.T) {
		eq := queries.ElasticsearchQuery{
			Index:     "funding-programs",
			QueryType: "program_search",
			Filters:   map[string]interface{}{"trlLevel": 5},
		}

		req, err := queries.BuildQuery(nil, eq)
		require.NoError(t, err)

		decoded := decodeQueryBody(t, req)
		boolQuery := decoded["query"].(map[string]interface{})["bool"].(map[string]interface{})
		filters := boolQuery["filter"].([]interface{})
		require.Len(t, filters, 1)

		trlClause := filters[0].(map[string]interface{})["bool"].(map[string]interface{})
		should := trlClause["should"].([]interface{})
		assert.Len(t, should, 2)
		assert.Equal(t, float64(1), trlClause["minimum_should_match"])
	})

	t.Run("deadline window uses date math", func(t *testing.T) {
		eq := queries.ElasticsearchQuery{
			Index:     "funding-programs",
			QueryType: "program_search",
			Filters:   map[string]interface{}{"deadlineWithinDays": 30},
		}

		req, err := queries.BuildQuery(nil, eq)
		require.NoError(t, err)

		decoded := decodeQueryBody(t, req)
		boolQuery := decoded["query"].(map[string]interface{})["bool"].(map[string]interface{})
		filters := boolQuery["filter"].([]interface{})
		require.Len(t, filters, 1)

		deadline := filters[0].(map[string]interface{})["range"].(map[string]interface{})["deadline"].(map[string]interface{})
		assert.Equal(t, "now/d", deadline["gte"])
		assert.Equal(t, "now+30d/d", deadline["lte"])
	})

	t.Run("sort by deadline sets sort clause", func(t *testing.T) {
		eq := queries.ElasticsearchQuery{
			Index:     "funding-programs",
			QueryType: "program_search",
			Filters:   map[string]interface{}{"sortBy": "deadline"},
		}

		req, err := queries.BuildQuery(nil, eq)
		require.NoError(t, err)

		decoded := decodeQueryBody(t, req)
		sorts := decoded["sort"].([]interface{})
		require.Len(t, sorts, 1)
		assert.Equal(t, "asc", sorts[0].(map[string]interface{})["deadline"])
	})

	t.Run("pagination bounds applied to request", func(t *testing.T) {
		eq := queries.ElasticsearchQuery{
			Index:     "funding-programs",
			QueryType: "program_search",
			Filters:   map[string]interface{}{},
		}
		eq.Pagination.From = 10
		eq.Pagination.Size = 50

		req, err := queries.BuildQuery(nil, eq)
		require.NoError(t, err)

		assert.Equal(t, 10, *req.From)
		assert.Equal(t, 50, *req.Size)
	})

	t.Run("missing index rejected", func(t *testing.T) {
		eq := queries.ElasticsearchQuery{
			QueryType: "program_search",
			Filters:   map[string]interface{}{},
		}

		_, err := queries.BuildQuery(nil, eq)
		assert.ErrorIs(t, err, queries.ErrMissingIndex)
	})

	t.Run("unknown query type rejected", func(t *testing.T) {
		eq := queries.ElasticsearchQuery{
			Index:     "funding-programs",
			QueryType: "ministry_bulletin",
			Filters:   map[string]interface{}{},
		}

		_, err := queries.BuildQuery(nil, eq)
		assert.ErrorIs(t, err, queries.ErrUnknownQueryType)
	})
}

func TestBuildQuery_RelatedPrograms(t *testing.T) {
	t.Run("match_none without program id", func(t *testing.T) {
		eq := queries.ElasticsearchQuery{
			Index:     "funding-programs",
			QueryType: "related_programs",
			Filters:   map[string]interface{}{},
		}

		req, err := queries.BuildQuery(nil, eq)
		require.NoError(t, err)

		decoded := decodeQueryBody(t, req)
		assert.Contains(t, decoded["query"].(map[string]interface{}), "match_none")
	})

	t.Run("more_like_this anchored on the program document", func(t *testing.T) {
		eq := queries.ElasticsearchQuery{
			Index:     "funding-programs",
			QueryType: "related_programs",
			Filters:   map[string]interface{}{},
			ProgramID: "prog-001",
		}

		req, err := queries.BuildQuery(nil, eq)
		require.NoError(t, err)

		decoded := decodeQueryBody(t, req)
		mlt := decoded["query"].(map[string]interface{})["more_like_this"].(map[string]interface{})
		assert.Contains(t, mlt["fields"], "title")

		like := mlt["like"].([]interface{})
		require.Len(t, like, 1)
		assert.Equal(t, "prog-001", like[0].(map[string]interface{})["_id"])
	})
}
