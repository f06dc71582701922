// internal/workers/matching/parse-match-request/handler_test.go
package parsematchrequest

import (
	"context"
	"testing"

	"grantmatch-workers/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return LoadConfig()
}

type testLogger struct {
	t *testing.T
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl
}

func newTestLogger(t *testing.T) logger.Logger {
	return &testLogger{t: t}
}

func newTestHandler(t *testing.T) *Handler {
	return NewHandler(createTestConfig(), newTestLogger(t))
}

// ==========================
// Default Tests
// ==========================

func TestHandler_Execute_AppliesDefaults(t *testing.T) {
	handler := newTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		OrganizationID: "org-001",
	})

	require.NoError(t, err)
	assert.Equal(t, "org-001", output.OrganizationID)
	assert.Equal(t, 3, output.Limit)
	assert.Equal(t, 45, output.MinimumScore)
	assert.False(t, output.IncludeExpired)
	assert.Empty(t, output.Keywords)
	assert.Empty(t, output.DroppedFields)
}

func TestHandler_Execute_RequiresOrganizationID(t *testing.T) {
	handler := newTestHandler(t)

	for _, orgID := range []string{"", "   "} {
		output, err := handler.Execute(context.Background(), &Input{OrganizationID: orgID})
		assert.Nil(t, output)
		assert.ErrorIs(t, err, ErrInvalidMatchRequest)
	}
}

// ==========================
// Numeric Coercion Tests
// ==========================

func TestHandler_Execute_CoercesLimit(t *testing.T) {
	handler := newTestHandler(t)

	tests := []struct {
		name          string
		limit         interface{}
		expectedLimit int
		expectDropped bool
	}{
		{
			name:          "json number passes through",
			limit:         float64(10),
			expectedLimit: 10,
		},
		{
			name:          "numeric string is parsed",
			limit:         " 7 ",
			expectedLimit: 7,
		},
		{
			name:          "zero from an empty form field falls back to the default",
			limit:         float64(0),
			expectedLimit: 3,
		},
		{
			name:          "negative falls back to the default",
			limit:         float64(-5),
			expectedLimit: 3,
		},
		{
			name:          "oversized request is clamped to the cap",
			limit:         float64(100),
			expectedLimit: 45,
		},
		{
			name:          "unparseable string is dropped",
			limit:         "plenty",
			expectedLimit: 3,
			expectDropped: true,
		},
		{
			name:          "wrong type is dropped",
			limit:         true,
			expectedLimit: 3,
			expectDropped: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := handler.Execute(context.Background(), &Input{
				OrganizationID: "org-001",
				Limit:          tt.limit,
			})

			require.NoError(t, err)
			assert.Equal(t, tt.expectedLimit, output.Limit)
			if tt.expectDropped {
				assert.Contains(t, output.DroppedFields, "limit")
			} else {
				assert.NotContains(t, output.DroppedFields, "limit")
			}
		})
	}
}

func TestHandler_Execute_ClampsMinimumScore(t *testing.T) {
	handler := newTestHandler(t)

	tests := []struct {
		name          string
		minimumScore  interface{}
		expectedScore int
		expectDropped bool
	}{
		{name: "in-range number", minimumScore: float64(60), expectedScore: 60},
		{name: "numeric string", minimumScore: "75", expectedScore: 75},
		{name: "negative clamps to zero", minimumScore: float64(-10), expectedScore: 0},
		{name: "over a hundred clamps to the ceiling", minimumScore: float64(150), expectedScore: 100},
		{name: "unparseable is dropped", minimumScore: "high", expectedScore: 45, expectDropped: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := handler.Execute(context.Background(), &Input{
				OrganizationID: "org-001",
				MinimumScore:   tt.minimumScore,
			})

			require.NoError(t, err)
			assert.Equal(t, tt.expectedScore, output.MinimumScore)
			if tt.expectDropped {
				assert.Contains(t, output.DroppedFields, "minimumScore")
			}
		})
	}
}

// ==========================
// Flag Coercion Tests
// ==========================

func TestHandler_Execute_CoercesIncludeExpired(t *testing.T) {
	handler := newTestHandler(t)

	tests := []struct {
		name           string
		includeExpired interface{}
		expected       bool
		expectDropped  bool
	}{
		{name: "native bool", includeExpired: true, expected: true},
		{name: "string true", includeExpired: "true", expected: true},
		{name: "string one", includeExpired: "1", expected: true},
		{name: "number one", includeExpired: float64(1), expected: true},
		{name: "string false", includeExpired: "false", expected: false},
		{name: "free text is dropped", includeExpired: "yes", expected: false, expectDropped: true},
		{name: "arbitrary number is dropped", includeExpired: float64(2), expected: false, expectDropped: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := handler.Execute(context.Background(), &Input{
				OrganizationID: "org-001",
				IncludeExpired: tt.includeExpired,
			})

			require.NoError(t, err)
			assert.Equal(t, tt.expected, output.IncludeExpired)
			if tt.expectDropped {
				assert.Contains(t, output.DroppedFields, "includeExpired")
			}
		})
	}
}

// ==========================
// Keyword Normalization Tests
// ==========================

func TestHandler_Execute_NormalizesKeywords(t *testing.T) {
	handler := newTestHandler(t)

	tests := []struct {
		name             string
		keywords         interface{}
		expectedKeywords []string
		expectDropped    bool
	}{
		{
			name:             "list is normalized and de-duplicated",
			keywords:         []interface{}{"AI ", "스마트 팩토리", "ai"},
			expectedKeywords: []string{"ai", "스마트팩토리"},
		},
		{
			name:             "comma-separated string is split",
			keywords:         "바이오, 로봇",
			expectedKeywords: []string{"바이오", "로봇"},
		},
		{
			name:             "non-string entries are reported, usable ones kept",
			keywords:         []interface{}{"로봇", float64(42)},
			expectedKeywords: []string{"로봇"},
			expectDropped:    true,
		},
		{
			name:          "wrong type is dropped entirely",
			keywords:      float64(42),
			expectDropped: true,
		},
		{
			name:     "blank entries vanish",
			keywords: []interface{}{"  ", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := handler.Execute(context.Background(), &Input{
				OrganizationID: "org-001",
				Keywords:       tt.keywords,
			})

			require.NoError(t, err)
			assert.Equal(t, tt.expectedKeywords, output.Keywords)
			if tt.expectDropped {
				assert.Contains(t, output.DroppedFields, "keywords")
			} else {
				assert.NotContains(t, output.DroppedFields, "keywords")
			}
		})
	}
}

func TestHandler_Execute_TrimsCategory(t *testing.T) {
	handler := newTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		OrganizationID: "org-001",
		Category:       " 제조업 ",
	})

	require.NoError(t, err)
	assert.Equal(t, "제조업", output.Category)
}
