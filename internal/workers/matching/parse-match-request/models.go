// internal/workers/matching/parse-match-request/models.go
package parsematchrequest

// Input mirrors what arrives from process forms and upstream systems,
// where numbers show up as strings and booleans as flags. Loose fields
// stay interface{} until coercion sorts them out.
type Input struct {
	OrganizationID string      `json:"organizationId"`
	Limit          interface{} `json:"limit,omitempty"`
	MinimumScore   interface{} `json:"minimumScore,omitempty"`
	IncludeExpired interface{} `json:"includeExpired,omitempty"`
	Keywords       interface{} `json:"keywords,omitempty"`
	Category       string      `json:"category,omitempty"`
}

// Output is the cleaned request in the shape the matching workers
// consume. DroppedFields names inputs that were present but not
// usable, so process authors can see what got ignored.
type Output struct {
	OrganizationID string   `json:"organizationId"`
	Limit          int      `json:"limit"`
	MinimumScore   int      `json:"minimumScore"`
	IncludeExpired bool     `json:"includeExpired"`
	Keywords       []string `json:"keywords,omitempty"`
	Category       string   `json:"category,omitempty"`
	DroppedFields  []string `json:"droppedFields,omitempty"`
}
