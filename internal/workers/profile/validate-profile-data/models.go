// internal/workers/profile/validate-profile-data/models.go
package validateprofiledata

const (
	ProfileTypeOrganization = "organization"
	ProfileTypeProgram      = "program"
)

type Input struct {
	ProfileType string                 `json:"profileType"`
	Profile     map[string]interface{} `json:"profile"`
}

type Output struct {
	IsValid          bool                   `json:"isValid"`
	ProfileType      string                 `json:"profileType"`
	ValidatedProfile map[string]interface{} `json:"validatedProfile"`
	ValidationErrors []ValidationError      `json:"validationErrors"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Schemas in Go-loader form, one per profile type. Shape and enum
// constraints live here; ordering rules that span fields live in the
// handler's rule checks.
var organizationSchema = map[string]interface{}{
	"type":     "object",
	"required": []string{"id", "name", "type", "status"},
	"properties": map[string]interface{}{
		"id":   map[string]interface{}{"type": "string", "minLength": 1},
		"name": map[string]interface{}{"type": "string", "minLength": 1},
		"type": map[string]interface{}{
			"type": "string",
			"enum": []string{"COMPANY", "RESEARCH_INSTITUTE", "UNIVERSITY", "PUBLIC_INSTITUTION"},
		},
		"status": map[string]interface{}{
			"type": "string",
			"enum": []string{"ACTIVE", "INACTIVE", "PENDING"},
		},
		"profileCompleted": map[string]interface{}{"type": "boolean"},
		"industrySector":   map[string]interface{}{"type": "string"},
		"businessStructure": map[string]interface{}{
			"type": "string",
			"enum": []string{"CORPORATION", "SOLE_PROPRIETOR", "NONPROFIT"},
		},
		"establishedAt":            map[string]interface{}{"type": "string"},
		"technologyReadinessLevel": map[string]interface{}{"type": "integer", "minimum": 1, "maximum": 9},
		"targetResearchTrl":        map[string]interface{}{"type": "integer", "minimum": 1, "maximum": 9},
		"rndExperience":            map[string]interface{}{"type": "boolean"},
		"collaborationCount":       map[string]interface{}{"type": "integer", "minimum": 0},
		"keyTechnologies": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"researchFocusAreas": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"desiredConsortiumFields": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"desiredTechnologies": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"employeeCount": map[string]interface{}{
			"type": "string",
			"enum": []string{"UNDER_10", "FROM_10_TO_49", "FROM_50_TO_99", "FROM_100_TO_299", "OVER_300"},
		},
		"revenueRange": map[string]interface{}{
			"type": "string",
			"enum": []string{"UNDER_1B", "FROM_1B_TO_5B", "FROM_5B_TO_10B", "FROM_10B_TO_50B", "OVER_50B"},
		},
		"targetOrgScale": map[string]interface{}{
			"type": "string",
			"enum": []string{"UNDER_10", "FROM_10_TO_49", "FROM_50_TO_99", "FROM_100_TO_299", "OVER_300"},
		},
		"targetOrgRevenue": map[string]interface{}{
			"type": "string",
			"enum": []string{"UNDER_1B", "FROM_1B_TO_5B", "FROM_5B_TO_10B", "FROM_10B_TO_50B", "OVER_50B"},
		},
		"targetPartnerTrl": map[string]interface{}{"type": "integer", "minimum": 1, "maximum": 9},
		"expectedTrlLevel": map[string]interface{}{"type": "integer", "minimum": 1, "maximum": 9},
		"certifications": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"priorGrantWins": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"industryAwards": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"email": map[string]interface{}{"type": "string"},
		"phone": map[string]interface{}{"type": "string"},
	},
}

var programSchema = map[string]interface{}{
	"type":     "object",
	"required": []string{"id", "title", "status"},
	"properties": map[string]interface{}{
		"id":    map[string]interface{}{"type": "string", "minLength": 1},
		"title": map[string]interface{}{"type": "string", "minLength": 1},
		"status": map[string]interface{}{
			"type": "string",
			"enum": []string{"ACTIVE", "EXPIRED", "DRAFT", "SUSPENDED"},
		},
		"category":    map[string]interface{}{"type": "string"},
		"description": map[string]interface{}{"type": "string"},
		"keywords": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"deadline":         map[string]interface{}{"type": "string"},
		"applicationStart": map[string]interface{}{"type": "string"},
		"budgetAmount":     map[string]interface{}{"type": "integer", "minimum": 0},
		"minTrl":           map[string]interface{}{"type": "integer", "minimum": 1, "maximum": 9},
		"maxTrl":           map[string]interface{}{"type": "integer", "minimum": 1, "maximum": 9},
		"trlInferred":      map[string]interface{}{"type": "boolean"},
		"trlConfidence":    map[string]interface{}{"type": "number", "minimum": 0, "maximum": 1},
		"targetTypes": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "string",
				"enum": []string{"COMPANY", "RESEARCH_INSTITUTE", "UNIVERSITY", "PUBLIC_INSTITUTION"},
			},
		},
		"allowedBusinessStructures": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "string",
				"enum": []string{"CORPORATION", "SOLE_PROPRIETOR", "NONPROFIT"},
			},
		},
		"requiredCertifications": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"preferredCertifications": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"requiredMinEmployees":     map[string]interface{}{"type": "integer", "minimum": 0},
		"requiredMaxEmployees":     map[string]interface{}{"type": "integer", "minimum": 0},
		"requiredMinRevenue":       map[string]interface{}{"type": "integer", "minimum": 0},
		"requiredMaxRevenue":       map[string]interface{}{"type": "integer", "minimum": 0},
		"requiredInvestmentAmount": map[string]interface{}{"type": "integer", "minimum": 0},
		"requiredOperatingYears":   map[string]interface{}{"type": "integer", "minimum": 0},
		"maxOperatingYears":        map[string]interface{}{"type": "integer", "minimum": 0},
	},
}
