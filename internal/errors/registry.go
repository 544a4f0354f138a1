package errors

import "sort"

// ErrorTemplate defines a registered error code.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Suggestion string
}

var registry = map[string]ErrorTemplate{
	// Hooks (U001-U009)
	"U001": {
		Category:   CategoryHook,
		Message:    "Timeout must be a non-negative duration",
		Suggestion: "Pass 0 to fire on the next tick, or a positive duration.",
	},
	"U002": {
		Category: CategorySWR,
		Message:  "Revalidation timed out",
	},
	"U003": {
		Category:   CategoryStorage,
		Message:    "Stored value could not be decoded",
		Suggestion: "Remove the key or write a JSON value of the hook's type.",
	},
	"U004": {
		Category: CategoryStorage,
		Message:  "Stored value could not be written",
	},
	"U005": {
		Category: CategorySWR,
		Message:  "Fetch failed",
	},

	// Configuration (U010-U019)
	"U010": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
	},
	"U011": {
		Category:   CategoryConfig,
		Message:    "Configuration file could not be parsed",
		Suggestion: "Check the file against the format its extension implies (.json, .toml, .yaml).",
	},
	"U012": {
		Category:   CategoryConfig,
		Message:    "Unknown storage driver",
		Suggestion: `Use one of "memory", "file", "s3" or "postgres".`,
	},

	// Transport (U020-U029)
	"U020": {
		Category: CategoryTransport,
		Message:  "Invalid client message",
	},
	"U021": {
		Category: CategoryTransport,
		Message:  "Upstream request failed",
	},
}

// GetAllCodes returns every registered code in ascending order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template registered for code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
