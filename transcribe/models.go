package transcribe

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// RecommendedModel is flagged in the catalog as the suggested default
const RecommendedModel = "medium"

// recommendedMarker is appended to a recommended model's hint
const recommendedMarker = " · 👍 recommended"

const fallbackDescription = "Balanced performance"

// DefaultModels are offered when WHISPER_MODELS is unset
var DefaultModels = []string{
	"tiny",
	"base",
	"small",
	"medium",
	"large-v2",
	"large-v3",
}

var modelDescriptions = map[string]string{
	"tiny":     "Fastest speed · lowest accuracy",
	"base":     "Very fast speed · moderate accuracy",
	"small":    "Fast speed · good accuracy",
	"medium":   "Moderate speed · high accuracy",
	"large-v2": "Slow speed · very high accuracy",
	"large-v3": "Slowest speed · highest accuracy",
}

// ModelOption is an entry of the model selector together with the metadata
// the hint line is rendered from.
type ModelOption struct {
	Value string
	Label string
	Hint  string

	// Recommended is "True" or "False", fixed when the catalog is built.
	Recommended string

	// Default marks the server's default model
	Default bool
}

// BuildModelCatalog returns the selector options. An empty choices list
// falls back to DefaultModels; the default model is the last choice unless
// given, and is appended when it is not among the choices.
func BuildModelCatalog(choices []string, defaultModel string) []ModelOption {
	if len(choices) == 0 {
		choices = DefaultModels
	}
	names := make([]string, 0, len(choices)+1)
	names = append(names, choices...)

	if defaultModel == "" {
		defaultModel = names[len(names)-1]
	}
	if !containsString(names, defaultModel) {
		names = append(names, defaultModel)
	}

	title := cases.Title(language.English)
	options := make([]ModelOption, 0, len(names))
	for _, name := range names {
		desc := DescribeModel(name)
		pretty := title.String(strings.ReplaceAll(name, "-", " "))
		options = append(options, ModelOption{
			Value:       name,
			Label:       pretty + " · " + desc,
			Hint:        desc,
			Recommended: recommendedAttr(name == RecommendedModel),
			Default:     name == defaultModel,
		})
	}
	return options
}

// DescribeModel returns the speed/accuracy description for a model
func DescribeModel(name string) string {
	if desc, ok := modelDescriptions[name]; ok {
		return desc
	}
	return fallbackDescription
}

// DefaultModelIndex returns the index of the default option, or 0
func DefaultModelIndex(options []ModelOption) int {
	for i, o := range options {
		if o.Default {
			return i
		}
	}
	return 0
}

// ModelIndex returns the index of the option with the given value, or -1
func ModelIndex(options []ModelOption, value string) int {
	for i, o := range options {
		if o.Value == value {
			return i
		}
	}
	return -1
}

// ModelHint renders the hint line for the selected option. It reports false
// when the option carries no hint, in which case the caller leaves the
// current hint in place.
func ModelHint(option ModelOption) (string, bool) {
	if option.Hint == "" {
		return "", false
	}
	if option.Recommended == "True" {
		return option.Hint + recommendedMarker, true
	}
	return option.Hint, true
}

func recommendedAttr(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
