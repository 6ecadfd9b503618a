package ai

import (
	_ "embed"
	"text/template"
)

//go:embed prompts/rephrase.md
var rephrasePromptRaw string

// RephraseTemplate is the parsed prompt template for tone rephrasing.
// Parsed once at package init; reused on every Rephrase call.
var RephraseTemplate = template.Must(template.New("rephrase").Parse(rephrasePromptRaw))
