package codeblock

import (
	"strings"
)

// highlighterOverrides maps note languages to highlighter lexer names
// where the two vocabularies differ
var highlighterOverrides = map[string]string{
	"":        "plaintext",
	"text":    "plaintext",
	"txt":     "plaintext",
	"plain":   "plaintext",
	"js":      "javascript",
	"mjs":     "javascript",
	"jsx":     "react",
	"ts":      "typescript",
	"tsx":     "tsx",
	"py":      "python",
	"py3":     "python",
	"rb":      "ruby",
	"golang":  "go",
	"sh":      "bash",
	"shell":   "bash",
	"zsh":     "bash",
	"console": "bash",
	"yml":     "yaml",
	"md":      "markdown",
	"c++":     "cpp",
	"cs":      "csharp",
	"kt":      "kotlin",
	"rs":      "rust",
	"ps1":     "powershell",
	"qa":      "plaintext",
}

// HighlighterLanguage maps a model language to the highlighter's name.
// Unknown languages pass through lowercased.
func HighlighterLanguage(language string) string {
	key := strings.ToLower(strings.TrimSpace(language))
	if mapped, ok := highlighterOverrides[key]; ok {
		return mapped
	}
	return key
}

// PickerLanguages is the ordered list offered by the language picker
var PickerLanguages = []string{
	"text", "go", "python", "javascript", "typescript", "bash",
	"rust", "java", "c", "cpp", "sql", "yaml", "json", "html", "css",
}

// NextLanguage returns the picker entry after current, wrapping around.
// A language not in the picker starts the cycle from the first entry.
func NextLanguage(current string) string {
	key := HighlighterLanguage(current)
	for i, lang := range PickerLanguages {
		if HighlighterLanguage(lang) == key {
			return PickerLanguages[(i+1)%len(PickerLanguages)]
		}
	}
	return PickerLanguages[0]
}
