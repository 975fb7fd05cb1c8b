// Package importer parses external card JSON into drafts and serializes
// library data back out to portable JSON.
package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/oxdrill/oxdrill-api/models"
)

// ErrMalformedImport reports an import payload whose shape cannot be used.
var ErrMalformedImport = errors.New(`importer: expected a JSON array [{"prompt","answer","explanation"}] or an object {"cards":[...]}`)

// Accepted alias keys per logical field, tried in priority order. These
// cover every historical export shape the app has produced.
var (
	promptAliases      = []string{"prompt", "q", "question"}
	answerAliases      = []string{"answer", "a", "ans", "correct"}
	explanationAliases = []string{"explanation", "exp", "commentary", "reason"}
	tagAliases         = []string{"tags", "tag"}
)

// resolveAlias returns the first present value among names, in order.
func resolveAlias(obj map[string]any, names []string) (any, bool) {
	for _, name := range names {
		if v, ok := obj[name]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func resolveString(obj map[string]any, names []string) string {
	v, ok := resolveAlias(obj, names)
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		// JSON numbers; "0" as an answer means O.
		return strings.TrimSpace(fmt.Sprintf("%v", s))
	default:
		return ""
	}
}

func resolveTags(obj map[string]any) []string {
	v, ok := resolveAlias(obj, tagAliases)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case []any:
		tags := make([]string, 0, len(t))
		for _, e := range t {
			tags = append(tags, fmt.Sprintf("%v", e))
		}
		return tags
	case string:
		return strings.Split(t, ",")
	}
	return nil
}

// ParseExternalCards accepts either a bare array of card-like objects or
// an object wrapping such an array under "cards". Elements missing a
// non-empty prompt or a resolvable O/X answer are silently dropped; the
// whole import fails only when the top-level shape is wrong or nothing
// survives filtering.
func ParseExternalCards(raw []byte) ([]models.CardDraft, error) {
	var top any
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedImport, err)
	}

	var arr []any
	switch t := top.(type) {
	case []any:
		arr = t
	case map[string]any:
		wrapped, _ := t["cards"].([]any)
		if wrapped == nil {
			return nil, ErrMalformedImport
		}
		arr = wrapped
	default:
		return nil, ErrMalformedImport
	}

	drafts := make([]models.CardDraft, 0, len(arr))
	for _, el := range arr {
		obj, ok := el.(map[string]any)
		if !ok {
			continue
		}
		prompt := resolveString(obj, promptAliases)
		answer := models.NormalizeAnswer(resolveString(obj, answerAliases))
		if prompt == "" || answer == "" {
			continue
		}
		drafts = append(drafts, models.CardDraft{
			Prompt:      prompt,
			Answer:      string(answer),
			Explanation: resolveString(obj, explanationAliases),
			Tags:        models.CleanTags(resolveTags(obj)),
		})
	}
	if len(drafts) == 0 {
		return nil, fmt.Errorf("%w: no importable cards (prompt and answer are required)", ErrMalformedImport)
	}
	return drafts, nil
}
