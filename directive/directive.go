// Package directive recognizes embedded "save:" commands in model-generated
// text, extracts their payloads, and produces the text with the command
// spans removed.
//
// Four surface forms are recognized:
//
//	save: (short memory text)
//	save: [short memory text]
//	save: {"memory":"...","keywords":"a,b","always":true}
//	save: rest of the line
//
// Each occurrence may be followed by [keywords=...] and [always=...]
// annotations, which are folded into the payload when the payload itself
// did not specify them.
package directive

import (
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"sort"
	"strings"

	"github.com/Chris4081/memauto-go-sdk/core"
)

// Patterns are ordered most-specific first: the bare-line form would also
// match the region of a delimited form, so delimited matches claim their
// spans before the line form runs.
var savePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)\bsave\s*:\s*\((.*?)\)\s*`),
	regexp.MustCompile(`(?is)\bsave\s*:\s*\[(.*?)\]\s*`),
	regexp.MustCompile(`(?is)\bsave\s*:\s*(\{.*?\})\s*`),
	regexp.MustCompile(`(?is)\bsave\s*:\s*(.+?)(?:\n|$)`),
}

// annotation matches one trailing [keywords=...] or [always=...] bracket
// anchored at the current cut position.
var annotation = regexp.MustCompile(`(?i)^[ \t]*\[\s*(keywords|always)\s*=\s*([^\]]+)\]`)

type span struct {
	start, end int
	raw        string
}

func overlaps(a, b span) bool {
	return a.start < b.end && b.start < a.end
}

// Process scans text for save directives. It returns the text with every
// directive span (and its trailing annotations) excised, plus the decoded
// payloads in document order. Payloads with empty memory text are dropped
// silently. When no directive is found, text is returned unchanged.
//
// Identical directive text can still yield identical payloads at distinct
// positions; the caller suppresses those by fingerprint.
func Process(text string) (string, []core.SavePayload) {
	var accepted []span
	for _, pat := range savePatterns {
		for _, loc := range pat.FindAllStringSubmatchIndex(text, -1) {
			cand := span{start: loc[0], end: loc[1], raw: text[loc[2]:loc[3]]}
			taken := false
			for _, sp := range accepted {
				if overlaps(cand, sp) {
					taken = true
					break
				}
			}
			if !taken {
				accepted = append(accepted, cand)
			}
		}
	}
	if len(accepted) == 0 {
		return text, nil
	}

	// Remove right-to-left so earlier span offsets stay valid.
	sort.SliceStable(accepted, func(a, b int) bool { return accepted[a].start > accepted[b].start })

	type decoded struct {
		start   int
		payload core.SavePayload
	}
	modified := text
	var results []decoded
	for _, sp := range accepted {
		// Fold immediately trailing annotation brackets into the payload
		// and into the removed region.
		cutEnd := sp.end
		var tailKeywords string
		var tailAlways *bool
		for {
			m := annotation.FindStringSubmatchIndex(modified[cutEnd:])
			if m == nil {
				break
			}
			name := strings.ToLower(modified[cutEnd+m[2] : cutEnd+m[3]])
			value := strings.TrimSpace(modified[cutEnd+m[4] : cutEnd+m[5]])
			switch name {
			case "keywords":
				tailKeywords = value
			case "always":
				v := core.TruthyString(value)
				tailAlways = &v
			}
			cutEnd += m[1]
		}

		pre, post := modified[:sp.start], modified[cutEnd:]
		// Collapse the blank line left behind by a directive on its own line.
		for strings.HasSuffix(pre, "\n") && strings.HasPrefix(post, "\n") {
			post = strings.TrimPrefix(post, "\n")
		}
		modified = pre + post

		payload, ok := ParsePayload(sp.raw)
		if !ok {
			continue
		}
		if payload.Keywords == "" {
			payload.Keywords = tailKeywords
		}
		if !payload.Always && tailAlways != nil {
			payload.Always = *tailAlways
		}
		results = append(results, decoded{start: sp.start, payload: payload})
	}

	sort.SliceStable(results, func(a, b int) bool { return results[a].start < results[b].start })
	payloads := make([]core.SavePayload, 0, len(results))
	for _, r := range results {
		payloads = append(payloads, r.payload)
	}
	return strings.TrimSpace(modified), payloads
}

// ParsePayload decodes one raw directive payload, trying in order: JSON
// object, key=value list, plain text. All three syntaxes collapse into the
// same canonical shape, so callers never branch on which form matched.
// Returns false for an empty memory text.
func ParsePayload(raw string) (core.SavePayload, bool) {
	raw = strings.TrimSpace(html.UnescapeString(raw))
	if raw == "" {
		return core.SavePayload{}, false
	}

	if strings.HasPrefix(raw, "{") && strings.HasSuffix(raw, "}") {
		if p, ok := parseObject(raw); ok {
			return p, p.Memory != ""
		}
		// Malformed JSON falls through to the other forms.
	}

	if strings.Contains(raw, "=") && strings.Contains(raw, ",") {
		if p, ok := parseKeyValue(raw); ok {
			return p, p.Memory != ""
		}
	}

	return core.SavePayload{Memory: raw}, true
}

func parseObject(raw string) (core.SavePayload, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return core.SavePayload{}, false
	}
	return core.SavePayload{
		Memory:   strings.TrimSpace(stringify(obj["memory"])),
		Keywords: strings.TrimSpace(stringify(obj["keywords"])),
		Always:   core.CoerceBool(obj["always"], false),
	}, true
}

func parseKeyValue(raw string) (core.SavePayload, bool) {
	kv := make(map[string]string)
	for _, part := range strings.Split(raw, ",") {
		k, v, found := strings.Cut(part, "=")
		if !found {
			continue
		}
		kv[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	_, hasMem := kv["memory"]
	_, hasKW := kv["keywords"]
	_, hasAlw := kv["always"]
	if !hasMem && !hasKW && !hasAlw {
		return core.SavePayload{}, false
	}
	return core.SavePayload{
		Memory:   kv["memory"],
		Keywords: kv["keywords"],
		Always:   core.TruthyString(kv["always"]),
	}, true
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
