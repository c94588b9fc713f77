package store

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/Chris4081/memauto-go-sdk/core"
)

// sanitize coerces raw file content into a usable document. Every field is
// validated independently; anything unrecognized or malformed falls back to
// its default instead of failing the whole load.
func sanitize(raw []byte) Document {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return Defaults()
	}

	doc := Defaults()
	doc.Version = coerceInt(m["version"], SchemaVersion)
	if doc.Version < 0 {
		doc.Version = SchemaVersion
	}

	doc.TimeContext = coerceBool(m["timecontext"], doc.TimeContext)
	doc.DateContext = coerceBool(m["datecontext"], doc.DateContext)
	doc.Debug = coerceBool(m["debug"], doc.Debug)
	doc.UILang = coerceLang(m["ui_lang"], doc.UILang)

	doc.MaxContextChars = coerceCount(m["max_context_chars"], doc.MaxContextChars)
	doc.MaxShowMemories = coerceCount(m["max_show_memories"], doc.MaxShowMemories)

	doc.InjectGuide = coerceBool(m["inject_guide"], doc.InjectGuide)
	doc.GuideLang = coerceLang(m["guide_lang"], doc.GuideLang)
	doc.GuideOnce = coerceBool(m["guide_once"], doc.GuideOnce)
	doc.GuideMode = coerceLang(m["guide_mode"], doc.GuideMode)
	doc.HintOnTriggers = coerceBool(m["hint_on_triggers"], doc.HintOnTriggers)
	doc.GuideTriggers = coerceStrings(m["guide_triggers"], doc.GuideTriggers)
	doc.GuideCustom = coerceStringMap(m["guide_custom"], doc.GuideCustom)

	doc.AllowModelSaves = coerceBool(m["allow_model_saves"], doc.AllowModelSaves)

	doc.Pairs = coercePairs(m["pairs"])
	return doc
}

func coerceBool(raw json.RawMessage, def bool) bool {
	if raw == nil {
		return def
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return def
	}
	return core.CoerceBool(v, def)
}

func coerceInt(raw json.RawMessage, def int) int {
	if raw == nil {
		return def
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return def
	}
	switch t := v.(type) {
	case float64:
		return int(t)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n
		}
	}
	return def
}

// coerceCount is coerceInt clamped to non-negative.
func coerceCount(raw json.RawMessage, def int) int {
	n := coerceInt(raw, def)
	if n < 0 {
		return def
	}
	return n
}

func coerceLang(raw json.RawMessage, def string) string {
	if raw == nil {
		return def
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return def
	}
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return def
	}
	return s
}

func coerceStrings(raw json.RawMessage, def []string) []string {
	if raw == nil {
		return def
	}
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return def
	}
	var out []string
	for _, it := range items {
		if s, ok := it.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	if out == nil {
		return def
	}
	return out
}

func coerceStringMap(raw json.RawMessage, def map[string]string) map[string]string {
	if raw == nil {
		return def
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil || len(m) == 0 {
		return def
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		if s, ok := v.(string); ok {
			out[strings.ToLower(k)] = s
		}
	}
	return out
}

type exactKey struct {
	memory   string
	keywords string
	always   bool
}

func coercePairs(raw json.RawMessage) []core.Entry {
	if raw == nil {
		return nil
	}
	var items []map[string]any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}

	var out []core.Entry
	seen := make(map[exactKey]bool)
	for _, it := range items {
		mem, _ := it["memory"].(string)
		mem = strings.TrimSpace(mem)
		if mem == "" {
			continue
		}
		kws, _ := it["keywords"].(string)
		kws = strings.TrimSpace(kws)
		alw := core.CoerceBool(it["always"], false)

		key := exactKey{memory: mem, keywords: kws, always: alw}
		if seen[key] {
			continue
		}
		seen[key] = true

		created, _ := it["created_at"].(string)
		out = append(out, core.Entry{
			Memory:    mem,
			Keywords:  kws,
			Always:    alw,
			CreatedAt: parseCreatedAt(created),
		})
	}
	return out
}

// parseCreatedAt accepts RFC 3339 as written by this implementation and the
// zone-less second-precision form older files carry; anything else gets the
// current time.
func parseCreatedAt(s string) time.Time {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.Local); err == nil {
		return t
	}
	return time.Now()
}
