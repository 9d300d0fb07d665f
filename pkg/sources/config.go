package sources

import (
	"fmt"
	"maps"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/agentstation/congressmap/pkg/authority"
	"github.com/agentstation/congressmap/pkg/errors"
	"github.com/goccy/go-yaml"
)

// Config is the configuration slice handed to one collaborator.
type Config struct {
	// Series identifies the source and tags its warnings.
	Series string
	// Kind selects the collector; the lower-cased series when empty.
	Kind string
	// Priority is the default priority of events from this source.
	Priority *int
	// Role categorizes the source for evidence resolution.
	Role authority.Role
	// Trust overrides the role's default trust.
	Trust *authority.Trust
	// Timeout bounds the collaborator call; zero uses the default.
	Timeout time.Duration
	// Disabled sources are skipped.
	Disabled bool
	// Raw is the full configuration entry, including collector specific keys.
	Raw map[string]any
}

// Key returns the registry kind of the collector for this source.
func (c Config) Key() string {
	if c.Kind != "" {
		return normalizeKind(c.Kind)
	}
	return normalizeKind(c.Series)
}

// String returns a collector specific string setting.
func (c Config) String(key string) string {
	v, ok := c.Raw[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return fmt.Sprint(v)
}

// Value returns a collector specific setting as decoded.
func (c Config) Value(key string) (any, bool) {
	v, ok := c.Raw[key]
	return v, ok
}

// Clone returns a deep copy so collaborators cannot alter shared config.
func (c Config) Clone() Config {
	out := c
	if c.Priority != nil {
		p := *c.Priority
		out.Priority = &p
	}
	if c.Trust != nil {
		t := *c.Trust
		out.Trust = &t
	}
	out.Raw = cloneMap(c.Raw)
	return out
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := maps.Clone(m)
	for k, v := range out {
		switch t := v.(type) {
		case map[string]any:
			out[k] = cloneMap(t)
		case []any:
			s := make([]any, len(t))
			for i, item := range t {
				if mm, ok := item.(map[string]any); ok {
					s[i] = cloneMap(mm)
				} else {
					s[i] = item
				}
			}
			out[k] = s
		}
	}
	return out
}

// ParseConfigs decodes a sources document. YAML and JSON are both accepted.
// The document is either a list of entries or an object with a sources list.
func ParseConfigs(data []byte) ([]Config, []string, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, errors.WrapParse("yaml", "", err)
	}
	cfgs, warnings := NormalizeConfigs(doc)
	return cfgs, warnings, nil
}

// NormalizeConfigs converts a decoded sources document into configs.
// Entries that are not objects or have no series are skipped with a warning.
func NormalizeConfigs(doc any) ([]Config, []string) {
	if m, ok := asMap(doc); ok {
		doc = m["sources"]
	}
	list, ok := doc.([]any)
	if !ok {
		if doc == nil {
			return nil, nil
		}
		return nil, []string{"[sources] document has no sources list; nothing to collect"}
	}

	var cfgs []Config
	var warnings []string
	for i, item := range list {
		entry, ok := asMap(item)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("[sources] entry %d is not an object; skipped", i))
			continue
		}
		cfg, err := configFrom(entry)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("[sources] entry %d: %v; skipped", i, err))
			continue
		}
		cfgs = append(cfgs, cfg)
	}
	return cfgs, warnings
}

func configFrom(entry map[string]any) (Config, error) {
	series := scalar(entry["series"])
	if series == "" {
		return Config{}, fmt.Errorf("missing series")
	}
	cfg := Config{
		Series: series,
		Kind:   scalar(entry["kind"]),
		Raw:    entry,
	}
	if v, ok := entry["priority"]; ok && v != nil {
		p, ok := integer(v)
		if !ok {
			return Config{}, fmt.Errorf("priority %v is not an integer", v)
		}
		cfg.Priority = &p
	}
	if v, ok := entry["role"]; ok && v != nil {
		cfg.Role = authority.ParseRole(scalar(v))
	} else {
		cfg.Role = authority.RoleOfficial
	}
	if v, ok := entry["trust"]; ok && v != nil {
		n, ok := integer(v)
		if !ok {
			return Config{}, fmt.Errorf("trust %v is not an integer", v)
		}
		t := authority.ClampTrust(n)
		cfg.Trust = &t
	}
	if v, ok := entry["timeout"]; ok && v != nil {
		d, err := duration(v)
		if err != nil {
			return Config{}, err
		}
		cfg.Timeout = d
	}
	if v, ok := entry["enabled"].(bool); ok {
		cfg.Disabled = !v
	}
	return cfg, nil
}

func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func scalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func integer(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case uint64:
		if t > math.MaxInt32 {
			return 0, false
		}
		return int(t), true
	case float64:
		if t != math.Trunc(t) {
			return 0, false
		}
		return int(t), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil
	default:
		return 0, false
	}
}

// duration accepts Go duration strings or a number of seconds.
func duration(v any) (time.Duration, error) {
	if s, ok := v.(string); ok {
		d, err := time.ParseDuration(strings.TrimSpace(s))
		if err != nil {
			return 0, fmt.Errorf("timeout %q: %w", s, err)
		}
		return d, nil
	}
	if n, ok := integer(v); ok {
		return time.Duration(n) * time.Second, nil
	}
	return 0, fmt.Errorf("timeout %v is not a duration", v)
}
