package division

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/agentic-research/divtree/internal/logger"
)

// Missing is shown for divisions that carry no usable name.
const Missing = "MISSING"

// DefaultLocale is the locale looked up in Names.Common.
const DefaultLocale = "en"

// Names is the multi-locale name structure of a division.
//
// Common is always a real mapping once decoded, whatever shape the source
// used (see UnmarshalJSON).
type Names struct {
	Primary string            `json:"primary,omitempty"`
	Common  map[string]string `json:"common,omitempty"`
}

// Lookup returns the localized name for locale.
func (n *Names) Lookup(locale string) (string, bool) {
	if n == nil || n.Common == nil {
		return "", false
	}
	v, ok := n.Common[locale]
	return v, ok
}

// ParseNames decodes a names column. Empty input and JSON null yield nil.
func ParseNames(data []byte) (*Names, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	var n Names
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

type rawNames struct {
	Primary *string         `json:"primary"`
	Common  json.RawMessage `json:"common"`
}

// UnmarshalJSON accepts "common" as a mapping ({"en":"USA"}), as parallel
// key/value sequences ({"key":["en"],"value":["USA"]}) or as a list of
// {"key","value"} pairs.
func (n *Names) UnmarshalJSON(data []byte) error {
	var raw rawNames
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode names: %w", err)
	}
	if raw.Primary != nil {
		n.Primary = *raw.Primary
	}
	common, err := decodeCommon(raw.Common)
	if err != nil {
		return fmt.Errorf("decode names.common: %w", err)
	}
	n.Common = common
	return nil
}

func decodeCommon(data json.RawMessage) (map[string]string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	switch data[0] {
	case '[':
		var pairs []struct {
			Key   *string `json:"key"`
			Value *string `json:"value"`
		}
		if err := json.Unmarshal(data, &pairs); err != nil {
			return nil, err
		}
		m := make(map[string]string, len(pairs))
		for _, p := range pairs {
			if p.Key == nil || p.Value == nil {
				continue
			}
			putFirst(m, *p.Key, *p.Value)
		}
		return m, nil

	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(data, &obj); err != nil {
			return nil, err
		}
		if keys, values, ok := parallel(obj); ok {
			m := make(map[string]string, len(keys))
			for i := 0; i < len(keys) && i < len(values); i++ {
				if keys[i] == nil || values[i] == nil {
					continue
				}
				putFirst(m, *keys[i], *values[i])
			}
			return m, nil
		}
		m := make(map[string]string, len(obj))
		for k, v := range obj {
			var s *string
			if err := json.Unmarshal(v, &s); err != nil {
				return nil, fmt.Errorf("locale %q: %w", k, err)
			}
			if s != nil {
				m[k] = *s
			}
		}
		return m, nil
	}
	return nil, fmt.Errorf("unexpected common names %.20q", data)
}

// parallel reports whether obj is the {"key": [...], "value": [...]} form.
func parallel(obj map[string]json.RawMessage) (keys, values []*string, ok bool) {
	if len(obj) != 2 {
		return nil, nil, false
	}
	k, hasKey := obj["key"]
	v, hasValue := obj["value"]
	if !hasKey || !hasValue {
		return nil, nil, false
	}
	if json.Unmarshal(k, &keys) != nil || json.Unmarshal(v, &values) != nil {
		return nil, nil, false
	}
	return keys, values, true
}

func putFirst(m map[string]string, k, v string) {
	if _, dup := m[k]; !dup {
		m[k] = v
	}
}

// Resolver derives display names. The zero value resolves DefaultLocale and
// logs anomalies to the process logger.
type Resolver struct {
	Locale string
	Logger *slog.Logger
}

// DefaultResolver is used by divisions created without WithResolver.
var DefaultResolver = &Resolver{Locale: DefaultLocale}

// NewResolver returns a resolver for locale; an empty locale means DefaultLocale.
func NewResolver(locale string, log *slog.Logger) *Resolver {
	return &Resolver{Locale: locale, Logger: log}
}

// Resolve picks the localized common name, then the primary name, then
// Missing. It never fails; anomalies are logged against id.
func (r *Resolver) Resolve(id string, n *Names) string {
	if n == nil {
		r.logger().Warn("division has no names", "id", id)
		return Missing
	}
	locale := r.locale()
	if v, ok := n.Lookup(locale); ok && v != "" {
		return v
	}
	if n.Primary != "" {
		return n.Primary
	}
	r.logger().Warn("division has no usable name", "id", id, "locale", locale)
	return Missing
}

// ResolveName resolves n with DefaultResolver.
func ResolveName(n *Names) string {
	return DefaultResolver.Resolve("", n)
}

func (r *Resolver) locale() string {
	if r == nil || r.Locale == "" {
		return DefaultLocale
	}
	return r.Locale
}

func (r *Resolver) logger() *slog.Logger {
	if r == nil || r.Logger == nil {
		return logger.L()
	}
	return r.Logger
}
