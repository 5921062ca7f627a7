package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// WalletProfile is the opaque profile document returned by the upstream
// wallet collaborator. Its shape varies by provider: balance may appear
// nested under userData or at the root, as a number or a numeric string.
type WalletProfile map[string]any

// balancePaths is the authoritative priority order for locating a usable
// balance inside a profile document.
var balancePaths = [][]string{
	{"userData", "realBalance"},
	{"userData", "balance"},
	{"realBalance"},
	{"balance"},
}

// ExtractBalance resolves the balance from a profile document, in
// currency units. The first present value coercible to a finite number
// wins; absent or malformed values degrade to 0. Total and side-effect
// free: malformed input never panics.
func ExtractBalance(profile WalletProfile) float64 {
	if profile == nil {
		return 0
	}
	for _, path := range balancePaths {
		node := any(profile)
		found := true
		for _, key := range path {
			m, ok := node.(map[string]any)
			if !ok {
				if wp, okWP := node.(WalletProfile); okWP {
					m = map[string]any(wp)
				} else {
					found = false
					break
				}
			}
			node, ok = m[key]
			if !ok {
				found = false
				break
			}
		}
		if !found {
			continue
		}
		if v, ok := coerceFinite(node); ok {
			return v
		}
	}
	return 0
}

// coerceFinite converts a JSON-decoded value to a finite float64.
func coerceFinite(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, isFinite(n)
	case float32:
		return float64(n), isFinite(float64(n))
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil && isFinite(f)
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil && isFinite(f)
	}
	return 0, false
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
