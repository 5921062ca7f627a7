package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractBalance_PriorityOrder(t *testing.T) {
	tests := []struct {
		name    string
		profile WalletProfile
		want    float64
	}{
		{
			name:    "nested realBalance wins over nested balance",
			profile: WalletProfile{"userData": map[string]any{"balance": 80.0, "realBalance": 125.55}},
			want:    125.55,
		},
		{
			name:    "nested balance when realBalance absent",
			profile: WalletProfile{"userData": map[string]any{"balance": 80.0}},
			want:    80,
		},
		{
			name:    "root realBalance when userData absent",
			profile: WalletProfile{"realBalance": 12.5, "balance": 99.0},
			want:    12.5,
		},
		{
			name:    "root balance as last resort",
			profile: WalletProfile{"balance": 42.0},
			want:    42,
		},
		{
			name:    "nested wins over root",
			profile: WalletProfile{"balance": 99.0, "userData": map[string]any{"balance": 10.0}},
			want:    10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractBalance(tt.profile))
		})
	}
}

func TestExtractBalance_Coercion(t *testing.T) {
	tests := []struct {
		name    string
		profile WalletProfile
		want    float64
	}{
		{"numeric string parsed", WalletProfile{"userData": map[string]any{"realBalance": "125.55"}}, 125.55},
		{"garbage string degrades to zero", WalletProfile{"userData": map[string]any{"balance": "not-a-number"}}, 0},
		{"empty string degrades to zero", WalletProfile{"balance": ""}, 0},
		{"NaN degrades to zero", WalletProfile{"balance": math.NaN()}, 0},
		{"infinity degrades to zero", WalletProfile{"balance": math.Inf(1)}, 0},
		{"boolean degrades to zero", WalletProfile{"balance": true}, 0},
		{"malformed slot skipped in favor of next", WalletProfile{"userData": map[string]any{"realBalance": "junk", "balance": 50.0}}, 50},
		{"empty profile", WalletProfile{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractBalance(tt.profile))
		})
	}
}

func TestExtractBalance_NilProfile(t *testing.T) {
	assert.Equal(t, float64(0), ExtractBalance(nil))
}

func TestExtractBalance_UserDataNotAMap(t *testing.T) {
	assert.Equal(t, float64(0), ExtractBalance(WalletProfile{"userData": "oops"}))
}
