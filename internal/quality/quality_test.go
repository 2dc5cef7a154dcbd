package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTier(t *testing.T) {
	for _, tier := range AllTiers() {
		got, ok := ParseTier(tier.String())
		require.True(t, ok, tier.String())
		assert.Equal(t, tier, got)
	}

	got, ok := ParseTier("  FLAC24BIT ")
	assert.True(t, ok)
	assert.Equal(t, TierFLAC24, got)

	_, ok = ParseTier("lossless")
	assert.False(t, ok)
}

func TestTier_Names(t *testing.T) {
	assert.Equal(t, "flac24bit", TierFLAC24.String())
	assert.Equal(t, "24Bit", TierFLAC24.DisplayName())
	assert.Equal(t, "Hi-Res", TierHiRes.DisplayName())
	assert.Equal(t, "unknown", TierUnknown.String())
	assert.False(t, TierUnknown.Valid())
}

func TestAlias(t *testing.T) {
	tests := []struct {
		label string
		want  Tier
	}{
		{"standard", Tier128k},
		{"higher", Tier192k},
		{"exhigh", Tier320k},
		{"Lossless", TierFLAC},
		{"SQ", TierFLAC},
		{"hi-res", TierHiRes},
		{"jymaster", TierMaster},
		{"sky", TierAtmos},
		{"dolby", TierAtmos},
		{"24bit", TierFLAC24},
		{"Hi-Res 24-bit lossless master", TierFLAC24},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := Alias(tt.label)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "flac", Label("FLAC"))
	assert.Equal(t, "flac", Label("lossless"))
	assert.Equal(t, "weird", Label(" Weird "))
}

func TestNewTierSet(t *testing.T) {
	set := NewTierSet(TierFLAC, Tier128k, TierFLAC, TierUnknown, Tier320k)
	assert.Equal(t, TierSet{Tier128k, Tier320k, TierFLAC}, set)
	assert.Equal(t, Tier128k, set.Lowest())
	assert.Equal(t, TierFLAC, set.Highest())
	assert.Equal(t, []string{"128k", "320k", "flac"}, set.Strings())
	assert.Equal(t, TierUnknown, TierSet{}.Lowest())
}

func TestNegotiate(t *testing.T) {
	upToFLAC := NewTierSet(Tier128k, Tier192k, Tier320k, TierFLAC)

	tests := []struct {
		name      string
		requested string
		available TierSet
		want      Tier
	}{
		{"exact match", "320k", upToFLAC, Tier320k},
		{"master falls back to flac", "master", upToFLAC, TierFLAC},
		{"alias match", "exhigh", upToFLAC, Tier320k},
		{"alias unavailable uses fallback order", "jymaster", upToFLAC, TierFLAC},
		{"unknown string", "whatever", upToFLAC, TierFLAC},
		{"fallback finds 128k", "master", NewTierSet(Tier128k), Tier128k},
		{"lowest when no fallback tier present", "128k", NewTierSet(TierAtmos, TierHiRes), TierHiRes},
		{"empty set defaults", "flac", TierSet{}, Tier128k},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Negotiate(tt.requested, tt.available))
		})
	}
}

func TestNegotiate_Total(t *testing.T) {
	requests := []string{"", "unknown", "HI-RES", "999", "Hi-Res 24-bit lossless master"}
	for _, tier := range AllTiers() {
		requests = append(requests, tier.String())
	}

	all := AllTiers()
	// every non-empty subset of the eight tiers
	for mask := 1; mask < 1<<len(all); mask++ {
		var tiers []Tier
		for i, tier := range all {
			if mask&(1<<i) != 0 {
				tiers = append(tiers, tier)
			}
		}
		set := NewTierSet(tiers...)

		for _, req := range requests {
			got := Negotiate(req, set)
			if !set.Contains(got) {
				t.Fatalf("Negotiate(%q, %v) = %v, not in set", req, set.Strings(), got)
			}
		}
	}
}
