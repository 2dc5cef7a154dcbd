// Package quality 音质等级与协商
package quality

import (
	"sort"
	"strings"
)

// Tier 音质等级，数值越大音质越高
type Tier int

const (
	TierUnknown Tier = iota
	Tier128k
	Tier192k
	Tier320k
	TierFLAC
	TierFLAC24
	TierHiRes
	TierAtmos
	TierMaster
)

var tierNames = map[Tier]string{
	Tier128k:   "128k",
	Tier192k:   "192k",
	Tier320k:   "320k",
	TierFLAC:   "flac",
	TierFLAC24: "flac24bit",
	TierHiRes:  "hires",
	TierAtmos:  "atmos",
	TierMaster: "master",
}

var displayNames = map[Tier]string{
	Tier128k:   "128K",
	Tier192k:   "192K",
	Tier320k:   "320K",
	TierFLAC:   "FLAC",
	TierFLAC24: "24Bit",
	TierHiRes:  "Hi-Res",
	TierAtmos:  "Atmos",
	TierMaster: "Master",
}

// AllTiers 全部音质等级（低到高）
func AllTiers() []Tier {
	return []Tier{Tier128k, Tier192k, Tier320k, TierFLAC, TierFLAC24, TierHiRes, TierAtmos, TierMaster}
}

// String 规范标签，例如 "flac24bit"
func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return "unknown"
}

// DisplayName 展示名称，例如 "24Bit"
func (t Tier) DisplayName() string {
	if name, ok := displayNames[t]; ok {
		return name
	}
	return "Unknown"
}

// Valid 是否为已知等级
func (t Tier) Valid() bool {
	return t >= Tier128k && t <= TierMaster
}

// ParseTier 解析规范标签（忽略大小写与首尾空白）
func ParseTier(s string) (Tier, bool) {
	s = normalize(s)
	for t, name := range tierNames {
		if name == s {
			return t, true
		}
	}
	return TierUnknown, false
}

// aliases 厂商音质标签 -> 规范等级
var aliases = map[string]Tier{
	"128":      Tier128k,
	"standard": Tier128k,
	"low":      Tier128k,
	"192":      Tier192k,
	"higher":   Tier192k,
	"320":      Tier320k,
	"exhigh":   Tier320k,
	"hq":       Tier320k,
	"high":     Tier320k,
	"lossless": TierFLAC,
	"sq":       TierFLAC,
	"ape":      TierFLAC,
	"wav":      TierFLAC,
	"999":      TierFLAC,
	"24bit":    TierFLAC24,
	"flac24":   TierFLAC24,
	"hr":       TierFLAC24,
	"hi-res":   TierHiRes,
	"hires24":  TierHiRes,
	"sky":      TierAtmos,
	"dolby":    TierAtmos,
	"jyeffect": TierAtmos,
	"jymaster": TierMaster,

	"hi-res 24-bit lossless master": TierFLAC24,
}

// Alias 查询别名表
func Alias(s string) (Tier, bool) {
	t, ok := aliases[normalize(s)]
	return t, ok
}

// Lookup 先按规范标签解析，再查别名表
func Lookup(s string) (Tier, bool) {
	if t, ok := ParseTier(s); ok {
		return t, true
	}
	return Alias(s)
}

// Label 缓存键使用的请求音质标签：可识别时为规范标签，否则为小写原文
func Label(s string) string {
	if t, ok := Lookup(s); ok {
		return t.String()
	}
	return normalize(s)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// TierSet 有序去重的音质集合（低到高）
type TierSet []Tier

// NewTierSet 创建音质集合，忽略未知等级
func NewTierSet(tiers ...Tier) TierSet {
	seen := make(map[Tier]bool, len(tiers))
	set := make(TierSet, 0, len(tiers))
	for _, t := range tiers {
		if !t.Valid() || seen[t] {
			continue
		}
		seen[t] = true
		set = append(set, t)
	}
	sort.Slice(set, func(i, j int) bool { return set[i] < set[j] })
	return set
}

// Contains 是否包含
func (s TierSet) Contains(t Tier) bool {
	for _, v := range s {
		if v == t {
			return true
		}
	}
	return false
}

// Lowest 最低等级，空集合返回 TierUnknown
func (s TierSet) Lowest() Tier {
	if len(s) == 0 {
		return TierUnknown
	}
	return s[0]
}

// Highest 最高等级，空集合返回 TierUnknown
func (s TierSet) Highest() Tier {
	if len(s) == 0 {
		return TierUnknown
	}
	return s[len(s)-1]
}

// Strings 规范标签列表
func (s TierSet) Strings() []string {
	out := make([]string, len(s))
	for i, t := range s {
		out[i] = t.String()
	}
	return out
}
