package quality

// fallbackOrder 降级查找顺序（高保真优先）
var fallbackOrder = []Tier{TierFLAC24, TierFLAC, Tier320k, Tier192k, Tier128k}

// DefaultTier 提供方未声明任何音质时使用
const DefaultTier = Tier128k

// Negotiate 为请求音质选出提供方可用的音质
//
// 顺序：规范标签命中 -> 别名表命中 -> 固定降级顺序 -> 集合最低等级 -> 128k。
// 对非空集合，返回值一定属于该集合。
func Negotiate(requested string, available TierSet) Tier {
	if t, ok := ParseTier(requested); ok && available.Contains(t) {
		return t
	}

	if t, ok := Alias(requested); ok && available.Contains(t) {
		return t
	}

	for _, t := range fallbackOrder {
		if available.Contains(t) {
			return t
		}
	}

	if lowest := available.Lowest(); lowest != TierUnknown {
		return lowest
	}
	return DefaultTier
}
