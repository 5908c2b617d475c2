package recipe

import (
	"fmt"
	"math"
	"strings"
)

// IDSet 食材 id 集合
type IDSet map[string]struct{}

// NewIDSet 由 id 列表建立集合
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has 檢查集合是否包含 id
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add 加入 id
func (s IDSet) Add(id string) {
	s[id] = struct{}{}
}

// NormalizeIngredientName 將食材名稱轉為小寫並以底線取代空白
func NormalizeIngredientName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

var methodComplexity = map[CookingMethod]float64{
	MethodRaw:         0.1,
	MethodBoiling:     0.2,
	MethodSteaming:    0.3,
	MethodSauteing:    0.4,
	MethodFrying:      0.5,
	MethodRoasting:    0.6,
	MethodBaking:      0.6,
	MethodGrilling:    0.7,
	MethodBraising:    0.8,
	MethodSlowCooking: 0.5,
}

// CalculateRecipeComplexity 依食材、步驟、烹調方式與器具估算 0~1 的複雜度
func CalculateRecipeComplexity(r *Recipe) float64 {
	score := math.Min(float64(len(r.Ingredients))/20, 1) * 0.3
	score += math.Min(float64(len(r.Instructions))/15, 1) * 0.3

	if len(r.CookingMethods) > 0 {
		total := 0.0
		for _, m := range r.CookingMethods {
			w, ok := methodComplexity[m]
			if !ok {
				w = 0.5
			}
			total += w
		}
		score += total / float64(len(r.CookingMethods)) * 0.25
	}

	score += math.Min(float64(len(r.EquipmentNeeded))/10, 1) * 0.15
	return clamp01(score)
}

// FormatCookingTime 將分鐘數格式化為可讀字串
func FormatCookingTime(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d minutes", minutes)
	}
	if minutes < 120 {
		hours := minutes / 60
		rest := minutes % 60
		if rest == 0 {
			return fmt.Sprintf("%d hour", hours)
		}
		return fmt.Sprintf("%d hour %d minutes", hours, rest)
	}
	return fmt.Sprintf("%d hours", minutes/60)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func lowerSet(values []string) IDSet {
	s := make(IDSet, len(values))
	for _, v := range values {
		s.Add(strings.ToLower(v))
	}
	return s
}

// subsetOf 檢查 a 的每個元素都在 b 中
func subsetOf(a, b IDSet) bool {
	for k := range a {
		if !b.Has(k) {
			return false
		}
	}
	return true
}

func intersects(a, b IDSet) bool {
	for k := range a {
		if b.Has(k) {
			return true
		}
	}
	return false
}

func appendUnique(list []string, seen IDSet, id string) []string {
	if seen.Has(id) {
		return list
	}
	seen.Add(id)
	return append(list, id)
}
