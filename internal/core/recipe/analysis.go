package recipe

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"flavorgraph/internal/pkg/common"
)

var basicStaples = NewIDSet("salt", "pepper", "olive_oil", "onion", "garlic")

// missingTally 缺少食材的出現次數，保留第一次出現的順序
type missingTally struct {
	order []string
	count map[string]int
}

func tallyMissing(matches []RecipeMatch) missingTally {
	t := missingTally{count: make(map[string]int)}
	for _, m := range matches {
		seen := IDSet{}
		for _, id := range m.MissingIngredients {
			if seen.Has(id) {
				continue
			}
			seen.Add(id)
			if _, exists := t.count[id]; !exists {
				t.order = append(t.order, id)
			}
			t.count[id]++
		}
	}
	return t
}

// mostCommon 依次數由高到低，同次數保留出現順序
func (t missingTally) mostCommon(n int) []string {
	ids := append([]string(nil), t.order...)
	sort.SliceStable(ids, func(i, j int) bool { return t.count[ids[i]] > t.count[ids[j]] })
	if n >= 0 && len(ids) > n {
		ids = ids[:n]
	}
	return ids
}

// gapAnalysis 彙整所有推薦結果的缺少食材
func (idx *indices) gapAnalysis(available IDSet, matches []RecipeMatch) GapAnalysis {
	c := idx.catalog
	tally := tallyMissing(matches)

	ga := GapAnalysis{
		TotalUniqueMissing:          len(tally.order),
		MostCommonMissing:           []MissingFrequency{},
		MissingByCategory:           map[Category][]CategoryMissing{},
		EssentialMissingIngredients: []EssentialMissing{},
		ShoppingPriorityList:        []ShoppingPriority{},
	}

	for _, id := range tally.mostCommon(10) {
		ga.MostCommonMissing = append(ga.MostCommonMissing, MissingFrequency{
			IngredientID: id,
			Frequency:    tally.count[id],
			Name:         c.IngredientName(id),
		})
	}

	for _, id := range tally.order {
		ing, ok := c.Ingredient(id)
		if !ok {
			continue
		}
		freq := tally.count[id]
		ga.MissingByCategory[ing.Category] = append(ga.MissingByCategory[ing.Category], CategoryMissing{
			ID:        id,
			Name:      ing.Name,
			Frequency: freq,
			CostLevel: ing.CostLevel,
		})
		if float64(freq) > float64(len(matches))*0.5 {
			ga.EssentialMissingIngredients = append(ga.EssentialMissingIngredients, EssentialMissing{
				ID:          id,
				Name:        ing.Name,
				Frequency:   freq,
				ImpactScore: float64(freq) / float64(len(matches)),
			})
		}
	}

	ga.ShoppingPriorityList = idx.shoppingPriority(tally, matches)
	ga.CoverageAnalysis = coverageAnalysis(available, matches)
	ga.Recommendation = idx.gapRecommendations(tally, available)
	return ga
}

func (idx *indices) shoppingPriority(tally missingTally, matches []RecipeMatch) []ShoppingPriority {
	list := []ShoppingPriority{}
	for _, id := range tally.order {
		ing, ok := idx.catalog.Ingredient(id)
		if !ok {
			continue
		}
		freq := tally.count[id]
		frequencyScore := float64(freq) / float64(len(matches))
		costScore := 1.0
		if ing.CostLevel != nil && *ing.CostLevel != 0 {
			costScore = float64(6-*ing.CostLevel) / 5
		}
		priority := frequencyScore*0.4 + costScore*0.3 + versatility(id, matches)*0.3

		list = append(list, ShoppingPriority{
			IngredientID:       id,
			Name:               ing.Name,
			PriorityScore:      priority,
			Frequency:          freq,
			EstimatedCostLevel: ing.CostLevel,
			Category:           ing.Category,
			ImpactDescription:  impactDescription(freq, len(matches)),
		})
	}

	sort.SliceStable(list, func(i, j int) bool { return list[i].PriorityScore > list[j].PriorityScore })
	if len(list) > 15 {
		list = list[:15]
	}
	return list
}

// versatility 缺少該食材的食譜涵蓋的餐別與菜系比例
func versatility(id string, matches []RecipeMatch) float64 {
	mealTypes, cuisines := IDSet{}, IDSet{}
	allMealTypes, allCuisines := IDSet{}, IDSet{}
	for _, m := range matches {
		for _, mt := range m.Recipe.MealTypes {
			allMealTypes.Add(string(mt))
		}
		if m.Recipe.Cuisine != "" {
			allCuisines.Add(m.Recipe.Cuisine)
		}
		if !containsString(m.MissingIngredients, id) {
			continue
		}
		for _, mt := range m.Recipe.MealTypes {
			mealTypes.Add(string(mt))
		}
		if m.Recipe.Cuisine != "" {
			cuisines.Add(m.Recipe.Cuisine)
		}
	}

	categoryVariety := float64(len(mealTypes)) / math.Max(float64(len(allMealTypes)), 1)
	cuisineVariety := float64(len(cuisines)) / math.Max(float64(len(allCuisines)), 1)
	return (categoryVariety + cuisineVariety) / 2
}

func impactDescription(freq, total int) string {
	if freq == 1 {
		return "Enables 1 additional recipe option"
	}
	return fmt.Sprintf("Enables %d additional recipes (%s of suggestions)",
		freq, common.FormatPercent(float64(freq)/float64(total)))
}

// coverageAnalysis 沒有推薦結果時回傳 nil
func coverageAnalysis(available IDSet, matches []RecipeMatch) *CoverageAnalysis {
	if len(matches) == 0 {
		return nil
	}

	ca := &CoverageAnalysis{TotalSuggestedRecipes: len(matches)}
	var scores []float64
	for _, m := range matches {
		missing := len(m.MissingIngredients)
		if missing == 0 {
			ca.FullyCoveredRecipes++
		} else if missing <= 3 {
			ca.PartiallyCoveredRecipes++
		}

		required := IDSet{}
		for _, line := range m.Recipe.Ingredients {
			if !line.IsOptional {
				required.Add(line.IngredientID)
			}
		}
		if len(required) == 0 {
			continue
		}
		have := 0
		for id := range required {
			if available.Has(id) {
				have++
			}
		}
		scores = append(scores, float64(have)/float64(len(required)))
	}

	total := 0.0
	for _, sc := range scores {
		total += sc
		switch {
		case sc >= 0.9:
			ca.CoverageDistribution.Excellent++
		case sc >= 0.7:
			ca.CoverageDistribution.Good++
		case sc >= 0.5:
			ca.CoverageDistribution.Moderate++
		default:
			ca.CoverageDistribution.Poor++
		}
	}
	if len(scores) > 0 {
		ca.AverageCoveragePercentage = total / float64(len(scores)) * 100
	}
	return ca
}

func (idx *indices) gapRecommendations(tally missingTally, available IDSet) []string {
	c := idx.catalog
	if len(tally.order) == 0 {
		return []string{"Great! You have excellent ingredient coverage for the suggested recipes."}
	}

	var recs []string
	if top := tally.mostCommon(1); len(top) > 0 && tally.count[top[0]] > 1 {
		recs = append(recs, fmt.Sprintf("Consider buying %s - it would unlock %d additional recipe options.",
			c.IngredientName(top[0]), tally.count[top[0]]))
	}

	var categories []Category
	gaps := make(map[Category]int)
	for _, id := range tally.order {
		ing, ok := c.Ingredient(id)
		if !ok {
			continue
		}
		if _, exists := gaps[ing.Category]; !exists {
			categories = append(categories, ing.Category)
		}
		gaps[ing.Category]++
	}
	if len(categories) > 0 {
		top := categories[0]
		for _, cat := range categories[1:] {
			if gaps[cat] > gaps[top] {
				top = cat
			}
		}
		recs = append(recs, fmt.Sprintf("You're missing several %s ingredients. Focus on this category for maximum recipe variety.", top))
	}

	var staples []string
	for _, ing := range c.Ingredients() {
		if basicStaples.Has(NormalizeIngredientName(ing.Name)) && !available.Has(ing.ID) {
			staples = append(staples, ing.Name)
		}
	}
	if len(staples) > 0 {
		if len(staples) > 3 {
			staples = staples[:3]
		}
		recs = append(recs, "Consider stocking basic staples: "+common.StringSliceToString(staples))
	}
	return recs
}

// substitutionRecommendations 每個缺少的食材最多三個替代建議
func (idx *indices) substitutionRecommendations(available IDSet, matches []RecipeMatch) []SubstitutionRecommendation {
	recs := []SubstitutionRecommendation{}
	seen := IDSet{}
	for _, m := range matches {
		for _, id := range m.MissingIngredients {
			if seen.Has(id) {
				continue
			}
			seen.Add(id)

			missing, ok := idx.catalog.Ingredient(id)
			if !ok {
				continue
			}
			subs := idx.graph.FindSubstitutes(id, available)
			if len(subs) == 0 {
				continue
			}
			if len(subs) > 3 {
				subs = subs[:3]
			}
			rec := SubstitutionRecommendation{MissingIngredient: IngredientRef{ID: id, Name: missing.Name}}
			for _, sub := range subs {
				rec.Substitutes = append(rec.Substitutes, SubstituteDetail{
					ID:                sub.IngredientID,
					Name:              idx.catalog.IngredientName(sub.IngredientID),
					SimilarityScore:   clamp01(sub.Score),
					SubstitutionNotes: idx.substitutionNotes(id, sub.IngredientID),
				})
			}
			recs = append(recs, rec)
		}
	}
	return recs
}

func (idx *indices) substitutionNotes(originalID, substituteID string) string {
	original, ok1 := idx.catalog.Ingredient(originalID)
	substitute, ok2 := idx.catalog.Ingredient(substituteID)
	if !ok1 || !ok2 {
		return "Substitution may affect flavor profile."
	}

	var notes []string
	if original.Category == substitute.Category {
		notes = append(notes, "Same category - good substitute")
	} else {
		notes = append(notes, fmt.Sprintf("Different category (%s → %s)", original.Category, substitute.Category))
	}
	if math.Abs(original.FlavorProfile.Sweetness-substitute.FlavorProfile.Sweetness) > 3 {
		notes = append(notes, "May significantly change sweetness")
	}

	subTags := NewIDSet(substitute.DietaryTags...)
	var lost []string
	lostSeen := IDSet{}
	for _, tag := range original.DietaryTags {
		if !subTags.Has(tag) {
			lost = appendUnique(lost, lostSeen, tag)
		}
	}
	if len(lost) > 0 {
		notes = append(notes, "May not be suitable for: "+strings.Join(lost, ", "))
	}

	if len(notes) == 0 {
		return "Good general substitute"
	}
	return strings.Join(notes, "; ")
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
