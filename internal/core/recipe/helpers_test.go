package recipe

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatCookingTime(t *testing.T) {
	cases := map[int]string{
		0:   "0 minutes",
		45:  "45 minutes",
		60:  "1 hour",
		75:  "1 hour 15 minutes",
		120: "2 hours",
		150: "2 hours",
	}
	for minutes, want := range cases {
		assert.Equal(t, want, FormatCookingTime(minutes), minutes)
	}
}

func TestCalculateRecipeComplexity(t *testing.T) {
	assert.Zero(t, CalculateRecipeComplexity(&Recipe{}))

	r := &Recipe{
		Ingredients:     make([]RecipeIngredient, 10),
		Instructions:    make([]CookingStep, 30),
		CookingMethods:  []CookingMethod{MethodBraising, "sous_vide"},
		EquipmentNeeded: []string{"pot", "oven"},
	}
	want := 0.5*0.3 + 1*0.3 + (0.8+0.5)/2*0.25 + 0.2*0.15
	assert.InDelta(t, want, CalculateRecipeComplexity(r), 1e-9)
}

func TestNormalizeIngredientName(t *testing.T) {
	assert.Equal(t, "olive_oil", NormalizeIngredientName("  Olive Oil "))
	assert.Equal(t, "salt", NormalizeIngredientName("SALT"))
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, clamp01(-0.5))
	assert.Equal(t, 1.0, clamp01(1.5))
	assert.Equal(t, 0.0, clamp01(math.NaN()))
	assert.Equal(t, 0.25, clamp01(0.25))
}

func TestStoreInsertionOrderAndClones(t *testing.T) {
	st := NewStore()
	st.AddIngredient(ingredient("b", "Bee", CategoryHerb, FlavorProfile{}))
	st.AddIngredient(ingredient("a", "Ay", CategoryHerb, FlavorProfile{}))
	st.AddIngredient(Ingredient{ID: "b", Name: "Bee Two", Category: CategoryHerb, Aliases: []string{"ay"}})

	c := st.Snapshot()
	ids := []string{}
	for _, ing := range c.Ingredients() {
		ids = append(ids, ing.ID)
	}
	assert.Equal(t, []string{"b", "a"}, ids)
	assert.Equal(t, "Bee Two", c.IngredientName("b"))
	assert.Equal(t, "zzz", c.IngredientName("zzz"))

	// 名稱比別名優先
	id, ok := c.Resolve(" AY ")
	require.True(t, ok)
	assert.Equal(t, "a", id)

	got, ok := st.GetIngredient("b")
	require.True(t, ok)
	got.Aliases[0] = "changed"
	again, _ := st.GetIngredient("b")
	assert.Equal(t, []string{"ay"}, again.Aliases)

	recipes, ingredients, comps := st.Counts()
	assert.Equal(t, 0, recipes)
	assert.Equal(t, 2, ingredients)
	assert.Equal(t, 0, comps)
}

func TestQueryExcludedAndSplit(t *testing.T) {
	c := catalogOf(t, tomatoPastaDataset())
	q := c.NewQuery(&SuggestionRequest{
		AvailableIngredients: []string{"pasta", "tomato"},
		ExcludeIngredients:   []string{"onion", "Olive Oil"},
	})
	assert.True(t, q.Excluded.Has("onion"))
	assert.True(t, q.Excluded.Has("olive_oil"))
	assert.Equal(t, DefaultMaxMissing, q.MaxMissing)

	r, _ := c.Recipe("classic_tomato_pasta")
	assert.True(t, q.usesExcluded(r))

	sp := q.split(&Recipe{Ingredients: []RecipeIngredient{
		line("pasta", 1), line("pasta", 2), line("garlic", 1), optionalLine("tomato"), optionalLine("basil"),
	}})
	assert.Equal(t, []string{"pasta", "garlic"}, sp.required)
	assert.Equal(t, []string{"pasta"}, sp.available)
	assert.Equal(t, []string{"garlic"}, sp.missing)
	assert.Equal(t, []string{"tomato", "basil"}, sp.optional)
	assert.Equal(t, 1, sp.optHave)
}

func TestSubstituteFinders(t *testing.T) {
	ds := &Dataset{Ingredients: []Ingredient{
		{ID: "milk", Name: "Milk", Category: CategoryDairy, DietaryTags: []string{"vegetarian"}, CommonSubstitutes: []string{"oat_milk"}},
		ingredient("cream", "Cream", CategoryDairy, FlavorProfile{}, "vegetarian", "keto"),
		ingredient("oat_milk", "Oat Milk", CategoryLiquid, FlavorProfile{}, "vegan"),
		ingredient("yogurt", "Yogurt", CategoryDairy, FlavorProfile{}, "probiotic"),
	}}
	c := catalogOf(t, ds)

	direct := NewDirectFirstFinder(c)
	assert.Equal(t, "direct-first", direct.Name())
	assert.Equal(t, []Substitute{{IngredientID: "oat_milk", Score: 1}}, direct.Find("milk", NewIDSet("oat_milk", "cream")))
	assert.Equal(t, []Substitute{{IngredientID: "cream", Score: 1}}, direct.Find("milk", NewIDSet("cream")))
	assert.Empty(t, direct.Find("milk", NewIDSet("yogurt")))

	broad := NewCategoryBroadFinder(c)
	assert.Equal(t, "category-broad", broad.Name())
	assert.Empty(t, broad.Find("milk", NewIDSet("yogurt")))
	assert.NotEmpty(t, broad.Find("milk", NewIDSet("cream")))
	assert.Nil(t, broad.Find("unknown", NewIDSet("cream")))

	g := NewIngredientGraph(c, defaultGraphOptions())
	weighted := NewGraphWeightedFinder(g)
	assert.Equal(t, "graph-weighted", weighted.Name())
	assert.Nil(t, weighted.Find("unknown", NewIDSet("cream")))
}
