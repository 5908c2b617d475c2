package recipe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func ingredient(id, name string, cat Category, flavor FlavorProfile, tags ...string) Ingredient {
	return Ingredient{
		ID:            id,
		Name:          name,
		Category:      cat,
		FlavorProfile: flavor,
		DietaryTags:   tags,
	}
}

func line(id string, qty float64) RecipeIngredient {
	return RecipeIngredient{IngredientID: id, Quantity: qty, Unit: "g"}
}

func optionalLine(id string) RecipeIngredient {
	return RecipeIngredient{IngredientID: id, Quantity: 1, Unit: "pcs", IsOptional: true}
}

// tomatoPastaDataset 五種食材與一道缺少洋蔥的番茄義大利麵
func tomatoPastaDataset() *Dataset {
	return &Dataset{
		Ingredients: []Ingredient{
			ingredient("pasta", "Pasta", CategoryGrain, FlavorProfile{Sweetness: 2, Umami: 1}, "vegetarian", "vegan"),
			ingredient("tomato", "Tomato", CategoryVegetable, FlavorProfile{Sweetness: 4, Sourness: 5, Umami: 6}, "vegetarian", "vegan"),
			ingredient("garlic", "Garlic", CategoryVegetable, FlavorProfile{Sweetness: 2, Bitterness: 1, Umami: 3, Spiciness: 4}, "vegetarian", "vegan"),
			ingredient("olive_oil", "Olive Oil", CategoryFat, FlavorProfile{Bitterness: 2, Umami: 1}, "vegetarian", "vegan"),
			ingredient("basil", "Basil", CategoryHerb, FlavorProfile{Sweetness: 3, Bitterness: 2, Spiciness: 1}, "vegetarian", "vegan"),
		},
		Recipes: []Recipe{
			{
				ID:              "classic_tomato_pasta",
				Name:            "ClassicTomatoPasta",
				Cuisine:         "Italian",
				MealTypes:       []MealType{MealDinner},
				Difficulty:      DifficultyBeginner,
				PrepTimeMinutes: 10,
				CookTimeMinutes: 15,
				Ingredients: []RecipeIngredient{
					line("pasta", 200),
					line("tomato", 300),
					line("onion", 100),
					line("garlic", 10),
					line("olive_oil", 30),
				},
				Instructions: []CookingStep{{StepNumber: 1, Instruction: "Cook everything"}},
				Servings:     2,
				DietaryTags:  []string{"vegetarian"},
			},
		},
	}
}

func tomatoPastaAvailable() []string {
	return []string{"pasta", "tomato", "garlic", "olive_oil", "basil"}
}

func newLoadedService(t *testing.T, ds *Dataset) *Service {
	t.Helper()
	s := NewService(DefaultOptions(), nil)
	require.NoError(t, s.BulkLoad(context.Background(), ds))
	return s
}

func catalogOf(t *testing.T, ds *Dataset) *Catalog {
	t.Helper()
	st := NewStore()
	for _, ing := range ds.Ingredients {
		st.AddIngredient(ing)
	}
	for _, r := range ds.Recipes {
		st.AddRecipe(r)
	}
	for _, c := range ds.Compatibilities {
		st.AddCompatibility(c)
	}
	return st.Snapshot()
}

func defaultGraphOptions() GraphOptions {
	o := DefaultOptions()
	return GraphOptions{
		MinMatchScore:             o.MinRecipeMatchScore,
		MinSubstitutionSimilarity: o.MinSubstitutionSimilarity,
		MaxSubstitutionResults:    o.MaxSubstitutionResults,
	}
}
