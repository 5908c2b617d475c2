package recipe

// Category 食材分類
type Category string

const (
	CategoryProtein   Category = "protein"
	CategoryVegetable Category = "vegetable"
	CategoryFruit     Category = "fruit"
	CategoryGrain     Category = "grain"
	CategoryDairy     Category = "dairy"
	CategorySpice     Category = "spice"
	CategoryHerb      Category = "herb"
	CategoryCondiment Category = "condiment"
	CategoryFat       Category = "fat"
	CategoryLiquid    Category = "liquid"
	CategorySweetener Category = "sweetener"
	CategoryNutsSeeds Category = "nuts_seeds"
)

// Difficulty 食譜難度
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
	DifficultyExpert       Difficulty = "expert"
)

// MealType 餐別
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
	MealDessert   MealType = "dessert"
	MealAppetizer MealType = "appetizer"
	MealBeverage  MealType = "beverage"
)

// CookingMethod 烹調方式
type CookingMethod string

const (
	MethodBaking      CookingMethod = "baking"
	MethodBoiling     CookingMethod = "boiling"
	MethodFrying      CookingMethod = "frying"
	MethodGrilling    CookingMethod = "grilling"
	MethodRoasting    CookingMethod = "roasting"
	MethodSteaming    CookingMethod = "steaming"
	MethodSauteing    CookingMethod = "sauteing"
	MethodBraising    CookingMethod = "braising"
	MethodSlowCooking CookingMethod = "slow_cooking"
	MethodRaw         CookingMethod = "raw"
)

// 演算法名稱
const (
	AlgorithmGraph        = "graph"
	AlgorithmGreedy       = "greedy"
	AlgorithmBacktracking = "backtracking"
)

// FlavorProfile 六軸風味向量，每軸 0~10
type FlavorProfile struct {
	Sweetness  float64 `json:"sweetness" yaml:"sweetness" validate:"gte=0,lte=10"`
	Saltiness  float64 `json:"saltiness" yaml:"saltiness" validate:"gte=0,lte=10"`
	Sourness   float64 `json:"sourness" yaml:"sourness" validate:"gte=0,lte=10"`
	Bitterness float64 `json:"bitterness" yaml:"bitterness" validate:"gte=0,lte=10"`
	Umami      float64 `json:"umami" yaml:"umami" validate:"gte=0,lte=10"`
	Spiciness  float64 `json:"spiciness" yaml:"spiciness" validate:"gte=0,lte=10"`
}

// Vector 回傳固定順序的風味向量
func (f FlavorProfile) Vector() [6]float64 {
	return [6]float64{f.Sweetness, f.Saltiness, f.Sourness, f.Bitterness, f.Umami, f.Spiciness}
}

// NutritionalInfo 營養資訊（每 100g）
type NutritionalInfo struct {
	CaloriesPer100g *float64 `json:"calories_per_100g,omitempty" yaml:"calories_per_100g,omitempty"`
	ProteinG        *float64 `json:"protein_g,omitempty" yaml:"protein_g,omitempty"`
	CarbsG          *float64 `json:"carbs_g,omitempty" yaml:"carbs_g,omitempty"`
	FatG            *float64 `json:"fat_g,omitempty" yaml:"fat_g,omitempty"`
	FiberG          *float64 `json:"fiber_g,omitempty" yaml:"fiber_g,omitempty"`
	SugarG          *float64 `json:"sugar_g,omitempty" yaml:"sugar_g,omitempty"`
	SodiumMg        *float64 `json:"sodium_mg,omitempty" yaml:"sodium_mg,omitempty"`
}

// Ingredient 食材
type Ingredient struct {
	ID                string          `json:"id" yaml:"id" validate:"required"`
	Name              string          `json:"name" yaml:"name" validate:"required"`
	Category          Category        `json:"category" yaml:"category" validate:"required,oneof=protein vegetable fruit grain dairy spice herb condiment fat liquid sweetener nuts_seeds"`
	Aliases           []string        `json:"aliases" yaml:"aliases"`
	FlavorProfile     FlavorProfile   `json:"flavor_profile" yaml:"flavor_profile"`
	NutritionalInfo   NutritionalInfo `json:"nutritional_info" yaml:"nutritional_info"`
	CommonSubstitutes []string        `json:"common_substitutes" yaml:"common_substitutes"`
	DietaryTags       []string        `json:"dietary_tags" yaml:"dietary_tags"`
	StorageInfo       string          `json:"storage_info,omitempty" yaml:"storage_info,omitempty"`
	Season            []string        `json:"season" yaml:"season"`
	Origin            string          `json:"origin,omitempty" yaml:"origin,omitempty"`
	CostLevel         *int            `json:"cost_level,omitempty" yaml:"cost_level,omitempty" validate:"omitempty,min=1,max=5"`
}

// RecipeIngredient 食譜中的一行食材，僅以 id 參照食材
type RecipeIngredient struct {
	IngredientID string   `json:"ingredient_id" yaml:"ingredient_id" validate:"required"`
	Quantity     float64  `json:"quantity" yaml:"quantity" validate:"gte=0"`
	Unit         string   `json:"unit" yaml:"unit"`
	Preparation  string   `json:"preparation,omitempty" yaml:"preparation,omitempty"`
	IsOptional   bool     `json:"is_optional" yaml:"is_optional"`
	Substitutes  []string `json:"substitutes" yaml:"substitutes"`
}

// CookingStep 烹飪步驟
type CookingStep struct {
	StepNumber      int      `json:"step_number" yaml:"step_number" validate:"gte=0"`
	Instruction     string   `json:"instruction" yaml:"instruction" validate:"required"`
	DurationMinutes *int     `json:"duration_minutes,omitempty" yaml:"duration_minutes,omitempty" validate:"omitempty,gte=0"`
	Temperature     string   `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	Equipment       []string `json:"equipment" yaml:"equipment"`
	Tips            string   `json:"tips,omitempty" yaml:"tips,omitempty"`
}

// Recipe 食譜
type Recipe struct {
	ID                        string             `json:"id" yaml:"id" validate:"required"`
	Name                      string             `json:"name" yaml:"name" validate:"required"`
	Description               string             `json:"description,omitempty" yaml:"description,omitempty"`
	Cuisine                   string             `json:"cuisine,omitempty" yaml:"cuisine,omitempty"`
	MealTypes                 []MealType         `json:"meal_types" yaml:"meal_types" validate:"dive,oneof=breakfast lunch dinner snack dessert appetizer beverage"`
	Difficulty                Difficulty         `json:"difficulty" yaml:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced expert"`
	CookingMethods            []CookingMethod    `json:"cooking_methods" yaml:"cooking_methods"`
	PrepTimeMinutes           int                `json:"prep_time_minutes" yaml:"prep_time_minutes" validate:"gte=0"`
	CookTimeMinutes           int                `json:"cook_time_minutes" yaml:"cook_time_minutes" validate:"gte=0"`
	TotalTimeMinutes          int                `json:"total_time_minutes" yaml:"total_time_minutes" validate:"gte=0"`
	Ingredients               []RecipeIngredient `json:"ingredients" yaml:"ingredients" validate:"dive"`
	Instructions              []CookingStep      `json:"instructions" yaml:"instructions" validate:"dive"`
	Servings                  int                `json:"servings" yaml:"servings" validate:"gte=0"`
	DietaryTags               []string           `json:"dietary_tags" yaml:"dietary_tags"`
	Tags                      []string           `json:"tags" yaml:"tags"`
	EquipmentNeeded           []string           `json:"equipment_needed" yaml:"equipment_needed"`
	AverageRating             *float64           `json:"average_rating,omitempty" yaml:"average_rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	RatingCount               int                `json:"rating_count" yaml:"rating_count" validate:"gte=0"`
	PopularityScore           float64            `json:"popularity_score" yaml:"popularity_score"`
	Source                    string             `json:"source,omitempty" yaml:"source,omitempty"`
	Author                    string             `json:"author,omitempty" yaml:"author,omitempty"`
	IngredientComplexityScore *float64           `json:"ingredient_complexity_score,omitempty" yaml:"ingredient_complexity_score,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// TotalTime 準備與烹調時間總和
func (r *Recipe) TotalTime() int {
	return r.PrepTimeMinutes + r.CookTimeMinutes
}

// HasMealType 檢查食譜是否屬於指定餐別
func (r *Recipe) HasMealType(mt MealType) bool {
	for _, m := range r.MealTypes {
		if m == mt {
			return true
		}
	}
	return false
}

// IngredientCompatibility 兩個食材之間的搭配關係
type IngredientCompatibility struct {
	Ingredient1ID      string   `json:"ingredient1_id" yaml:"ingredient1_id" validate:"required"`
	Ingredient2ID      string   `json:"ingredient2_id" yaml:"ingredient2_id" validate:"required"`
	CompatibilityScore float64  `json:"compatibility_score" yaml:"compatibility_score" validate:"gte=0,lte=1"`
	RelationshipType   string   `json:"relationship_type" yaml:"relationship_type"`
	CommonDishes       []string `json:"common_dishes" yaml:"common_dishes"`
}

// Dataset 批次載入用的資料集
type Dataset struct {
	Ingredients     []Ingredient              `json:"ingredients" yaml:"ingredients" validate:"dive"`
	Recipes         []Recipe                  `json:"recipes" yaml:"recipes" validate:"dive"`
	Compatibilities []IngredientCompatibility `json:"compatibilities" yaml:"compatibilities" validate:"dive"`
}

// RecipeMatch 一筆推薦結果
type RecipeMatch struct {
	Recipe                   *Recipe  `json:"recipe"`
	MatchScore               float64  `json:"match_score"`
	AvailableIngredients     []string `json:"available_ingredients"`
	MissingIngredients       []string `json:"missing_ingredients"`
	SubstitutableIngredients []string `json:"substitutable_ingredients"`
	ConfidenceScore          float64  `json:"confidence_score"`
	AlgorithmUsed            string   `json:"algorithm_used"`
	Reasoning                string   `json:"reasoning"`
}

// SuggestionRequest 推薦請求
type SuggestionRequest struct {
	AvailableIngredients  []string   `json:"available_ingredients"`
	DietaryPreferences    []string   `json:"dietary_preferences"`
	MealType              MealType   `json:"meal_type,omitempty" validate:"omitempty,oneof=breakfast lunch dinner snack dessert appetizer beverage"`
	MaxMissingIngredients *int       `json:"max_missing_ingredients,omitempty" validate:"omitempty,gte=0"`
	MaxPrepTime           *int       `json:"max_prep_time,omitempty" validate:"omitempty,gte=0"`
	MaxCookTime           *int       `json:"max_cook_time,omitempty" validate:"omitempty,gte=0"`
	DifficultyLevel       Difficulty `json:"difficulty_level,omitempty" validate:"omitempty,oneof=beginner intermediate advanced expert"`
	CuisinePreference     string     `json:"cuisine_preference,omitempty"`
	ExcludeIngredients    []string   `json:"exclude_ingredients"`
	AlgorithmPreference   string     `json:"algorithm_preference,omitempty"`
}

// DefaultMaxMissing 未指定時允許的缺少食材數
const DefaultMaxMissing = 3

// MaxMissing 回傳允許的缺少食材數
func (r *SuggestionRequest) MaxMissing() int {
	if r.MaxMissingIngredients == nil {
		return DefaultMaxMissing
	}
	return *r.MaxMissingIngredients
}

// SuggestionResponse 推薦響應
type SuggestionResponse struct {
	Matches                     []RecipeMatch                `json:"matches"`
	TotalRecipesAnalyzed        int                          `json:"total_recipes_analyzed"`
	AnalysisTimeMs              float64                      `json:"analysis_time_ms"`
	AlgorithmInsights           map[string]interface{}       `json:"algorithm_insights"`
	IngredientGapAnalysis       GapAnalysis                  `json:"ingredient_gap_analysis"`
	SubstitutionRecommendations []SubstitutionRecommendation `json:"substitution_recommendations"`
	CacheHit                    bool                         `json:"cache_hit"`
}

// IngredientAnalysisResponse 僅含缺口分析與替代建議的響應
type IngredientAnalysisResponse struct {
	IngredientGapAnalysis       GapAnalysis                  `json:"ingredient_gap_analysis"`
	SubstitutionRecommendations []SubstitutionRecommendation `json:"substitution_recommendations"`
	AnalysisTimeMs              float64                      `json:"analysis_time_ms"`
	TotalRecipesAnalyzed        int                          `json:"total_recipes_analyzed"`
}

// GapAnalysis 缺少食材分析
type GapAnalysis struct {
	TotalUniqueMissing          int                            `json:"total_unique_missing"`
	MostCommonMissing           []MissingFrequency             `json:"most_common_missing"`
	MissingByCategory           map[Category][]CategoryMissing `json:"missing_by_category"`
	EssentialMissingIngredients []EssentialMissing             `json:"essential_missing_ingredients"`
	ShoppingPriorityList        []ShoppingPriority             `json:"shopping_priority_list"`
	CoverageAnalysis            *CoverageAnalysis              `json:"coverage_analysis"`
	Recommendation              []string                       `json:"recommendation"`
}

// MissingFrequency 缺少食材出現次數
type MissingFrequency struct {
	IngredientID string `json:"ingredient_id"`
	Frequency    int    `json:"frequency"`
	Name         string `json:"name"`
}

// CategoryMissing 依分類列出的缺少食材
type CategoryMissing struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Frequency int    `json:"frequency"`
	CostLevel *int   `json:"cost_level"`
}

// EssentialMissing 超過半數推薦都缺少的食材
type EssentialMissing struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Frequency   int     `json:"frequency"`
	ImpactScore float64 `json:"impact_score"`
}

// ShoppingPriority 採購優先順序
type ShoppingPriority struct {
	IngredientID       string   `json:"ingredient_id"`
	Name               string   `json:"name"`
	PriorityScore      float64  `json:"priority_score"`
	Frequency          int      `json:"frequency"`
	EstimatedCostLevel *int     `json:"estimated_cost_level"`
	Category           Category `json:"category"`
	ImpactDescription  string   `json:"impact_description"`
}

// CoverageAnalysis 現有食材對推薦食譜的覆蓋程度
type CoverageAnalysis struct {
	TotalSuggestedRecipes     int                  `json:"total_suggested_recipes"`
	FullyCoveredRecipes       int                  `json:"fully_covered_recipes"`
	PartiallyCoveredRecipes   int                  `json:"partially_covered_recipes"`
	AverageCoveragePercentage float64              `json:"average_coverage_percentage"`
	CoverageDistribution      CoverageDistribution `json:"coverage_distribution"`
}

// CoverageDistribution 覆蓋率分布
type CoverageDistribution struct {
	Excellent int `json:"excellent_coverage"`
	Good      int `json:"good_coverage"`
	Moderate  int `json:"moderate_coverage"`
	Poor      int `json:"poor_coverage"`
}

// IngredientRef 食材簡要參照
type IngredientRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SubstitutionRecommendation 單一缺少食材的替代建議
type SubstitutionRecommendation struct {
	MissingIngredient IngredientRef      `json:"missing_ingredient"`
	Substitutes       []SubstituteDetail `json:"substitutes"`
}

// SubstituteDetail 替代食材細節
type SubstituteDetail struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	SimilarityScore   float64 `json:"similarity_score"`
	SubstitutionNotes string  `json:"substitution_notes"`
}
