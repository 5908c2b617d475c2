package recipe

import (
	"strings"
	"sync"
)

// Store 食材、食譜與搭配關係的記憶體儲存，保留插入順序
type Store struct {
	mu              sync.RWMutex
	ingredients     map[string]*Ingredient
	ingredientOrder []string
	recipes         map[string]*Recipe
	recipeOrder     []string
	compatibilities []IngredientCompatibility
}

// NewStore 創建空的儲存
func NewStore() *Store {
	return &Store{
		ingredients: make(map[string]*Ingredient),
		recipes:     make(map[string]*Recipe),
	}
}

// AddIngredient 新增或覆寫食材，覆寫時保留原順序
func (s *Store) AddIngredient(ing Ingredient) {
	c := cloneIngredient(&ing)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.ingredients[c.ID]; !exists {
		s.ingredientOrder = append(s.ingredientOrder, c.ID)
	}
	s.ingredients[c.ID] = c
}

// AddRecipe 新增或覆寫食譜
func (s *Store) AddRecipe(r Recipe) {
	c := cloneRecipe(&r)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.recipes[c.ID]; !exists {
		s.recipeOrder = append(s.recipeOrder, c.ID)
	}
	s.recipes[c.ID] = c
}

// AddCompatibility 記錄搭配關係
func (s *Store) AddCompatibility(comp IngredientCompatibility) {
	comp.CommonDishes = cloneStrings(comp.CommonDishes)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.compatibilities = append(s.compatibilities, comp)
}

// GetIngredient 取得食材副本
func (s *Store) GetIngredient(id string) (*Ingredient, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ing, ok := s.ingredients[id]
	if !ok {
		return nil, false
	}
	return cloneIngredient(ing), true
}

// GetRecipe 取得食譜副本
func (s *Store) GetRecipe(id string) (*Recipe, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.recipes[id]
	if !ok {
		return nil, false
	}
	return cloneRecipe(r), true
}

// Counts 回傳食譜、食材與搭配關係數量
func (s *Store) Counts() (recipes, ingredients, compatibilities int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.recipes), len(s.ingredients), len(s.compatibilities)
}

// Snapshot 建立唯讀的目錄快照
func (s *Store) Snapshot() *Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := &Catalog{
		ingredients:     make(map[string]*Ingredient, len(s.ingredients)),
		ingredientOrder: append([]string(nil), s.ingredientOrder...),
		recipes:         make(map[string]*Recipe, len(s.recipes)),
		recipeOrder:     append([]string(nil), s.recipeOrder...),
		compatibilities: make([]IngredientCompatibility, len(s.compatibilities)),
		nameIndex:       make(map[string]string),
		aliasIndex:      make(map[string]string),
	}
	for _, id := range s.ingredientOrder {
		ing := cloneIngredient(s.ingredients[id])
		c.ingredients[id] = ing

		name := strings.ToLower(ing.Name)
		if _, taken := c.nameIndex[name]; !taken {
			c.nameIndex[name] = id
		}
		for _, alias := range ing.Aliases {
			alias = strings.ToLower(alias)
			if _, taken := c.aliasIndex[alias]; !taken {
				c.aliasIndex[alias] = id
			}
		}
	}
	for _, id := range s.recipeOrder {
		c.recipes[id] = cloneRecipe(s.recipes[id])
	}
	for i, comp := range s.compatibilities {
		comp.CommonDishes = cloneStrings(comp.CommonDishes)
		c.compatibilities[i] = comp
	}
	return c
}

// Catalog 某一時間點的唯讀目錄，建立後不再修改
type Catalog struct {
	ingredients     map[string]*Ingredient
	ingredientOrder []string
	recipes         map[string]*Recipe
	recipeOrder     []string
	compatibilities []IngredientCompatibility
	nameIndex       map[string]string
	aliasIndex      map[string]string
}

// Ingredient 依 id 取得食材
func (c *Catalog) Ingredient(id string) (*Ingredient, bool) {
	ing, ok := c.ingredients[id]
	return ing, ok
}

// Recipe 依 id 取得食譜
func (c *Catalog) Recipe(id string) (*Recipe, bool) {
	r, ok := c.recipes[id]
	return r, ok
}

// Ingredients 依插入順序回傳所有食材
func (c *Catalog) Ingredients() []*Ingredient {
	out := make([]*Ingredient, 0, len(c.ingredientOrder))
	for _, id := range c.ingredientOrder {
		out = append(out, c.ingredients[id])
	}
	return out
}

// Recipes 依插入順序回傳所有食譜
func (c *Catalog) Recipes() []*Recipe {
	out := make([]*Recipe, 0, len(c.recipeOrder))
	for _, id := range c.recipeOrder {
		out = append(out, c.recipes[id])
	}
	return out
}

// Compatibilities 回傳所有搭配關係
func (c *Catalog) Compatibilities() []IngredientCompatibility {
	return c.compatibilities
}

func (c *Catalog) RecipeCount() int     { return len(c.recipeOrder) }
func (c *Catalog) IngredientCount() int { return len(c.ingredientOrder) }

// IngredientName 取得食材名稱，未知 id 時回傳 id
func (c *Catalog) IngredientName(id string) string {
	if ing, ok := c.ingredients[id]; ok {
		return ing.Name
	}
	return id
}

// Resolve 將名稱或別名解析為食材 id
// 依序比對 id、名稱（不分大小寫）、別名
func (c *Catalog) Resolve(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if _, ok := c.ingredients[value]; ok {
		return value, true
	}
	key := strings.ToLower(value)
	if key == "" {
		return "", false
	}
	if id, ok := c.nameIndex[key]; ok {
		return id, true
	}
	if id, ok := c.aliasIndex[key]; ok {
		return id, true
	}
	return "", false
}

// ResolveAll 解析一組名稱，未知名稱被略過
func (c *Catalog) ResolveAll(values []string) IDSet {
	out := make(IDSet, len(values))
	for _, v := range values {
		if id, ok := c.Resolve(v); ok {
			out.Add(id)
		}
	}
	return out
}

// Query 已正規化的推薦查詢
type Query struct {
	Catalog            *Catalog
	Available          IDSet
	Excluded           IDSet
	DietaryPreferences []string
	MealType           MealType
	MaxMissing         int
	MaxPrepTime        int
	MaxCookTime        int
	Difficulty         Difficulty
	Cuisine            string
	RawAvailableCount  int
}

// NewQuery 將請求中的食材名稱解析為 id
func (c *Catalog) NewQuery(req *SuggestionRequest) *Query {
	q := &Query{
		Catalog:            c,
		Available:          c.ResolveAll(req.AvailableIngredients),
		Excluded:           IDSet{},
		DietaryPreferences: req.DietaryPreferences,
		MealType:           req.MealType,
		MaxMissing:         req.MaxMissing(),
		Difficulty:         req.DifficultyLevel,
		Cuisine:            req.CuisinePreference,
		RawAvailableCount:  len(req.AvailableIngredients),
	}
	for _, v := range req.ExcludeIngredients {
		q.Excluded.Add(strings.TrimSpace(v))
	}
	for id := range c.ResolveAll(req.ExcludeIngredients) {
		q.Excluded.Add(id)
	}
	if req.MaxPrepTime != nil {
		q.MaxPrepTime = *req.MaxPrepTime
	}
	if req.MaxCookTime != nil {
		q.MaxCookTime = *req.MaxCookTime
	}
	return q
}

// withinTimeLimits 檢查準備與烹調時間限制，0 表示不限制
func (q *Query) withinTimeLimits(r *Recipe) bool {
	if q.MaxPrepTime > 0 && r.PrepTimeMinutes > q.MaxPrepTime {
		return false
	}
	if q.MaxCookTime > 0 && r.CookTimeMinutes > q.MaxCookTime {
		return false
	}
	return true
}

// meetsDietary 所有飲食偏好（不分大小寫）都必須出現在食譜標籤中
func (q *Query) meetsDietary(r *Recipe) bool {
	if len(q.DietaryPreferences) == 0 {
		return true
	}
	return subsetOf(lowerSet(q.DietaryPreferences), lowerSet(r.DietaryTags))
}

// usesExcluded 檢查食譜是否含有排除的食材
func (q *Query) usesExcluded(r *Recipe) bool {
	if len(q.Excluded) == 0 {
		return false
	}
	for _, line := range r.Ingredients {
		if q.Excluded.Has(line.IngredientID) {
			return true
		}
	}
	return false
}

// ingredientSplit 依可用食材將食譜必要食材分為已有與缺少
type ingredientSplit struct {
	required  []string
	optional  []string
	available []string
	missing   []string
	optHave   int
}

func (q *Query) split(r *Recipe) ingredientSplit {
	var sp ingredientSplit
	reqSeen, optSeen, availSeen, missSeen := IDSet{}, IDSet{}, IDSet{}, IDSet{}
	for _, line := range r.Ingredients {
		id := line.IngredientID
		if line.IsOptional {
			if !optSeen.Has(id) {
				sp.optional = appendUnique(sp.optional, optSeen, id)
				if q.Available.Has(id) {
					sp.optHave++
				}
			}
			continue
		}
		sp.required = appendUnique(sp.required, reqSeen, id)
		if q.Available.Has(id) {
			sp.available = appendUnique(sp.available, availSeen, id)
		} else {
			sp.missing = appendUnique(sp.missing, missSeen, id)
		}
	}
	return sp
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func cloneIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFloatPtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneIngredient(in *Ingredient) *Ingredient {
	out := *in
	out.Aliases = cloneStrings(in.Aliases)
	out.CommonSubstitutes = cloneStrings(in.CommonSubstitutes)
	out.DietaryTags = cloneStrings(in.DietaryTags)
	out.Season = cloneStrings(in.Season)
	out.CostLevel = cloneIntPtr(in.CostLevel)
	n := in.NutritionalInfo
	out.NutritionalInfo = NutritionalInfo{
		CaloriesPer100g: cloneFloatPtr(n.CaloriesPer100g),
		ProteinG:        cloneFloatPtr(n.ProteinG),
		CarbsG:          cloneFloatPtr(n.CarbsG),
		FatG:            cloneFloatPtr(n.FatG),
		FiberG:          cloneFloatPtr(n.FiberG),
		SugarG:          cloneFloatPtr(n.SugarG),
		SodiumMg:        cloneFloatPtr(n.SodiumMg),
	}
	return &out
}

func cloneRecipe(in *Recipe) *Recipe {
	out := *in
	if in.MealTypes != nil {
		out.MealTypes = append([]MealType(nil), in.MealTypes...)
	}
	if in.CookingMethods != nil {
		out.CookingMethods = append([]CookingMethod(nil), in.CookingMethods...)
	}
	if in.Ingredients != nil {
		out.Ingredients = make([]RecipeIngredient, len(in.Ingredients))
		for i, line := range in.Ingredients {
			line.Substitutes = cloneStrings(line.Substitutes)
			out.Ingredients[i] = line
		}
	}
	if in.Instructions != nil {
		out.Instructions = make([]CookingStep, len(in.Instructions))
		for i, step := range in.Instructions {
			step.DurationMinutes = cloneIntPtr(step.DurationMinutes)
			step.Equipment = cloneStrings(step.Equipment)
			out.Instructions[i] = step
		}
	}
	out.DietaryTags = cloneStrings(in.DietaryTags)
	out.Tags = cloneStrings(in.Tags)
	out.EquipmentNeeded = cloneStrings(in.EquipmentNeeded)
	out.AverageRating = cloneFloatPtr(in.AverageRating)
	out.IngredientComplexityScore = cloneFloatPtr(in.IngredientComplexityScore)
	return &out
}
