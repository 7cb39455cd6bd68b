package extract

import "fmt"

// SchemaKind 模型回應應符合的結構種類
type SchemaKind int

const (
	KindDishAnalysis SchemaKind = iota + 1
	KindNutritionEstimate
	KindSubstituteList
	KindDishComparison
)

func (k SchemaKind) String() string {
	switch k {
	case KindDishAnalysis:
		return "dish_analysis"
	case KindNutritionEstimate:
		return "nutrition_estimate"
	case KindSubstituteList:
		return "substitute_list"
	case KindDishComparison:
		return "dish_comparison"
	default:
		return fmt.Sprintf("schema_kind(%d)", int(k))
	}
}

// Record 解析完成的結構化結果，建構後不再修改。
// 解析出的序列欄位一定不是 nil；以 json.Marshal 序列化含 nil 切片的值會得到 null，
// 而 null 視為缺漏，因此只有序列欄位非 nil 的值能原樣解析回來。
type Record interface {
	Kind() SchemaKind
}

// DishAnalysis 圖片辨識出的菜餚與食譜
type DishAnalysis struct {
	DishName    string   `json:"dish_name"`
	Ingredients []string `json:"ingredients"`
	RecipeSteps []string `json:"recipe_steps"`
	FunFacts    []string `json:"fun_facts"`
}

// Kind 實作 Record
func (DishAnalysis) Kind() SchemaKind { return KindDishAnalysis }

// NutritionEstimate 每份營養估算
type NutritionEstimate struct {
	ServingSize string  `json:"serving_size"`
	Calories    float64 `json:"calories"`
	Proteins    float64 `json:"proteins"`
	Carbs       float64 `json:"carbs"`
	Fats        float64 `json:"fats"`
	Fiber       float64 `json:"fiber"`
	Notes       string  `json:"notes"`
}

// Kind 實作 Record
func (NutritionEstimate) Kind() SchemaKind { return KindNutritionEstimate }

// Substitute 單一替代食材
type Substitute struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// SubstituteList 某食材的替代建議
type SubstituteList struct {
	Ingredient  string       `json:"ingredient"`
	Category    string       `json:"category"`
	Substitutes []Substitute `json:"substitutes"`
}

// Kind 實作 Record
func (SubstituteList) Kind() SchemaKind { return KindSubstituteList }

// DishComparison 兩道菜的比較結果
//
// CommonIngredients、UniqueToDish1、UniqueToDish2 為集合：
// 已去除重複，保留第一次出現的順序。
type DishComparison struct {
	SimilarityScore      float64  `json:"similarity_score"`
	CommonIngredients    []string `json:"common_ingredients"`
	UniqueToDish1        []string `json:"unique_to_dish1"`
	UniqueToDish2        []string `json:"unique_to_dish2"`
	CulinaryRelationship string   `json:"culinary_relationship"`
	CulturalContext      string   `json:"cultural_context"`
	KeyDifferences       []string `json:"key_differences"`
}

// Kind 實作 Record
func (DishComparison) Kind() SchemaKind { return KindDishComparison }
