// Package extract turns free-form model replies into typed records.
//
// A reply is reduced to a JSON candidate by a fixed fence search
// (```json block, then a generic ``` block, then the whole text),
// parsed, and validated field by field against the requested schema.
// Extraction is pure: no I/O, no shared state, no retries.
package extract

import (
	"fmt"

	"food-analyzer/internal/pkg/common"
)

// Option 調整單次解析行為
type Option func(*options)

type options struct {
	defaults map[string]any
}

// WithDefault 為缺漏（或為 null）的欄位提供預設值，值仍需通過型別驗證
func WithDefault(field string, value any) Option {
	return func(o *options) {
		if o.defaults == nil {
			o.defaults = make(map[string]any)
		}
		o.defaults[field] = value
	}
}

// Extract 從模型回應中取出指定結構
func Extract(raw string, kind SchemaKind, opts ...Option) (Record, error) {
	fields, ok := schemas[kind]
	if !ok {
		return nil, fmt.Errorf("extract: unknown schema kind %s", kind)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	candidate, tier := locatePayload(raw)

	var payload any
	if err := common.ParseJSON(candidate, &payload); err != nil {
		return nil, &ExtractionError{
			Kind:      MalformedPayload,
			Schema:    kind,
			Tier:      tier,
			Candidate: candidate,
			Err:       err,
		}
	}

	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, &ExtractionError{
			Kind:      SchemaMismatch,
			Schema:    kind,
			Tier:      tier,
			Candidate: candidate,
			Issues:    []FieldIssue{{Field: "$", Issue: IssueInvalid, Detail: "expected a JSON object"}},
		}
	}

	values, issues := validate(obj, fields, o.defaults)
	if len(issues) > 0 {
		return nil, &ExtractionError{
			Kind:      SchemaMismatch,
			Schema:    kind,
			Tier:      tier,
			Candidate: candidate,
			Issues:    issues,
		}
	}

	return build(kind, values), nil
}

// ExtractDishAnalysis 解析菜餚分析
func ExtractDishAnalysis(raw string, opts ...Option) (DishAnalysis, error) {
	return extractAs[DishAnalysis](raw, KindDishAnalysis, opts)
}

// ExtractNutritionEstimate 解析營養估算
func ExtractNutritionEstimate(raw string, opts ...Option) (NutritionEstimate, error) {
	return extractAs[NutritionEstimate](raw, KindNutritionEstimate, opts)
}

// ExtractSubstituteList 解析替代食材
func ExtractSubstituteList(raw string, opts ...Option) (SubstituteList, error) {
	return extractAs[SubstituteList](raw, KindSubstituteList, opts)
}

// ExtractDishComparison 解析菜餚比較
func ExtractDishComparison(raw string, opts ...Option) (DishComparison, error) {
	return extractAs[DishComparison](raw, KindDishComparison, opts)
}

func extractAs[T Record](raw string, kind SchemaKind, opts []Option) (T, error) {
	var zero T
	rec, err := Extract(raw, kind, opts...)
	if err != nil {
		return zero, err
	}
	return rec.(T), nil
}

func build(kind SchemaKind, v map[string]any) Record {
	switch kind {
	case KindDishAnalysis:
		return DishAnalysis{
			DishName:    v["dish_name"].(string),
			Ingredients: v["ingredients"].([]string),
			RecipeSteps: v["recipe_steps"].([]string),
			FunFacts:    v["fun_facts"].([]string),
		}
	case KindNutritionEstimate:
		return NutritionEstimate{
			ServingSize: v["serving_size"].(string),
			Calories:    v["calories"].(float64),
			Proteins:    v["proteins"].(float64),
			Carbs:       v["carbs"].(float64),
			Fats:        v["fats"].(float64),
			Fiber:       v["fiber"].(float64),
			Notes:       v["notes"].(string),
		}
	case KindSubstituteList:
		return SubstituteList{
			Ingredient:  v["ingredient"].(string),
			Category:    v["category"].(string),
			Substitutes: v["substitutes"].([]Substitute),
		}
	case KindDishComparison:
		return DishComparison{
			SimilarityScore:      v["similarity_score"].(float64),
			CommonIngredients:    v["common_ingredients"].([]string),
			UniqueToDish1:        v["unique_to_dish1"].([]string),
			UniqueToDish2:        v["unique_to_dish2"].([]string),
			CulinaryRelationship: v["culinary_relationship"].(string),
			CulturalContext:      v["cultural_context"].(string),
			KeyDifferences:       v["key_differences"].([]string),
		}
	}
	return nil
}
