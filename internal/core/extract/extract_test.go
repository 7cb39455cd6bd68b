package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleRecords = []Record{
	DishAnalysis{
		DishName:    "Ceviche",
		Ingredients: []string{"pescado", "limón", "cebolla morada"},
		RecipeSteps: []string{"Cortar el pescado", "Marinar en limón"},
		FunFacts:    []string{"Origen: Perú"},
	},
	NutritionEstimate{
		ServingSize: "1 plato (350g)",
		Calories:    420.5,
		Proteins:    32,
		Carbs:       18.25,
		Fats:        12,
		Fiber:       3,
		Notes:       "Estimación aproximada",
	},
	SubstituteList{
		Ingredient: "mantequilla",
		Category:   "lácteos",
		Substitutes: []Substitute{
			{Name: "aceite de coco", Reason: "textura similar"},
			{Name: "puré de manzana", Reason: "menos grasa"},
		},
	},
	DishComparison{
		SimilarityScore:      70,
		CommonIngredients:    []string{"tomate", "ajo"},
		UniqueToDish1:        []string{"albahaca"},
		UniqueToDish2:        []string{"comino"},
		CulinaryRelationship: "both stews",
		CulturalContext:      "Mediterranean vs. Middle Eastern",
		KeyDifferences:       []string{"spice profile", "cooking time"},
	},
}

func marshalRecord(t *testing.T, rec Record) string {
	t.Helper()
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	return string(data)
}

func TestExtract_RoundTripAcrossFenceTiers(t *testing.T) {
	for _, rec := range sampleRecords {
		payload := marshalRecord(t, rec)
		inputs := map[FenceTier]string{
			TierBare:         payload,
			TierJSONFence:    "Aquí está:\n```json\n" + payload + "\n```\n¡Buen provecho!",
			TierGenericFence: "Aquí está:\n```\n" + payload + "\n```",
		}

		for tier, raw := range inputs {
			t.Run(fmt.Sprintf("%s/%s", rec.Kind(), tier), func(t *testing.T) {
				got, err := Extract(raw, rec.Kind())
				require.NoError(t, err)
				assert.Equal(t, rec, got)
			})
		}
	}
}

func TestExtract_NilSlicesDoNotRoundTrip(t *testing.T) {
	payload := marshalRecord(t, DishAnalysis{DishName: "Sopa"})
	require.Contains(t, payload, `"ingredients":null`)

	_, err := Extract(payload, KindDishAnalysis)
	require.Error(t, err)
	xerr, ok := AsExtractionError(err)
	require.True(t, ok)
	assert.Equal(t, SchemaMismatch, xerr.Kind)
	assert.ElementsMatch(t, []string{"ingredients", "recipe_steps", "fun_facts"}, xerr.MissingFields())

	payload = marshalRecord(t, DishAnalysis{DishName: "Sopa", Ingredients: []string{}, RecipeSteps: []string{}, FunFacts: []string{}})
	got, err := ExtractDishAnalysis(payload)
	require.NoError(t, err)
	assert.Equal(t, DishAnalysis{DishName: "Sopa", Ingredients: []string{}, RecipeSteps: []string{}, FunFacts: []string{}}, got)
}

func TestExtract_Ceviche(t *testing.T) {
	raw := "Here you go:\n```json\n{\"dish_name\":\"Ceviche\",\"ingredients\":[\"fish\",\"lime\"],\"recipe_steps\":[\"cut\",\"marinate\"],\"fun_facts\":[\"origin: Peru\"]}\n```"

	dish, err := ExtractDishAnalysis(raw)
	require.NoError(t, err)
	assert.Equal(t, "Ceviche", dish.DishName)
	assert.Equal(t, []string{"fish", "lime"}, dish.Ingredients)
	assert.Equal(t, []string{"cut", "marinate"}, dish.RecipeSteps)
	assert.Equal(t, []string{"origin: Peru"}, dish.FunFacts)
}

func TestExtract_ComparisonWithoutFence(t *testing.T) {
	raw := `{"similarity_score": 70, "common_ingredients": [], "unique_to_dish1": [], "unique_to_dish2": [], "culinary_relationship": "both stews", "cultural_context": "...", "key_differences": []}`

	cmp, err := ExtractDishComparison(raw)
	require.NoError(t, err)
	assert.Equal(t, 70.0, cmp.SimilarityScore)
	assert.Empty(t, cmp.CommonIngredients)
	assert.NotNil(t, cmp.CommonIngredients)
	assert.Equal(t, "both stews", cmp.CulinaryRelationship)
}

func TestExtract_GarbageIsMalformed(t *testing.T) {
	kinds := []SchemaKind{KindDishAnalysis, KindNutritionEstimate, KindSubstituteList, KindDishComparison}
	for _, kind := range kinds {
		t.Run(kind.String(), func(t *testing.T) {
			_, err := Extract("I think it's a pasta dish but I'm not sure", kind)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedPayload))
			assert.False(t, errors.Is(err, ErrSchemaMismatch))

			extErr, ok := AsExtractionError(err)
			require.True(t, ok)
			assert.Equal(t, MalformedPayload, extErr.Kind)
			assert.Equal(t, TierBare, extErr.Tier)
			assert.Equal(t, "I think it's a pasta dish but I'm not sure", extErr.Candidate)
			assert.Equal(t, kind, extErr.Schema)
		})
	}
}

func TestExtract_MalformedCases(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		tier FenceTier
	}{
		{name: "empty text", raw: "", tier: TierBare},
		{name: "empty json fence", raw: "```json\n```", tier: TierJSONFence},
		{name: "truncated object in fence", raw: "```json\n{\"dish_name\": \"Paella\",", tier: TierJSONFence},
		{name: "prose before bare object", raw: "Sure! {\"dish_name\":\"x\"}", tier: TierBare},
		{name: "trailing data", raw: "{\"a\":1} {\"b\":2}", tier: TierBare},
		{name: "single quotes", raw: "```\n{'dish_name': 'x'}\n```", tier: TierGenericFence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.raw, KindDishAnalysis)
			extErr, ok := AsExtractionError(err)
			require.True(t, ok)
			assert.Equal(t, MalformedPayload, extErr.Kind)
			assert.Equal(t, tt.tier, extErr.Tier)
			assert.Error(t, extErr.Err)
			assert.Contains(t, extErr.Error(), "malformed payload")
		})
	}
}

func TestExtract_MissingFieldIsSchemaMismatch(t *testing.T) {
	raw := `{"ingredients":["arroz"],"recipe_steps":["hervir"],"fun_facts":[]}`

	_, err := ExtractDishAnalysis(raw)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchemaMismatch))
	assert.False(t, errors.Is(err, ErrMalformedPayload))

	extErr, ok := AsExtractionError(err)
	require.True(t, ok)
	assert.Equal(t, []string{"dish_name"}, extErr.MissingFields())
	assert.Contains(t, extErr.Error(), "dish_name: missing")
}

func TestExtract_CollectsAllIssues(t *testing.T) {
	raw := `{"serving_size":"1 taza","calories":"mucho","proteins":null,"carbs":10,"fats":[1],"notes":"ok"}`

	_, err := ExtractNutritionEstimate(raw)
	extErr, ok := AsExtractionError(err)
	require.True(t, ok)
	require.Equal(t, SchemaMismatch, extErr.Kind)

	assert.Equal(t, []FieldIssue{
		{Field: "calories", Issue: IssueInvalid, Detail: "expected number"},
		{Field: "proteins", Issue: IssueMissing},
		{Field: "fats", Issue: IssueInvalid, Detail: "expected number"},
		{Field: "fiber", Issue: IssueMissing},
	}, extErr.Issues)
	assert.Equal(t, []string{"proteins", "fiber"}, extErr.MissingFields())
}

func TestExtract_TopLevelArrayIsSchemaMismatch(t *testing.T) {
	_, err := Extract(`[{"dish_name":"x"}]`, KindDishAnalysis)
	extErr, ok := AsExtractionError(err)
	require.True(t, ok)
	assert.Equal(t, SchemaMismatch, extErr.Kind)
	assert.Equal(t, "$", extErr.Issues[0].Field)
}

func TestExtract_Coercion(t *testing.T) {
	t.Run("scalar string becomes one-element list", func(t *testing.T) {
		dish, err := ExtractDishAnalysis(`{"dish_name":"Tacos","ingredients":"tortilla","recipe_steps":["armar"],"fun_facts":"Origen: México"}`)
		require.NoError(t, err)
		assert.Equal(t, []string{"tortilla"}, dish.Ingredients)
		assert.Equal(t, []string{"Origen: México"}, dish.FunFacts)
	})

	t.Run("blank string becomes empty list", func(t *testing.T) {
		dish, err := ExtractDishAnalysis(`{"dish_name":"Tacos","ingredients":[],"recipe_steps":[],"fun_facts":"  "}`)
		require.NoError(t, err)
		assert.Equal(t, []string{}, dish.FunFacts)
	})

	t.Run("numeric strings become numbers", func(t *testing.T) {
		n, err := ExtractNutritionEstimate(`{"serving_size":"1 plato","calories":"250","proteins":" 12.5 ","carbs":30,"fats":"8","fiber":0,"notes":""}`)
		require.NoError(t, err)
		assert.Equal(t, 250.0, n.Calories)
		assert.Equal(t, 12.5, n.Proteins)
		assert.Equal(t, 8.0, n.Fats)
	})

	t.Run("numbers and booleans in string fields keep their text", func(t *testing.T) {
		n, err := ExtractNutritionEstimate(`{"serving_size":200,"calories":1,"proteins":1,"carbs":1,"fats":1,"fiber":1,"notes":false}`)
		require.NoError(t, err)
		assert.Equal(t, "200", n.ServingSize)
		assert.Equal(t, "false", n.Notes)
	})

	t.Run("number elements in lists keep their text", func(t *testing.T) {
		dish, err := ExtractDishAnalysis(`{"dish_name":"x","ingredients":["huevo",2],"recipe_steps":[],"fun_facts":[]}`)
		require.NoError(t, err)
		assert.Equal(t, []string{"huevo", "2"}, dish.Ingredients)
	})

	t.Run("nested list elements are rejected", func(t *testing.T) {
		_, err := ExtractDishAnalysis(`{"dish_name":"x","ingredients":[["a"]],"recipe_steps":[],"fun_facts":[]}`)
		extErr, ok := AsExtractionError(err)
		require.True(t, ok)
		assert.Equal(t, "ingredients", extErr.Issues[0].Field)
		assert.Equal(t, IssueInvalid, extErr.Issues[0].Issue)
	})

	t.Run("object where list expected is rejected", func(t *testing.T) {
		_, err := ExtractDishAnalysis(`{"dish_name":"x","ingredients":{"a":1},"recipe_steps":[],"fun_facts":[]}`)
		assert.True(t, errors.Is(err, ErrSchemaMismatch))
	})

	t.Run("single substitute object becomes one-element list", func(t *testing.T) {
		list, err := ExtractSubstituteList(`{"ingredient":"leche","category":"lácteos","substitutes":{"name":"leche de avena","reason":"vegana"}}`)
		require.NoError(t, err)
		assert.Equal(t, []Substitute{{Name: "leche de avena", Reason: "vegana"}}, list.Substitutes)
	})

	t.Run("substitute without name is rejected", func(t *testing.T) {
		_, err := ExtractSubstituteList(`{"ingredient":"leche","category":"x","substitutes":[{"reason":"r"}]}`)
		assert.True(t, errors.Is(err, ErrSchemaMismatch))
	})

	t.Run("substitute as bare string is rejected", func(t *testing.T) {
		_, err := ExtractSubstituteList(`{"ingredient":"leche","category":"x","substitutes":["leche de soja"]}`)
		assert.True(t, errors.Is(err, ErrSchemaMismatch))
	})

	t.Run("set fields are de-duplicated in order", func(t *testing.T) {
		cmp, err := ExtractDishComparison(`{"similarity_score":"55","common_ingredients":["ajo","tomate","ajo"],"unique_to_dish1":"albahaca","unique_to_dish2":[],"culinary_relationship":"","cultural_context":"","key_differences":["a","a"]}`)
		require.NoError(t, err)
		assert.Equal(t, 55.0, cmp.SimilarityScore)
		assert.Equal(t, []string{"ajo", "tomate"}, cmp.CommonIngredients)
		assert.Equal(t, []string{"albahaca"}, cmp.UniqueToDish1)
		assert.Equal(t, []string{"a", "a"}, cmp.KeyDifferences)
	})
}

func TestExtract_SimilarityScoreRange(t *testing.T) {
	base := `{"similarity_score":%s,"common_ingredients":[],"unique_to_dish1":[],"unique_to_dish2":[],"culinary_relationship":"","cultural_context":"","key_differences":[]}`

	for _, score := range []string{"0", "100", "42.5"} {
		_, err := ExtractDishComparison(fmt.Sprintf(base, score))
		assert.NoError(t, err, score)
	}
	for _, score := range []string{"-1", "100.5", `"NaN"`, `"high"`, "true"} {
		_, err := ExtractDishComparison(fmt.Sprintf(base, score))
		assert.True(t, errors.Is(err, ErrSchemaMismatch), score)
	}
}

func TestExtract_WithDefault(t *testing.T) {
	raw := `{"ingredient":"azúcar","substitutes":[{"name":"miel","reason":"natural"}]}`

	_, err := ExtractSubstituteList(raw)
	extErr, ok := AsExtractionError(err)
	require.True(t, ok)
	assert.Equal(t, []string{"category"}, extErr.MissingFields())

	list, err := ExtractSubstituteList(raw, WithDefault("category", "general"))
	require.NoError(t, err)
	assert.Equal(t, "general", list.Category)

	list, err = ExtractSubstituteList(`{"ingredient":"azúcar","category":"endulzantes","substitutes":[]}`, WithDefault("category", "general"))
	require.NoError(t, err)
	assert.Equal(t, "endulzantes", list.Category)

	_, err = ExtractSubstituteList(raw, WithDefault("category", []string{"x"}))
	assert.True(t, errors.Is(err, ErrSchemaMismatch))
}

func TestExtract_UnknownKind(t *testing.T) {
	_, err := Extract(`{}`, SchemaKind(99))
	require.Error(t, err)
	_, ok := AsExtractionError(err)
	assert.False(t, ok)
}

func TestExtract_ExtraFieldsIgnored(t *testing.T) {
	dish, err := ExtractDishAnalysis(`{"dish_name":"Sopa","ingredients":[],"recipe_steps":[],"fun_facts":[],"confidence":0.9}`)
	require.NoError(t, err)
	assert.Equal(t, "Sopa", dish.DishName)
}

func TestExtract_Concurrent(t *testing.T) {
	payload := marshalRecord(t, sampleRecords[0])

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := Extract("```json\n"+payload+"\n```", KindDishAnalysis)
			assert.NoError(t, err)
			assert.Equal(t, sampleRecords[0], got)
		}()
	}
	wg.Wait()
}

func TestExtractionError_Snippet(t *testing.T) {
	e := &ExtractionError{Candidate: "abcdefghij"}
	assert.Equal(t, "abcde...", e.Snippet(5))
	assert.Equal(t, "abcdefghij", e.Snippet(50))
}
