package food

import (
	"fmt"
	"strings"

	"food-analyzer/internal/core/extract"

	"github.com/lithammer/dedent"
)

// 營養估算未提供食材時使用的預設文字
const defaultIngredients = "ingredientes estándar"

const analysisSystem = `Analiza esta imagen de comida. Muchas imágenes serán sobre comida tradicional de diferentes culturas.`

const analysisPrompt = `
	Analiza esta imagen de comida y proporciona:
	1. Nombre del plato
	2. Lista de ingredientes principales (como lista de strings)
	3. Pasos de la receta (como lista de strings)
	4. 3-5 datos curiosos sobre el plato (como lista de strings)

	Responde en formato JSON con esta estructura exacta:
	{
	    "dish_name": "nombre del plato",
	    "ingredients": ["ingrediente1", "ingrediente2", ...],
	    "recipe_steps": ["paso1", "paso2", ...],
	    "fun_facts": ["dato1", "dato2", ...]
	}
`

const nutritionSystem = `Eres un experto nutricionista. Proporciona estimaciones nutricionales precisas y realistas.`

const nutritionPrompt = `
	Calcula la información nutricional para una porción estándar de:

	Plato: %s
	Ingredientes: %s

	Responde en formato JSON con esta estructura:
	{
	    "serving_size": "tamaño de la porción (ej: 1 plato, 200g)",
	    "calories": número_de_calorías,
	    "proteins": gramos_de_proteína,
	    "carbs": gramos_de_carbohidratos,
	    "fats": gramos_de_grasas,
	    "fiber": gramos_de_fibra,
	    "notes": "notas adicionales relevantes"
	}
`

const substituteSystem = `Eres un chef experto en sustituciones culinarias, alergias y restricciones alimentarias.`

const substitutePrompt = `
	Sugiere entre 3 y 5 sustitutos para el siguiente ingrediente:

	Ingrediente: %s
	Contexto: %s

	Responde en formato JSON con esta estructura:
	{
	    "ingredient": "nombre del ingrediente",
	    "category": "categoría del ingrediente (ej: lácteo, proteína, especia)",
	    "substitutes": [
	        {"name": "nombre del sustituto", "reason": "por qué funciona y cómo usarlo"}
	    ]
	}
`

const comparisonSystem = `Eres un experto en gastronomía comparativa y análisis culinario transcultural.`

const comparisonPrompt = `
	Compara estos dos platos en detalle:

	Plato 1: %s
	Ingredientes: %s

	Plato 2: %s
	Ingredientes: %s

	Responde en formato JSON:
	{
	    "similarity_score": número_del_0_al_100,
	    "common_ingredients": ["ingrediente1", "ingrediente2"],
	    "unique_to_dish1": ["ingrediente_exclusivo_1"],
	    "unique_to_dish2": ["ingrediente_exclusivo_1"],
	    "culinary_relationship": "descripción de la relación culinaria entre ambos platos",
	    "cultural_context": "contexto cultural y origen de cada plato",
	    "key_differences": ["diferencia1", "diferencia2", "diferencia3"]
	}
`

// render 去除樣板縮排後套用參數
func render(text string, a ...any) string {
	text = strings.TrimSpace(dedent.Dedent(text))
	if len(a) == 0 {
		return text
	}
	return fmt.Sprintf(text, a...)
}

func buildAnalysisPrompt() string {
	return render(analysisPrompt)
}

func buildNutritionPrompt(dish string, ingredients []string) string {
	list := defaultIngredients
	if len(ingredients) > 0 {
		list = strings.Join(ingredients, ", ")
	}
	return render(nutritionPrompt, dish, list)
}

func buildSubstitutePrompt(ingredient, usage string) string {
	if strings.TrimSpace(usage) == "" {
		usage = "ninguno"
	}
	return render(substitutePrompt, ingredient, usage)
}

func buildComparisonPrompt(a, b Dish) string {
	return render(comparisonPrompt,
		a.Name, strings.Join(a.Ingredients, ", "),
		b.Name, strings.Join(b.Ingredients, ", "),
	)
}

// withCorrection 在提示詞後附上上一輪解析失敗的原因
func withCorrection(prompt string, xerr *extract.ExtractionError) string {
	var reason string
	switch xerr.Kind {
	case extract.MalformedPayload:
		reason = "no era JSON válido"
	default:
		issues := make([]string, len(xerr.Issues))
		for i, issue := range xerr.Issues {
			issues[i] = issue.String()
		}
		reason = "tenía campos faltantes o inválidos: " + strings.Join(issues, "; ")
	}
	return fmt.Sprintf("%s\n\nTu respuesta anterior %s. Responde únicamente con el objeto JSON solicitado, con todos los campos.", prompt, reason)
}
