package extract

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type fieldType int

const (
	fieldString fieldType = iota
	fieldNumber
	fieldScore
	fieldStringList
	fieldStringSet
	fieldSubstitutes
)

type field struct {
	name string
	typ  fieldType
}

// 每種結構的必要欄位，順序即錯誤回報順序
var schemas = map[SchemaKind][]field{
	KindDishAnalysis: {
		{"dish_name", fieldString},
		{"ingredients", fieldStringList},
		{"recipe_steps", fieldStringList},
		{"fun_facts", fieldStringList},
	},
	KindNutritionEstimate: {
		{"serving_size", fieldString},
		{"calories", fieldNumber},
		{"proteins", fieldNumber},
		{"carbs", fieldNumber},
		{"fats", fieldNumber},
		{"fiber", fieldNumber},
		{"notes", fieldString},
	},
	KindSubstituteList: {
		{"ingredient", fieldString},
		{"category", fieldString},
		{"substitutes", fieldSubstitutes},
	},
	KindDishComparison: {
		{"similarity_score", fieldScore},
		{"common_ingredients", fieldStringSet},
		{"unique_to_dish1", fieldStringSet},
		{"unique_to_dish2", fieldStringSet},
		{"culinary_relationship", fieldString},
		{"cultural_context", fieldString},
		{"key_differences", fieldStringList},
	},
}

// validate 檢查所有欄位並回傳轉換後的值；問題會全部收集
func validate(obj map[string]any, fields []field, defaults map[string]any) (map[string]any, []FieldIssue) {
	values := make(map[string]any, len(fields))
	var issues []FieldIssue

	for _, f := range fields {
		raw, present := obj[f.name]
		if !present || raw == nil {
			def, ok := defaults[f.name]
			if !ok {
				issues = append(issues, FieldIssue{Field: f.name, Issue: IssueMissing})
				continue
			}
			raw = def
		}

		value, detail := coerce(raw, f.typ)
		if detail != "" {
			issues = append(issues, FieldIssue{Field: f.name, Issue: IssueInvalid, Detail: detail})
			continue
		}
		values[f.name] = value
	}

	return values, issues
}

// coerce 依欄位型別轉換值；失敗時回傳非空的說明
func coerce(v any, typ fieldType) (any, string) {
	switch typ {
	case fieldString:
		if s, ok := readString(v); ok {
			return s, ""
		}
		return nil, "expected string"
	case fieldNumber:
		if n, ok := readNumber(v); ok {
			return n, ""
		}
		return nil, "expected number"
	case fieldScore:
		n, ok := readNumber(v)
		if !ok || n < 0 || n > 100 {
			return nil, "expected number between 0 and 100"
		}
		return n, ""
	case fieldStringList:
		return readStringList(v)
	case fieldStringSet:
		list, detail := readStringList(v)
		if detail != "" {
			return nil, detail
		}
		return dedupe(list), ""
	case fieldSubstitutes:
		return readSubstitutes(v)
	}
	return nil, "unsupported field type"
}

// readString 字串原樣接受；數字與布林轉為其文字表示
func readString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	}
	return "", false
}

// readNumber 數字原樣接受；可完整解析為浮點數的字串也接受
func readNumber(v any) (float64, bool) {
	var (
		f   float64
		err error
	)
	switch t := v.(type) {
	case json.Number:
		f, err = t.Float64()
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(t), 64)
	case float64:
		f = t
	case int:
		f = float64(t)
	default:
		return 0, false
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// readStringList 陣列逐一轉為字串；單一字串包裝成單元素陣列，空字串視為空陣列
func readStringList(v any) ([]string, string) {
	const detail = "expected list of strings"

	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for i, item := range t {
			s, ok := readString(item)
			if !ok {
				return nil, fmt.Sprintf("%s: element %d is not a scalar", detail, i)
			}
			out = append(out, s)
		}
		return out, ""
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out, ""
	case string:
		if strings.TrimSpace(t) == "" {
			return []string{}, ""
		}
		return []string{t}, ""
	}
	return nil, detail
}

// readSubstitutes 接受物件陣列；單一物件包裝成單元素陣列
func readSubstitutes(v any) ([]Substitute, string) {
	const detail = "expected list of {name, reason}"

	var items []any
	switch t := v.(type) {
	case []any:
		items = t
	case map[string]any:
		items = []any{t}
	default:
		return nil, detail
	}

	out := make([]Substitute, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Sprintf("%s: element %d is not an object", detail, i)
		}
		name, ok := readString(obj["name"])
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Sprintf("%s: element %d has no name", detail, i)
		}
		reason, ok := readString(obj["reason"])
		if !ok {
			return nil, fmt.Sprintf("%s: element %d has no reason", detail, i)
		}
		out = append(out, Substitute{Name: name, Reason: reason})
	}
	return out, ""
}

// dedupe 去除重複字串，保留第一次出現的順序
func dedupe(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, s := range list {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
