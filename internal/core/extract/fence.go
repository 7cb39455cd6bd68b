package extract

import "strings"

// FenceTier 候選 JSON 的來源
type FenceTier int

const (
	TierJSONFence    FenceTier = iota + 1 // ```json ... ```
	TierGenericFence                      // ``` ... ```
	TierBare                              // 整段文字
)

func (t FenceTier) String() string {
	switch t {
	case TierJSONFence:
		return "json_fence"
	case TierGenericFence:
		return "generic_fence"
	case TierBare:
		return "bare"
	default:
		return "unknown"
	}
}

const (
	fence     = "```"
	jsonFence = "```json"
)

// locatePayload 依固定順序取出候選 JSON：
// 先找第一個 ```json 區塊，再找第一個 ``` 區塊，最後使用整段文字。
// 找不到結尾的 fence 時取到文字結尾。
func locatePayload(raw string) (string, FenceTier) {
	if i := strings.Index(raw, jsonFence); i >= 0 {
		body := untilFence(raw[i+len(jsonFence):])
		return strings.TrimSpace(body), TierJSONFence
	}
	if i := strings.Index(raw, fence); i >= 0 {
		body := untilFence(raw[i+len(fence):])
		return strings.TrimSpace(dropInfoString(body)), TierGenericFence
	}
	return strings.TrimSpace(raw), TierBare
}

func untilFence(s string) string {
	if j := strings.Index(s, fence); j >= 0 {
		return s[:j]
	}
	return s
}

// dropInfoString 移除開頭 fence 後的語言標記行（如 JSON、javascript）
func dropInfoString(body string) string {
	nl := strings.IndexByte(body, '\n')
	if nl < 0 {
		return body
	}
	first := strings.TrimSpace(body[:nl])
	if first == "" || strings.ContainsAny(first, "{}[]\"' \t:,") {
		return body
	}
	return body[nl+1:]
}
