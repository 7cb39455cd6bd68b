package extract

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedPayload 候選字串無法解析為 JSON
	ErrMalformedPayload = errors.New("malformed payload")
	// ErrSchemaMismatch JSON 可解析但欄位缺漏或型別不符
	ErrSchemaMismatch = errors.New("schema mismatch")
)

// ErrorKind 解析失敗的分類
type ErrorKind int

const (
	MalformedPayload ErrorKind = iota + 1
	SchemaMismatch
)

func (k ErrorKind) String() string {
	switch k {
	case MalformedPayload:
		return "malformed_payload"
	case SchemaMismatch:
		return "schema_mismatch"
	default:
		return "unknown"
	}
}

// IssueKind 欄位問題類型
type IssueKind string

const (
	IssueMissing IssueKind = "missing"
	IssueInvalid IssueKind = "invalid"
)

// FieldIssue 單一欄位的驗證問題
type FieldIssue struct {
	Field  string    `json:"field"`
	Issue  IssueKind `json:"issue"`
	Detail string    `json:"detail,omitempty"`
}

func (f FieldIssue) String() string {
	if f.Detail == "" {
		return fmt.Sprintf("%s: %s", f.Field, f.Issue)
	}
	return fmt.Sprintf("%s: %s (%s)", f.Field, f.Issue, f.Detail)
}

// ExtractionError 結構化解析失敗
type ExtractionError struct {
	Kind      ErrorKind
	Schema    SchemaKind
	Tier      FenceTier
	Candidate string       // 嘗試解析的字串
	Issues    []FieldIssue // 僅 SchemaMismatch
	Err       error        // 僅 MalformedPayload，JSON 解析錯誤
}

func (e *ExtractionError) Error() string {
	switch e.Kind {
	case MalformedPayload:
		return fmt.Sprintf("extract %s: malformed payload (%s): %v", e.Schema, e.Tier, e.Err)
	case SchemaMismatch:
		parts := make([]string, len(e.Issues))
		for i, issue := range e.Issues {
			parts[i] = issue.String()
		}
		return fmt.Sprintf("extract %s: schema mismatch: %s", e.Schema, strings.Join(parts, "; "))
	default:
		return fmt.Sprintf("extract %s: failed", e.Schema)
	}
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Is 讓 errors.Is 可比對 ErrMalformedPayload 與 ErrSchemaMismatch
func (e *ExtractionError) Is(target error) bool {
	switch target {
	case ErrMalformedPayload:
		return e.Kind == MalformedPayload
	case ErrSchemaMismatch:
		return e.Kind == SchemaMismatch
	}
	return false
}

// MissingFields 回傳缺漏的欄位名稱
func (e *ExtractionError) MissingFields() []string {
	var fields []string
	for _, issue := range e.Issues {
		if issue.Issue == IssueMissing {
			fields = append(fields, issue.Field)
		}
	}
	return fields
}

// Snippet 回傳截斷後的候選字串，供日誌使用
func (e *ExtractionError) Snippet(max int) string {
	if max <= 0 || len(e.Candidate) <= max {
		return e.Candidate
	}
	return strings.ToValidUTF8(e.Candidate[:max], "") + "..."
}

// AsExtractionError 取出錯誤鏈中的 ExtractionError
func AsExtractionError(err error) (*ExtractionError, bool) {
	var target *ExtractionError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
