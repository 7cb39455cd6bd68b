package common

// Message OpenAI 相容的多模態消息
type Message struct {
	Role    string    `json:"role"`
	Content []Content `json:"content"`
}

// Content 內容結構，type 為 text 或 image_url
type Content struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL 圖片 URL 結構（可為 data URL）
type ImageURL struct {
	URL string `json:"url"`
}

// TextContent 建立文字內容
func TextContent(text string) Content {
	return Content{Type: "text", Text: text}
}

// ImageContent 建立圖片內容
func ImageContent(url string) Content {
	return Content{Type: "image_url", ImageURL: &ImageURL{URL: url}}
}
