package chat

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Role 消息角色
type Role string

const (
	// RoleSystem 系统提示
	RoleSystem Role = "system"
	// RoleUser 用户
	RoleUser Role = "user"
	// RoleAssistant 助手
	RoleAssistant Role = "assistant"
)

// Valid 检查角色是否合法
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Content 消息内容，只有 TextContent 与 MultiPartContent 两种实现
type Content interface {
	isContent()
}

// TextContent 纯文本内容
type TextContent string

func (TextContent) isContent() {}

// MultiPartContent 多段内容（文本 + 图片），顺序有意义
type MultiPartContent []Part

func (MultiPartContent) isContent() {}

// Part 多段内容中的一段，只有 TextPart 与 ImagePart 两种实现
type Part interface {
	isPart()
}

// TextPart 文本段
type TextPart struct {
	Text string
}

func (TextPart) isPart() {}

// ImagePart 图片段，URL 一般为 data:<mime>;base64,<data>
type ImagePart struct {
	URL string
}

func (ImagePart) isPart() {}

// MIMEType 从 data URL 中解析 MIME 类型，非 data URL 返回空串
func (p ImagePart) MIMEType() string {
	rest, ok := strings.CutPrefix(p.URL, "data:")
	if !ok {
		return ""
	}
	mime, _, found := strings.Cut(rest, ";")
	if !found {
		return ""
	}
	return mime
}

// Base64Data 返回 data URL 中的 base64 负载，非 base64 data URL 返回空串
func (p ImagePart) Base64Data() string {
	_, data, found := strings.Cut(p.URL, ";base64,")
	if !found || !strings.HasPrefix(p.URL, "data:") {
		return ""
	}
	return data
}

// Message 对话中的一轮
type Message struct {
	Role    Role
	Content Content
}

// History 对话历史，插入顺序即时间顺序
type History []Message

// Last 返回最后一条消息
func (h History) Last() (Message, bool) {
	if len(h) == 0 {
		return Message{}, false
	}
	return h[len(h)-1], true
}

// Clone 深拷贝历史，多段内容的切片也会复制
func (h History) Clone() History {
	if h == nil {
		return nil
	}
	out := make(History, len(h))
	for i, m := range h {
		out[i] = Message{Role: m.Role, Content: cloneContent(m.Content)}
	}
	return out
}

func cloneContent(c Content) Content {
	switch v := c.(type) {
	case MultiPartContent:
		parts := make(MultiPartContent, len(v))
		copy(parts, v)
		return parts
	default:
		return c
	}
}

// 线路格式（与前端/OpenAI 消息格式一致）：
//   {"role":"user","content":"..."}
//   {"role":"user","content":[{"type":"text","text":"..."},{"type":"image_url","image_url":{"url":"data:..."}}]}

type wireMessage struct {
	Role    Role            `json:"role"`
	Content json.RawMessage `json:"content"`
}

type wirePart struct {
	Type     string        `json:"type"`
	Text     *string       `json:"text,omitempty"`
	ImageURL *wireImageURL `json:"image_url,omitempty"`
}

type wireImageURL struct {
	URL string `json:"url"`
}

const (
	partTypeText  = "text"
	partTypeImage = "image_url"
)

// MarshalJSON 编码为线路格式
func (m Message) MarshalJSON() ([]byte, error) {
	var content any
	switch c := m.Content.(type) {
	case nil:
		content = ""
	case TextContent:
		content = string(c)
	case MultiPartContent:
		parts := make([]wirePart, 0, len(c))
		for _, p := range c {
			switch pv := p.(type) {
			case TextPart:
				text := pv.Text
				parts = append(parts, wirePart{Type: partTypeText, Text: &text})
			case ImagePart:
				parts = append(parts, wirePart{Type: partTypeImage, ImageURL: &wireImageURL{URL: pv.URL}})
			default:
				return nil, fmt.Errorf("unsupported part type %T", p)
			}
		}
		content = parts
	default:
		return nil, fmt.Errorf("unsupported content type %T", m.Content)
	}

	raw, err := json.Marshal(content)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireMessage{Role: m.Role, Content: raw})
}

// UnmarshalJSON 从线路格式解码，content 可以是字符串或分段数组
func (m *Message) UnmarshalJSON(data []byte) error {
	var w wireMessage
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if !w.Role.Valid() {
		return fmt.Errorf("invalid role %q", w.Role)
	}
	m.Role = w.Role

	trimmed := strings.TrimSpace(string(w.Content))
	switch {
	case trimmed == "" || trimmed == "null":
		m.Content = TextContent("")
	case strings.HasPrefix(trimmed, "\""):
		var s string
		if err := json.Unmarshal(w.Content, &s); err != nil {
			return fmt.Errorf("invalid text content: %w", err)
		}
		m.Content = TextContent(s)
	case strings.HasPrefix(trimmed, "["):
		var raw []wirePart
		if err := json.Unmarshal(w.Content, &raw); err != nil {
			return fmt.Errorf("invalid multi-part content: %w", err)
		}
		parts := make(MultiPartContent, 0, len(raw))
		for i, p := range raw {
			switch p.Type {
			case partTypeText:
				text := ""
				if p.Text != nil {
					text = *p.Text
				}
				parts = append(parts, TextPart{Text: text})
			case partTypeImage, "image":
				if p.ImageURL == nil {
					return fmt.Errorf("part %d: image part without image_url", i)
				}
				parts = append(parts, ImagePart{URL: p.ImageURL.URL})
			default:
				return fmt.Errorf("part %d: unsupported part type %q", i, p.Type)
			}
		}
		m.Content = parts
	default:
		return fmt.Errorf("content must be a string or an array of parts")
	}
	return nil
}
