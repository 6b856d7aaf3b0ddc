package chat

import "strings"

// ValidateHistory 校验历史非空且最后一条由用户发出
func ValidateHistory(history History) error {
	last, ok := history.Last()
	if !ok {
		return invalidHistory("history must not be empty")
	}
	if last.Role != RoleUser {
		return invalidHistory("last message must be user-authored")
	}
	return nil
}

// QueryText 提取最后一条用户消息中的查询文本
// 文本内容直接返回；多段内容取第一段的文本。空白文本视为没有查询（走直接对话分支）
func QueryText(history History) (string, error) {
	if err := ValidateHistory(history); err != nil {
		return "", err
	}
	last, _ := history.Last()

	var text string
	switch c := last.Content.(type) {
	case TextContent:
		text = string(c)
	case MultiPartContent:
		if len(c) > 0 {
			// 第一段不是文本（例如只有图片）时同样视为没有查询
			if tp, ok := c[0].(TextPart); ok {
				text = tp.Text
			}
		}
	}

	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	return text, nil
}

// SpliceUserTurn 用新的提示替换最后一条用户消息的文本，返回新的历史，不修改入参
// 多段内容只替换第一段（假定为文本段），其余段（如图片）原样保留在原位置
func SpliceUserTurn(prompt string, history History) (History, error) {
	if err := ValidateHistory(history); err != nil {
		return nil, err
	}

	out := history.Clone()
	idx := len(out) - 1

	switch c := out[idx].Content.(type) {
	case TextContent, nil:
		out[idx].Content = TextContent(prompt)
	case MultiPartContent:
		if len(c) == 0 {
			out[idx].Content = MultiPartContent{TextPart{Text: prompt}}
			break
		}
		if _, ok := c[0].(TextPart); !ok {
			return nil, invalidHistory("first part of a multi-part user message must be text")
		}
		c[0] = TextPart{Text: prompt}
	}

	return out, nil
}

// WithSystemPrompt 返回在位置 0 插入系统提示后的新切片，不修改入参；提示为空时原样复制
func WithSystemPrompt(systemPrompt string, history History) History {
	if strings.TrimSpace(systemPrompt) == "" {
		return history.Clone()
	}
	out := make(History, 0, len(history)+1)
	out = append(out, Message{Role: RoleSystem, Content: TextContent(systemPrompt)})
	return append(out, history.Clone()...)
}
