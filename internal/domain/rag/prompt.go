package rag

import (
	"fmt"
	"strings"
)

// Labels 提示模板中的标签
type Labels struct {
	Context  string
	Question string
	Answer   string
}

// SpanishLabels 原始服务使用的西语标签
var SpanishLabels = Labels{Context: "Contexto", Question: "Pregunta", Answer: "Respuesta"}

// EnglishLabels 英文标签
var EnglishLabels = Labels{Context: "Context", Question: "Question", Answer: "Answer"}

// LabelsFor 根据语言选择标签，未知语言回退到西语
func LabelsFor(language string) Labels {
	switch strings.ToLower(strings.TrimSpace(language)) {
	case "en", "en-us", "english":
		return EnglishLabels
	default:
		return SpanishLabels
	}
}

// FormatMatch 将一条命中格式化为两行的问答块
func (l Labels) FormatMatch(m Match) string {
	return fmt.Sprintf("%s: %s\n%s:%s\n\n", l.Question, m.Question, l.Answer, m.Answer)
}

// FormatMatches 按排名顺序格式化所有命中
func (l Labels) FormatMatches(matches []Match) []string {
	blocks := make([]string, 0, len(matches))
	for _, m := range matches {
		blocks = append(blocks, l.FormatMatch(m))
	}
	return blocks
}

// BuildPrompt 组合上下文与问题：
// "<Context>: <<<retrieved>>>\n\n<Question>: <<<query>>>\n\n<Answer>:"
func (l Labels) BuildPrompt(blocks []string, query string) string {
	retrieved := strings.Join(blocks, "")
	return fmt.Sprintf("%s: <<<%s>>>\n\n%s: <<<%s>>>\n\n%s:",
		l.Context, retrieved, l.Question, query, l.Answer)
}
