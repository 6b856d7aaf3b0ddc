package rag

// ScoredPoint 向量索引返回的一条命中，只带元数据不带向量值
type ScoredPoint struct {
	ID       string
	Metadata map[string]any
	Score    float32
}

// Point 写入向量索引的一条记录
type Point struct {
	ID       string
	Vector   []float32
	Metadata map[string]any
}

// Match 检索到的 FAQ 问答对，仅在单次请求内存在
type Match struct {
	ID       string
	Question string
	Answer   string
	Score    float32
}

// FAQPair 待入库的问答对（索引初始化使用）
type FAQPair struct {
	ID       string            `json:"id"`
	Values   []float32         `json:"values,omitempty"`
	Metadata map[string]string `json:"metadata"`
}
