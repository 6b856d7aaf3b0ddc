package rag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabels_BuildPrompt(t *testing.T) {
	matches := []Match{
		{Question: "¿Qué es una lista?", Answer: "Una secuencia mutable.", Score: 0.9},
		{Question: "¿Qué es una tupla?", Answer: "Una secuencia inmutable.", Score: 0.8},
	}

	blocks := SpanishLabels.FormatMatches(matches)
	assert.Equal(t, []string{
		"Pregunta: ¿Qué es una lista?\nRespuesta:Una secuencia mutable.\n\n",
		"Pregunta: ¿Qué es una tupla?\nRespuesta:Una secuencia inmutable.\n\n",
	}, blocks)

	prompt := EnglishLabels.BuildPrompt([]string{"Q/A"}, "What is a list comprehension?")
	assert.Equal(t, "Context: <<<Q/A>>>\n\nQuestion: <<<What is a list comprehension?>>>\n\nAnswer:", prompt)

	empty := SpanishLabels.BuildPrompt(nil, "hola")
	assert.Equal(t, "Contexto: <<<>>>\n\nPregunta: <<<hola>>>\n\nRespuesta:", empty)
}

func TestLabelsFor(t *testing.T) {
	assert.Equal(t, EnglishLabels, LabelsFor("EN"))
	assert.Equal(t, SpanishLabels, LabelsFor("es"))
	assert.Equal(t, SpanishLabels, LabelsFor(""))
}
