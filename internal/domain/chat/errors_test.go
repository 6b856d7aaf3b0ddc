package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/pyassist/backend/internal/domain/audio"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, ""},
		{"invalid history", invalidHistory("empty"), KindInvalidHistory},
		{"decode", fmt.Errorf("%w: bad header", audio.ErrDecode), KindDecode},
		{"recognition", fmt.Errorf("%w: closed", audio.ErrRecognition), KindRecognition},
		{"recognizer down", fmt.Errorf("%w: connection refused", audio.ErrRecognizerUnavailable), KindRecognizerDown},
		{"retrieval", Wrap(ErrRetrieval, errors.New("dial")), KindRetrieval},
		{"generation", Wrap(ErrGeneration, errors.New("429")), KindGeneration},
		{"timeout wins", Wrap(ErrGeneration, context.DeadlineExceeded), KindTimeout},
		{"unknown", errors.New("boom"), KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}
