package speech

import "github.com/google/wire"

// ProviderSet 语音识别 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideRecognizerFactory,
)
