package audiofile

import "github.com/google/wire"

// ProviderSet 音频解码 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideDecoder,
)
