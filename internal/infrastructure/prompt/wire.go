package prompt

import "github.com/google/wire"

// ProviderSet 系统提示 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideStore,
)
