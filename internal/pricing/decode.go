package pricing

import (
	"encoding/json"
	"fmt"
)

type envelope struct {
	Kind Kind `json:"kind"`
}

// Decode 按 kind 字段解析定价配置
// 缺省 kind 视为 tiered
func Decode(data []byte) (Configuration, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	switch env.Kind {
	case "", KindTiered:
		var c TieredConfig
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		return c, nil
	case KindBag:
		var c BagConfig
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		return c, nil
	case KindCustomMylar:
		var c CustomMylarConfig
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, env.Kind)
	}
}
