package store

import (
	"fmt"

	"github.com/bytedance/sonic"
)

func encodeValue(key string, value any) ([]byte, error) {
	data, err := sonic.ConfigStd.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("%w: encode %s: %v", ErrPersistence, key, err)
	}
	return data, nil
}

func decodeValue(key string, data []byte, dst any) error {
	if err := sonic.ConfigStd.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrPersistence, key, err)
	}
	return nil
}
