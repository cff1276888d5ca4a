package model

import "context"

// SettingsPersister flushes settings writes beyond process memory.
// raw is the JSON encoding of the value.
type SettingsPersister interface {
	SaveSetting(ctx context.Context, key string, raw []byte) error
	DeleteSetting(ctx context.Context, key string) error
}
