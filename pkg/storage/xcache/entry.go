package xcache

import (
	"encoding/json"
	"fmt"
	"time"
)

// emptyMarker 空值标记：后端确认不存在的 id 在缓存中的占位值。
// 与"key 不存在"严格区分——命中标记直接短路返回，不再回源。
const emptyMarker = ""

// envelope 缓存条目的统一线格式。
// expireAt 缺失表示普通条目（只受物理 TTL 约束）；
// 存在则为逻辑过期条目，物理上不过期，过期判定由读取方完成。
// 带标记的编码让读取方始终知道该用哪种解码，不依赖调用方约定。
type envelope struct {
	Data     json.RawMessage `json:"data"`
	ExpireAt *time.Time      `json:"expireAt,omitempty"`
}

// encodeEntry 将领域对象编码为普通条目。
func encodeEntry(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("xcache: marshal value: %w", err)
	}
	return json.Marshal(envelope{Data: data})
}

// encodeEntryWithExpiry 将领域对象编码为逻辑过期条目。
func encodeEntryWithExpiry(value any, expireAt time.Time) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("xcache: marshal value: %w", err)
	}
	return json.Marshal(envelope{Data: data, ExpireAt: &expireAt})
}

// decodeEntry 解析缓存条目。
func decodeEntry(raw []byte) (envelope, error) {
	var e envelope
	if err := json.Unmarshal(raw, &e); err != nil {
		return envelope{}, fmt.Errorf("xcache: decode entry: %w", err)
	}
	return e, nil
}

// expired 判断逻辑过期条目是否已过期。普通条目永不逻辑过期。
func (e envelope) expired(now time.Time) bool {
	return e.ExpireAt != nil && !e.ExpireAt.After(now)
}
