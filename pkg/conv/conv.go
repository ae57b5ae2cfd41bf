// Package conv 提供从 YAML/JSON 解析结果（map[string]any）中读取配置值的泛型工具。
package conv

// ToFloat64 将 any 转为 float64。
// 支持 float64、float32、int、int64、int32；YAML 中的整数常解析为 int。
func ToFloat64(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	default:
		return 0, false
	}
}

// ConfigGet 从 map[string]any 按 key 取 T，取不到或类型不符时返回 defaultVal。
func ConfigGet[T any](m map[string]any, key string, defaultVal T) T {
	if m == nil {
		return defaultVal
	}
	v, ok := m[key]
	if !ok {
		return defaultVal
	}
	t, ok := v.(T)
	if !ok {
		return defaultVal
	}
	return t
}

// ConfigLookupFloat64 从 config 取数值，兼容 int 与 float64。
// 第二个返回值表示 key 是否存在且为数值。
func ConfigLookupFloat64(m map[string]any, key string) (float64, bool) {
	if m == nil {
		return 0, false
	}
	return ToFloat64(m[key])
}

// ConfigGetFloat64 同 ConfigLookupFloat64，取不到时返回 defaultVal。
func ConfigGetFloat64(m map[string]any, key string, defaultVal float64) float64 {
	if f, ok := ConfigLookupFloat64(m, key); ok {
		return f
	}
	return defaultVal
}

// ConfigGetStrings 从 config 取字符串列表（YAML/JSON 解析为 []any），非字符串元素被跳过。
func ConfigGetStrings(m map[string]any, key string) []string {
	if m == nil {
		return nil
	}
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// ConfigGetMap 从 config 取嵌套 map，兼容 map[any]any（部分 YAML 解码器的产物）。
func ConfigGetMap(m map[string]any, key string) (map[string]any, bool) {
	if m == nil {
		return nil, false
	}
	switch val := m[key].(type) {
	case map[string]any:
		return val, true
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, v := range val {
			s, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[s] = v
		}
		return out, true
	default:
		return nil, false
	}
}
