package core

import "errors"

// DomainError 是领域层的统一错误类型。
//
// 使用场景：
//   - 加载边界：INVALID_INPUT（价格为负、非数值）
//   - 过滤阶段：INVALID_RANGE（空集合求边界、lo > hi、评分阈值越界）
//   - 存储：NOT_FOUND, NOT_SUPPORTED
type DomainError struct {
	Code    string // 错误代码（如 "INVALID_RANGE"）
	Message string // 错误消息
	Module  string // 模块名称（如 "filter", "store"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is 让 errors.Is 按 Module + Code 比较，而不是按指针。
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && (t.Module == "" || e.Module == t.Module)
}

// IsDomainError 检查错误链中是否存在 DomainError
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 从错误链中取出 DomainError，如果没有则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound     = "NOT_FOUND"     // 资源不存在
	ErrorCodeNotSupported = "NOT_SUPPORTED" // 操作不支持
	ErrorCodeInvalidInput = "INVALID_INPUT" // 输入无效
	ErrorCodeInvalidRange = "INVALID_RANGE" // 区间前置条件不满足
)

// 模块名称常量
const (
	ModuleCore    = "core"
	ModuleSearch  = "search"
	ModuleRank    = "rank"
	ModuleFilter  = "filter"
	ModuleCatalog = "catalog"
	ModuleStore   = "store"
)

// NewInvalidRangeError 创建 INVALID_RANGE 错误。
// 这是查询核心唯一定义的失败模式，恢复策略（跳过过滤、展示空状态）交给调用方。
func NewInvalidRangeError(module, message string) *DomainError {
	return NewDomainError(module, ErrorCodeInvalidRange, message)
}

// IsInvalidRange 检查错误是否为 INVALID_RANGE
func IsInvalidRange(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeInvalidRange
	}
	return false
}

// IsInvalidInput 检查错误是否为 INVALID_INPUT
func IsInvalidInput(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeInvalidInput
	}
	return false
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}

// IsNotSupported 检查错误是否为 NOT_SUPPORTED
func IsNotSupported(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotSupported
	}
	return false
}
