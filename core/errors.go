package core

import (
	"errors"
	"fmt"
)

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 结构性错误（列缺失、配置冲突）使用此类型并立即返回给调用方
//   - 数值边界情况（WoE 无定义、分箱空洞）不报错，而是吸收为哨兵值
//   - 支持错误检查函数（IsXXX）
//
// 使用场景：
//   - Dataset 错误：COLUMN_NOT_FOUND, COLUMN_EXISTS
//   - Binning 错误：INVALID_CONFIG（合并分组重叠、分箱定义非法）
//   - Store 错误：NOT_FOUND
type DomainError struct {
	Code    string // 错误代码（如 "COLUMN_NOT_FOUND", "INVALID_CONFIG"）
	Message string // 错误消息
	Module  string // 模块名称（如 "dataset", "binning", "woe"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// IsDomainError 检查错误是否为 DomainError 类型
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取 DomainError（支持 %w 包装链），如果不是则返回 nil
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
	ErrorCodeNotFound       = "NOT_FOUND"        // 资源不存在
	ErrorCodeNotSupported   = "NOT_SUPPORTED"    // 操作不支持
	ErrorCodeColumnNotFound = "COLUMN_NOT_FOUND" // 数据集中缺少所需列
	ErrorCodeColumnExists   = "COLUMN_EXISTS"    // 新增列与已有列重名
	ErrorCodeInvalidConfig  = "INVALID_CONFIG"   // 分箱/合并/管道配置非法
	ErrorCodeInvalidInput   = "INVALID_INPUT"    // 输入无效（长度不一致、类型不符）
)

// 模块名称常量
const (
	ModuleDataset = "dataset"
	ModuleBinning = "binning"
	ModuleWoE     = "woe"
	ModulePrep    = "prep"
	ModuleStore   = "store"
	ModuleConfig  = "config"
)

// ErrColumnNotFound 构造列缺失错误（schema mismatch）。
func ErrColumnNotFound(name string) *DomainError {
	return NewDomainError(ModuleDataset, ErrorCodeColumnNotFound, fmt.Sprintf("dataset: column %q not found", name))
}

// ErrInvalidConfig 构造配置错误。
func ErrInvalidConfig(module, format string, args ...any) *DomainError {
	return NewDomainError(module, ErrorCodeInvalidConfig, module+": "+fmt.Sprintf(format, args...))
}

// ErrInvalidInput 构造输入错误。
func ErrInvalidInput(module, format string, args ...any) *DomainError {
	return NewDomainError(module, ErrorCodeInvalidInput, module+": "+fmt.Sprintf(format, args...))
}

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool { return hasCode(err, ErrorCodeNotFound) }

// IsNotSupported 检查错误是否为 NOT_SUPPORTED
func IsNotSupported(err error) bool { return hasCode(err, ErrorCodeNotSupported) }

// IsColumnNotFound 检查错误是否为列缺失
func IsColumnNotFound(err error) bool { return hasCode(err, ErrorCodeColumnNotFound) }

// IsColumnExists 检查错误是否为列重名
func IsColumnExists(err error) bool { return hasCode(err, ErrorCodeColumnExists) }

// IsInvalidConfig 检查错误是否为配置非法
func IsInvalidConfig(err error) bool { return hasCode(err, ErrorCodeInvalidConfig) }

// IsInvalidInput 检查错误是否为输入无效
func IsInvalidInput(err error) bool { return hasCode(err, ErrorCodeInvalidInput) }
