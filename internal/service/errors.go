package service

import (
	"errors"
	"fmt"
)

// ==================== 错误类型 ====================

// ValidationError 提交前的本地校验失败
// Fields 为 字段名 -> 可操作的提示；不发起任何网络请求
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("校验失败，共 %d 个字段", len(e.Fields))
}

// NewValidationError 构造字段校验错误
func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// AsValidationError 判断并提取校验错误
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// PaymentError 支付环节终止了流水线
// Cancelled 区分用户主动关闭与网关侧失败；两者都不会触发提交
type PaymentError struct {
	OrderID   string
	Cancelled bool
	Reason    string
}

func (e *PaymentError) Error() string {
	if e.Cancelled {
		return "支付已取消: " + e.OrderID
	}
	return fmt.Sprintf("支付失败: %s (%s)", e.OrderID, e.Reason)
}

// AsPaymentError 判断并提取支付错误
func AsPaymentError(err error) (*PaymentError, bool) {
	var pe *PaymentError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// SubmissionError 持久化服务拒绝或不可达
type SubmissionError struct {
	// Class 取 model.SubmitErrorValidation / Server / Network
	Class   string
	Message string

	// 仅 validation 类携带：服务端返回的字段级错误
	FieldErrors map[string]string
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("提交失败 [%s]: %s", e.Class, e.Message)
}

// AsSubmissionError 判断并提取提交错误
func AsSubmissionError(err error) (*SubmissionError, bool) {
	var se *SubmissionError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
