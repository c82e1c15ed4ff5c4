package errors

import (
	"errors"
	"fmt"
)

// 표준 라이브러리 함수 재노출
var (
	New    = errors.New
	Unwrap = errors.Unwrap
	Is     = errors.Is
	As     = errors.As
)

// Error 코드를 가진 에러 인터페이스
type Error interface {
	error
	Code() string
	Unwrap() error
}

// AppError 애플리케이션 에러 구현체
type AppError struct {
	code    string
	message string
	err     error
}

func (e *AppError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s", e.message, e.err.Error())
	}
	return e.message
}

// Code 에러 코드 반환
func (e *AppError) Code() string {
	return e.code
}

// Message 내부 에러를 제외한 메시지 반환 (응답 본문용)
func (e *AppError) Message() string {
	return e.message
}

func (e *AppError) Unwrap() error {
	return e.err
}

// NewAppError 새 애플리케이션 에러 생성
func NewAppError(code string, message string, err error) *AppError {
	return &AppError{
		code:    code,
		message: message,
		err:     err,
	}
}

// NotFound 조회 대상이 없을 때
func NotFound(message string) *AppError {
	return NewAppError(ErrNotFound, message, nil)
}

// InvalidArgument 요청 값이 잘못되었을 때
func InvalidArgument(message string, err error) *AppError {
	return NewAppError(ErrInvalidArgument, message, err)
}

// Conflict 현재 상태와 충돌할 때
func Conflict(message string) *AppError {
	return NewAppError(ErrConflict, message, nil)
}

// Unauthenticated 인증 정보가 없거나 잘못되었을 때
func Unauthenticated(message string) *AppError {
	return NewAppError(ErrUnauthenticated, message, nil)
}

// Wrap 기존 에러를 래핑합니다. AppError 인 경우 코드를 유지합니다.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if As(err, &appErr) {
		return NewAppError(appErr.Code(), message, err)
	}

	return NewAppError(ErrInternal, message, err)
}

// CodeOf 에러 체인에서 코드를 찾습니다. 없으면 INTERNAL.
func CodeOf(err error) string {
	var coded Error
	if As(err, &coded) {
		return coded.Code()
	}
	return ErrInternal
}
