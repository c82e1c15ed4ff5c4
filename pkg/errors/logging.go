package errors

import (
	"go.uber.org/zap"
)

// LogError 에러를 구조화된 로그로 기록합니다
func LogError(logger *zap.Logger, err error, msg string, fields ...zap.Field) {
	if err == nil {
		return
	}

	allFields := make([]zap.Field, 0, len(fields)+2)
	allFields = append(allFields, zap.Error(err), zap.String("error_code", CodeOf(err)))
	allFields = append(allFields, fields...)

	// 클라이언트 에러는 경고 수준으로
	if ToHTTPStatus(CodeOf(err)) < 500 {
		logger.Warn(msg, allFields...)
		return
	}
	logger.Error(msg, allFields...)
}
