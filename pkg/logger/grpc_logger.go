package logger

import (
	"context"
	"path"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// NewGrpcUnaryServerInterceptor 단일 요청 gRPC 호출 로깅 인터셉터
func NewGrpcUnaryServerInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logGrpcCall(logger, "gRPC 요청", info.FullMethod, err, time.Since(start))
		return resp, err
	}
}

// NewGrpcStreamServerInterceptor 스트리밍 gRPC 호출 로깅 인터셉터 (헬스 Watch 등)
func NewGrpcStreamServerInterceptor(logger *zap.Logger) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		wrapped := &countingServerStream{ServerStream: ss}
		err := handler(srv, wrapped)
		logGrpcCall(logger, "gRPC 스트림", info.FullMethod, err, time.Since(start),
			zap.Int("grpc.recv_count", wrapped.recvCount),
			zap.Int("grpc.send_count", wrapped.sendCount),
		)
		return err
	}
}

func logGrpcCall(logger *zap.Logger, msg, fullMethod string, err error, duration time.Duration, extra ...zap.Field) {
	code := status.Code(err)

	fields := append([]zap.Field{
		zap.String("grpc.service", path.Dir(fullMethod)[1:]),
		zap.String("grpc.method", path.Base(fullMethod)),
		zap.String("grpc.code", code.String()),
		zap.Duration("grpc.duration", duration),
	}, extra...)

	switch code {
	case codes.OK:
		logger.Info(msg+" 완료", fields...)
	case codes.Canceled, codes.DeadlineExceeded, codes.ResourceExhausted,
		codes.Aborted, codes.Unavailable, codes.DataLoss:
		logger.Warn(msg+" 실패", append(fields, zap.Error(err))...)
	default:
		logger.Error(msg+" 오류", append(fields, zap.Error(err))...)
	}
}

// countingServerStream 메시지 송수신 횟수를 추적합니다.
type countingServerStream struct {
	grpc.ServerStream
	recvCount int
	sendCount int
}

func (w *countingServerStream) RecvMsg(m interface{}) error {
	err := w.ServerStream.RecvMsg(m)
	if err == nil {
		w.recvCount++
	}
	return err
}

func (w *countingServerStream) SendMsg(m interface{}) error {
	err := w.ServerStream.SendMsg(m)
	if err == nil {
		w.sendCount++
	}
	return err
}
