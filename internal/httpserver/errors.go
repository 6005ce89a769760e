package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/davidbz/pressroom/internal/domain"
	"github.com/davidbz/pressroom/internal/observability"
)

// User-facing error messages.
const (
	msgBadRequest     = "リクエストの形式が正しくありません"
	msgForbidden      = "本番環境ではプロンプトファイルの更新はできません"
	msgInvalidAIReply = "AI応答の形式が正しくありません。再試行してください。"
	msgUpstream       = "AIサービスとの通信に失敗しました。再試行してください。"
	msgInternal       = "サーバーエラーが発生しました。再試行してください。"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// statusFor maps a pipeline error to an HTTP status and user-facing message.
func statusFor(err error) (int, string) {
	var inputErr *domain.InputError
	switch {
	case errors.As(err, &inputErr):
		return http.StatusBadRequest, inputErr.Error()
	case errors.Is(err, domain.ErrPermission):
		return http.StatusForbidden, msgForbidden
	case errors.Is(err, domain.ErrRetryExhausted):
		return http.StatusUnprocessableEntity, msgInvalidAIReply
	case errors.Is(err, domain.ErrInvocation):
		return http.StatusBadGateway, msgUpstream
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// writeError logs err and writes the mapped error response.
// Internal details are only exposed in development mode.
func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status, message := statusFor(err)

	logger := observability.FromContext(ctx)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", observability.Int("status", status), observability.Error(err))
	} else {
		logger.Warn("request rejected", observability.Int("status", status), observability.Error(err))
	}

	resp := ErrorResponse{Error: message}
	if h.development {
		resp.Details = err.Error()
	}
	h.writeJSON(ctx, w, status, resp)
}
