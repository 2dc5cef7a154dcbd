package resolver

import (
	"fmt"
	"time"

	"github.com/xiaoxiao0301/lx-source-resolver/pkg/errors"
)

// Outcome 单个提供方尝试的结果
type Outcome string

const (
	OutcomeSuccess        Outcome = "success"
	OutcomeTimeout        Outcome = "timeout"
	OutcomeNetworkError   Outcome = "network-error"
	OutcomeInvalidPayload Outcome = "invalid-payload"
	OutcomeNoURL          Outcome = "no-url"
	OutcomeUnsupported    Outcome = "unsupported-platform"
)

// outcomeOf 错误类型 -> 尝试结果
func outcomeOf(kind errors.Kind) Outcome {
	switch kind {
	case errors.KindNetworkTimeout:
		return OutcomeTimeout
	case errors.KindNetworkError:
		return OutcomeNetworkError
	case errors.KindNoAudioURL:
		return OutcomeNoURL
	case errors.KindUnsupportedPlatform:
		return OutcomeUnsupported
	default:
		return OutcomeInvalidPayload
	}
}

// ProviderAttempt 一次提供方尝试的诊断记录，只写日志不展示给用户
type ProviderAttempt struct {
	ProviderID string        `json:"provider_id"`
	Tier       string        `json:"tier"`
	Outcome    Outcome       `json:"outcome"`
	Kind       errors.Kind   `json:"kind,omitempty"`
	Code       int64         `json:"code,omitempty"`
	Detail     string        `json:"detail,omitempty"`
	Latency    time.Duration `json:"latency"`
}

// 面向用户的固定提示
const (
	MsgTimeout     = "network timeout, please retry"
	MsgNoSource    = "no available source for this track"
	MsgBadParams   = "upstream rejected the request parameters"
	MsgDisabled    = "service is disabled"
	MsgMissingID   = "missing song id"
	MsgUnsupported = "platform is not supported"
)

// kindMessages 每种错误类型对应的简短提示，诊断细节只进日志
var kindMessages = map[errors.Kind]string{
	errors.KindParamError:          MsgMissingID,
	errors.KindUnsupportedPlatform: MsgUnsupported,
	errors.KindNetworkTimeout:      MsgTimeout,
	errors.KindNetworkError:        "network request failed",
	errors.KindEmptyResponse:       "upstream returned an empty response",
	errors.KindInvalidResponse:     "upstream returned an invalid response",
	errors.KindJSONParseError:      "upstream response format error",
	errors.KindAPIFailed:           "upstream request failed",
	errors.KindNoData:              "upstream returned no data",
	errors.KindNoAudioURL:          MsgNoSource,
	errors.KindInvalidURL:          "upstream returned a malformed audio url",
	errors.KindServiceDisabled:     MsgDisabled,
}

// Failure 解析失败；Error() 返回面向用户的提示
type Failure struct {
	Kind        errors.Kind
	Message     string
	UserMessage string
	Attempts    []ProviderAttempt
}

func (f *Failure) Error() string {
	return f.UserMessage
}

// Unwrap 便于 errors.KindOf 识别
func (f *Failure) Unwrap() error {
	return errors.New(f.Kind, f.Message)
}

// HTTPStatus 宿主适配层使用的状态码
func (f *Failure) HTTPStatus() int {
	return f.Kind.HTTPStatus()
}

// userMessage 按最后一次尝试的错误类型选择提示
func userMessage(kind errors.Kind, code int64) string {
	if kind == errors.KindAPIError {
		if code == 400 {
			return MsgBadParams
		}
		return fmt.Sprintf("upstream returned error status %d", code)
	}
	if msg, ok := kindMessages[kind]; ok {
		return msg
	}
	return MsgNoSource
}

// exhausted 汇总全部尝试
func exhausted(attempts []ProviderAttempt) *Failure {
	last := attempts[len(attempts)-1]
	kind := last.Kind
	if len(attempts) > 1 {
		kind = errors.KindExhausted
	}
	return &Failure{
		Kind:        kind,
		Message:     last.Detail,
		UserMessage: userMessage(last.Kind, last.Code),
		Attempts:    attempts,
	}
}

func newFailure(kind errors.Kind, message string) *Failure {
	return &Failure{Kind: kind, Message: message, UserMessage: message}
}
