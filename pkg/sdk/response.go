package sdk

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Outcome is the classification of a settled request.
type Outcome int

const (
	// OutcomeNoAnswer is the zero Outcome: no response arrived.
	OutcomeNoAnswer Outcome = iota
	OutcomeSuccessful
	OutcomeAPIError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccessful:
		return "successful"
	case OutcomeAPIError:
		return "api_error"
	case OutcomeNoAnswer:
		return "no_answer"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// ErrorData describes an error response: the raw body and its status code.
type ErrorData struct {
	ErrorMessage string `json:"error_message" yaml:"error_message"`
	StatusCode   int    `json:"status_code" yaml:"status_code"`
}

func (e ErrorData) String() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.ErrorMessage)
}

// ErrorText extracts the message of a {"text": "..."} error body. It falls back
// to the raw message when the body has another shape.
func (e ErrorData) ErrorText() string {
	var body struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(e.ErrorMessage), &body); err == nil && strings.TrimSpace(body.Text) != "" {
		return body.Text
	}
	return e.ErrorMessage
}

// Response is a classified response. Exactly one outcome is active; the zero
// value is NoAnswer.
type Response[T any] struct {
	outcome Outcome
	data    T
	errData ErrorData
}

// Successful builds a successful response carrying data.
func Successful[T any](data T) Response[T] {
	return Response[T]{outcome: OutcomeSuccessful, data: data}
}

// APIError builds an error response.
func APIError[T any](errData ErrorData) Response[T] {
	return Response[T]{outcome: OutcomeAPIError, errData: errData}
}

// NoAnswer builds a response for a request that got no answer.
func NoAnswer[T any]() Response[T] {
	return Response[T]{outcome: OutcomeNoAnswer}
}

// Outcome returns the active outcome.
func (r Response[T]) Outcome() Outcome { return r.outcome }

func (r Response[T]) IsSuccessful() bool { return r.outcome == OutcomeSuccessful }
func (r Response[T]) IsAPIError() bool   { return r.outcome == OutcomeAPIError }
func (r Response[T]) IsNoAnswer() bool   { return r.outcome == OutcomeNoAnswer }

// IsCompleted reports whether the API answered at all.
func (r Response[T]) IsCompleted() bool { return r.IsSuccessful() || r.IsAPIError() }

// Data returns the decoded body. It panics with a *MisuseError unless the
// response is successful.
func (r Response[T]) Data() T {
	if !r.IsSuccessful() {
		panic(&MisuseError{Op: "Data", Reason: "when response is " + r.outcome.String()})
	}
	return r.data
}

// DataOK returns the decoded body and whether the response is successful.
func (r Response[T]) DataOK() (T, bool) {
	return r.data, r.IsSuccessful()
}

// ErrorData returns the error details. It panics with a *MisuseError unless
// the response is an API error.
func (r Response[T]) ErrorData() ErrorData {
	if !r.IsAPIError() {
		panic(&MisuseError{Op: "ErrorData", Reason: "when response is " + r.outcome.String()})
	}
	return r.errData
}

// ErrorDataOK returns the error details and whether the response is an API error.
func (r Response[T]) ErrorDataOK() (ErrorData, bool) {
	return r.errData, r.IsAPIError()
}

// Match calls the function matching the active outcome. Nil functions are skipped.
func (r Response[T]) Match(onSuccess func(T), onError func(ErrorData), onNoAnswer func()) {
	switch r.outcome {
	case OutcomeSuccessful:
		if onSuccess != nil {
			onSuccess(r.data)
		}
	case OutcomeAPIError:
		if onError != nil {
			onError(r.errData)
		}
	default:
		if onNoAnswer != nil {
			onNoAnswer()
		}
	}
}

func (r Response[T]) String() string {
	switch r.outcome {
	case OutcomeSuccessful:
		return fmt.Sprintf("successful(%v)", r.data)
	case OutcomeAPIError:
		return fmt.Sprintf("api_error(%s)", r.errData)
	default:
		return "no_answer"
	}
}
