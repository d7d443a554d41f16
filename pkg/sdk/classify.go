package sdk

import (
	"net/http"

	"github.com/gw2sdk/gw2sdk-go/pkg/httpclient"
	"github.com/gw2sdk/gw2sdk-go/pkg/serialization"
)

// Classify maps an optional raw response to a Response. A nil raw is NoAnswer,
// status 200 is Successful once the body decodes into T, and any other status is
// an APIError carrying the body verbatim. A 200 body that does not decode is
// returned as a *DeserializationError, never as an outcome.
//
// T of kind string receives the body unchanged. A nil dec selects JSON.
func Classify[T any](raw *httpclient.RawResponse, dec serialization.Deserializer) (Response[T], error) {
	if raw == nil {
		return NoAnswer[T](), nil
	}
	if raw.StatusCode != http.StatusOK {
		return APIError[T](ErrorData{ErrorMessage: raw.Content, StatusCode: raw.StatusCode}), nil
	}
	data, err := serialization.Decode[T](dec, raw.Content)
	if err != nil {
		return Response[T]{}, err
	}
	return Successful(data), nil
}
