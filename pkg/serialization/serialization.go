// Package serialization converts response bodies into typed values.
package serialization

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
)

// Deserializer decodes textual content into target, which is a non-nil pointer.
type Deserializer interface {
	Deserialize(content string, target any) error
}

// DeserializationError reports a body that could not be decoded into the requested type.
type DeserializationError struct {
	TypeName string
	Content  string
	Err      error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("failed to deserialize raw data into object of type '%s': %v", e.TypeName, e.Err)
}

func (e *DeserializationError) Unwrap() error { return e.Err }

// JSONDeserializer decodes JSON content. With Strict set, unknown object fields
// are rejected.
type JSONDeserializer struct {
	Strict bool
}

// JSON returns the lenient JSON deserializer.
func JSON() Deserializer { return JSONDeserializer{} }

// Deserialize implements Deserializer.
func (d JSONDeserializer) Deserialize(content string, target any) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(content)))
	if d.Strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(target); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("unexpected trailing data after JSON value at offset %d", dec.InputOffset())
	}
	return nil
}

// DeserializerFunc adapts a function to the Deserializer interface.
type DeserializerFunc func(content string, target any) error

// Deserialize implements Deserializer.
func (f DeserializerFunc) Deserialize(content string, target any) error { return f(content, target) }

// Decode deserializes content into a T using d. A T of kind string receives the
// content unchanged without consulting d. A nil d selects JSON.
func Decode[T any](d Deserializer, content string) (T, error) {
	var out T
	if v := reflect.ValueOf(&out).Elem(); v.Kind() == reflect.String {
		v.SetString(content)
		return out, nil
	}
	if d == nil {
		d = JSON()
	}
	if err := d.Deserialize(content, &out); err != nil {
		var zero T
		return zero, &DeserializationError{
			TypeName: TypeName[T](),
			Content:  content,
			Err:      err,
		}
	}
	return out, nil
}

// TypeName renders T for diagnostics.
func TypeName[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}
