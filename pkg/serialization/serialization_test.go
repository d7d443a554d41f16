package serialization

import (
	"errors"
	"reflect"
	"testing"
)

type point struct {
	X string `json:"x"`
	Y int    `json:"y"`
}

func TestDecodeStruct(t *testing.T) {
	got, err := Decode[point](JSON(), `{"x":"OK","y":2}`)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != (point{X: "OK", Y: 2}) {
		t.Fatalf("unexpected value %+v", got)
	}
}

func TestDecodeSlice(t *testing.T) {
	got, err := Decode[[]int64](nil, `[1, 2, 3]`)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(got, []int64{1, 2, 3}) {
		t.Fatalf("unexpected value %v", got)
	}
}

func TestDecodeStringIsPassthrough(t *testing.T) {
	called := false
	d := DeserializerFunc(func(string, any) error {
		called = true
		return errors.New("should not be called")
	})

	got, err := Decode[string](d, "not json at all")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != "not json at all" {
		t.Fatalf("unexpected value %q", got)
	}
	if called {
		t.Fatalf("deserializer must be skipped for string targets")
	}
}

type version string

func TestDecodeNamedStringIsPassthrough(t *testing.T) {
	got, err := Decode[version](JSON(), "v2 text")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != "v2 text" {
		t.Fatalf("unexpected value %q", got)
	}
}

func TestDecodeAllowsTrailingWhitespace(t *testing.T) {
	got, err := Decode[point](JSON(), "{\"x\":\"OK\",\"y\":2}\n\t ")
	if err != nil || got.Y != 2 {
		t.Fatalf("Decode = %+v, %v", got, err)
	}
}

func TestDecodeMalformedReturnsDeserializationError(t *testing.T) {
	bodies := []string{
		"invalid",
		"",
		`{"x":"OK"} trailing`,
		`{"x":1}`,
		`{"x":"OK","y":2}}`,
		`{"x":"OK","y":2}]`,
		`{"x":"OK","y":2}{}`,
	}
	for _, body := range bodies {
		_, err := Decode[point](JSON(), body)
		var derr *DeserializationError
		if !errors.As(err, &derr) {
			t.Fatalf("body %q: expected DeserializationError, got %v", body, err)
		}
		if derr.Content != body {
			t.Fatalf("body %q: content not preserved, got %q", body, derr.Content)
		}
		if derr.TypeName != "serialization.point" {
			t.Fatalf("unexpected type name %q", derr.TypeName)
		}
	}
}

func TestStrictRejectsUnknownFields(t *testing.T) {
	body := `{"x":"OK","y":2,"z":true}`
	if _, err := Decode[point](JSON(), body); err != nil {
		t.Fatalf("lenient decode failed: %v", err)
	}
	if _, err := Decode[point](JSONDeserializer{Strict: true}, body); err == nil {
		t.Fatalf("strict decode should reject unknown field")
	}
}
