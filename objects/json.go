package objects

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
)

// ToJSON returns canonical (RFC 8785) JSON text for v: object members are
// sorted by name and there is no insignificant whitespace, so equal values
// always produce identical text.
func ToJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("unable to marshal %T: %w", v, err)
	}
	data, err = jsoncanonicalizer.Transform(data)
	if err != nil {
		return "", fmt.Errorf("unable to canonicalize %T: %w", v, err)
	}
	return string(data), nil
}

// FromJSON decodes text into a value of type T. Unlike json.Unmarshal it
// refuses object members T does not define and anything following the value.
func FromJSON[T any](text string) (T, error) {
	var v T

	dec := json.NewDecoder(strings.NewReader(text))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, fmt.Errorf("unable to decode %T: %w", v, err)
	}
	if dec.More() {
		return v, fmt.Errorf("unable to decode %T: %w", v, errTrailingData)
	}
	return v, nil
}

// FromJSONList decodes sequence of values of type T separated by whitespace,
// e.g. one value per line. Empty text yields empty list.
func FromJSONList[T any](text string) ([]T, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.DisallowUnknownFields()

	var list []T
	for {
		var v T
		err := dec.Decode(&v)
		if errors.Is(err, io.EOF) {
			return list, nil
		}
		if err != nil {
			return nil, fmt.Errorf("unable to decode %T #%d: %w", v, len(list)+1, err)
		}
		list = append(list, v)
	}
}

var errTrailingData = errors.New("unexpected data after JSON value")
