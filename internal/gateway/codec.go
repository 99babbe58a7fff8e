package gateway

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/rileyhilliard/sysdeck/internal/errors"
)

// Codec encodes request arguments and response envelopes on the wire.
type Codec interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// Codec names accepted in config and on the backend command line.
const (
	CodecJSON = "json"
	CodecCBOR = "cbor"
)

// CodecByName returns the codec registered under name. An empty name
// selects JSON.
func CodecByName(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", CodecJSON:
		return JSONCodec{}, nil
	case CodecCBOR:
		return NewCBORCodec()
	default:
		return nil, errors.New(errors.ErrConfig,
			fmt.Sprintf("unknown gateway codec %q", name),
			"Use 'json' or 'cbor' for gateway.codec.")
	}
}

// JSONCodec is the default wire format.
type JSONCodec struct{}

func (JSONCodec) Name() string                       { return CodecJSON }
func (JSONCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (JSONCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// CBORCodec is a compact binary wire format. Generic maps decode as
// map[string]any so results look the same as with JSON.
type CBORCodec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

// NewCBORCodec builds the CBOR encoder and decoder modes.
func NewCBORCodec() (*CBORCodec, error) {
	enc, err := cbor.EncOptions{Time: cbor.TimeRFC3339}.EncMode()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig, "couldn't set up CBOR encoder", "")
	}
	dec, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig, "couldn't set up CBOR decoder", "")
	}
	return &CBORCodec{enc: enc, dec: dec}, nil
}

func (c *CBORCodec) Name() string                       { return CodecCBOR }
func (c *CBORCodec) Marshal(v any) ([]byte, error)      { return c.enc.Marshal(v) }
func (c *CBORCodec) Unmarshal(data []byte, v any) error { return c.dec.Unmarshal(data, v) }

// roundTrip re-encodes a Go value into its generic decoded form, so
// in-process results have the same shape as ones read off the wire.
func roundTrip(c Codec, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	data, err := c.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := c.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
