// Package api defines the travelmate.v1 RPC surface: message types, procedure names,
// and Connect handler and client constructors. Messages are plain Go structs carried
// as JSON over the Connect protocol.
package api

import (
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
)

// CodecName replaces Connect's protobuf-backed JSON codec.
const CodecName = "json"

// Codec marshals messages with encoding/json.
type Codec struct{}

var _ connect.Codec = Codec{}

func (Codec) Name() string { return CodecName }

func (Codec) Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", v, err)
	}
	return data, nil
}

func (Codec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %T: %w", v, err)
	}
	return nil
}

// handlerOptions prepends the JSON codec to caller options.
func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
}

// clientOptions forces the JSON codec; clients carry a single codec.
func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append(opts, connect.WithCodec(Codec{}))
}
