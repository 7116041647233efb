// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package grpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// codecName is the content-subtype for identity service messages
// ("application/grpc+json").
const codecName = "json"

// jsonCodec marshals messages as JSON so plain Go structs can travel over gRPC.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return codecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
