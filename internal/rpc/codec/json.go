// Package codec registers a plain-JSON gRPC codec. The generated protobuf
// stubs this service would normally ride on are not available to build in
// this environment (see DESIGN.md); this codec lets the real grpc.Server /
// grpc.ClientConn machinery carry the same message/service shape over JSON
// instead of the protobuf wire format.
package codec

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// Name is the codec name passed to grpc.CallContentSubtype / registered
// under Content-Type "application/grpc+json".
const Name = "json"

func init() {
	encoding.RegisterCodec(Codec{})
}

// Codec is the encoding.Codec / grpc.Codec implementation: JSON in, JSON
// out. Exported so callers can also pass it directly to grpc.ForceCodec
// without relying on by-name content-subtype negotiation.
type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("codec: marshal: %w", err)
	}
	return b, nil
}

func (Codec) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("codec: unmarshal: %w", err)
	}
	return nil
}

func (Codec) Name() string { return Name }
