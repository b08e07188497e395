// Package dhtv1 defines the peer-to-peer RPC surface (§6) as plain Go
// structs dispatched over grpc.ServiceDesc, in the shape protoc-gen-go-grpc
// would normally generate from a .proto file (see DESIGN.md for why the
// protobuf generator isn't used here).
package dhtv1

// Empty is the request/response for RPCs that carry no payload.
type Empty struct{}

// NodeInfo mirrors domain.NodeInfo on the wire.
type NodeInfo struct {
	ID   uint64 `json:"id"`
	Addr string `json:"addr"`
}

// FindSuccessorRequest carries the target ring identifier to resolve.
type FindSuccessorRequest struct {
	ID uint64 `json:"id"`
}

// SuccessorListResponse carries a node's successor list.
type SuccessorListResponse struct {
	Successors []NodeInfo `json:"successors"`
}

// PutRequest carries a key/value pair to store.
type PutRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// PutResponse reports whether the put succeeded.
type PutResponse struct {
	Success bool `json:"success"`
}

// ReplicateRequest carries a key/value pair pushed to a replica.
type ReplicateRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// GetRequest carries the key to retrieve.
type GetRequest struct {
	Key string `json:"key"`
}

// GetResponse carries the retrieved value, if any.
type GetResponse struct {
	Value string `json:"value"`
	Found bool   `json:"found"`
}

// TransferKeysRequest carries a batch of key/value pairs handed off during
// notify-triggered or leave-triggered transfer.
type TransferKeysRequest struct {
	Entries map[string]string `json:"entries"`
}
