// Package security implements the gRPC transport for the security engine.
//
// The service descriptor is declared by hand over protobuf well-known types
// (Struct, StringValue, BytesValue, Empty), so no generated code is needed.
// Server adapts the engine to the SecurityServiceServer interface and the
// Encode/Decode helpers are shared with the client.
package security
