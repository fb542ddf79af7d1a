// Package proto holds the protobuf sources. Stubs land in gen/proto;
// regenerate with go generate ./proto after editing a .proto file.
package proto

//go:generate protoc --go_out=.. --go_opt=module=github.com/storylingo/storylingo --go-grpc_out=.. --go-grpc_opt=module=github.com/storylingo/storylingo auth/v1/auth.proto
