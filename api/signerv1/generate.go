// Package signerv1 是 signer.v1 的 protobuf 消息与 gRPC 服务存根，由 api/proto/signer/v1/signer.proto 生成。
package signerv1

//go:generate protoc -I ../proto --go_out=../.. --go_opt=module=github.com/aegis-sign/jadesigner --go-grpc_out=../.. --go-grpc_opt=module=github.com/aegis-sign/jadesigner signer/v1/signer.proto
