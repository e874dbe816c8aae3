package discovery

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protowire"
)

// RoleSigner 是查询中唯一被应答的角色。
const RoleSigner = "signer"

// maxMessageSize 限制单条发现报文大小。
const maxMessageSize = 4096

// Status 表示应答方对查询版本的判定。
type Status uint64

const (
	StatusOK           Status = 0
	StatusIncompatible Status = 1
)

// Query 由 UI/应用发出。
type Query struct {
	DesiredVersion string
	Nonce          uint64
	Role           string
}

// Announcement 由 signer 应答。
type Announcement struct {
	Endpoint   string
	Version    string
	Status     Status
	InstanceID string
	Nonce      uint64
}

var errMalformed = errors.New("malformed discovery message")

// Marshal 以 protobuf wire 格式编码。
func (q Query) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, q.DesiredVersion)
	b = appendVarint(b, 2, q.Nonce)
	b = appendString(b, 3, q.Role)
	return b
}

// UnmarshalQuery 解码查询，未知字段被忽略。
func UnmarshalQuery(b []byte) (Query, error) {
	var q Query
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			q.DesiredVersion = v
			return n, nil
		case num == 2 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			q.Nonce = v
			return n, nil
		case num == 3 && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			q.Role = v
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
	return q, err
}

// Marshal 以 protobuf wire 格式编码。
func (a Announcement) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, a.Endpoint)
	b = appendString(b, 2, a.Version)
	b = appendVarint(b, 3, uint64(a.Status))
	b = appendString(b, 4, a.InstanceID)
	b = appendVarint(b, 5, a.Nonce)
	return b
}

// UnmarshalAnnouncement 解码应答，未知字段被忽略。
func UnmarshalAnnouncement(b []byte) (Announcement, error) {
	var a Announcement
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			a.Endpoint = v
			return n, nil
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			a.Version = v
			return n, nil
		case num == 3 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			a.Status = Status(v)
			return n, nil
		case num == 4 && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			a.InstanceID = v
			return n, nil
		case num == 5 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			a.Nonce = v
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
	return a, err
}

func walkFields(b []byte, field func(num protowire.Number, typ protowire.Type, b []byte) (int, error)) error {
	if len(b) > maxMessageSize {
		return fmt.Errorf("%w: %d bytes", errMalformed, len(b))
	}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", errMalformed, protowire.ParseError(n))
		}
		b = b[n:]
		m, err := field(num, typ, b)
		if err != nil {
			return err
		}
		if m < 0 {
			return fmt.Errorf("%w: %v", errMalformed, protowire.ParseError(m))
		}
		b = b[m:]
	}
	return nil
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

// writeFrame 以 varint 长度前缀写出一条报文，用于流式本地通道。
func writeFrame(w io.Writer, msg []byte) error {
	_, err := w.Write(protowire.AppendBytes(nil, msg))
	return err
}

// readFrame 读取一条 varint 长度前缀的报文。
func readFrame(r *bufio.Reader) ([]byte, error) {
	size, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, err
	}
	if size > maxMessageSize {
		return nil, fmt.Errorf("%w: frame of %d bytes", errMalformed, size)
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
