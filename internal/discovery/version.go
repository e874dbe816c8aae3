// Package discovery 实现 UI/应用侧定位 signer 服务并协商协议版本。
package discovery

import (
	"fmt"
	"strconv"
	"strings"
)

// ProtocolVersion 是本实现对外声明的 signer 协议版本。
const ProtocolVersion = "1.0.0"

// Version 是 major.minor.patch 形式的协议版本。
type Version struct {
	Major uint32
	Minor uint32
	Patch uint32
}

// ParseVersion 解析 "1"、"1.2"、"v1.2.3" 等写法，缺省部分视为 0。
func ParseVersion(raw string) (Version, error) {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "v")
	if raw == "" {
		return Version{}, fmt.Errorf("empty version")
	}
	parts := strings.Split(raw, ".")
	if len(parts) > 3 {
		return Version{}, fmt.Errorf("invalid version %q", raw)
	}
	var nums [3]uint32
	for i, part := range parts {
		n, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return Version{}, fmt.Errorf("invalid version %q: %w", raw, err)
		}
		nums[i] = uint32(n)
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// MustParseVersion 用于常量初始化。
func MustParseVersion(raw string) Version {
	v, err := ParseVersion(raw)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// CompatibleWith 仅要求 major 相同，minor/patch 差异视为兼容。
func (v Version) CompatibleWith(other Version) bool {
	return v.Major == other.Major
}
