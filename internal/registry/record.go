// Package registry 维护 signer 实例当前唯一生效的 UI 回调注册。
package registry

import (
	"slices"
	"time"
)

// Capability 是 UI 声明的能力。
type Capability string

// CapabilityCredentialPrompt 表示 UI 能够向用户索取解锁凭证。
const CapabilityCredentialPrompt Capability = "credential_prompt"

// Record 是一条 UI 注册记录，由 Registry 独占管理。
type Record struct {
	ID               string       `json:"id"`
	CallbackEndpoint string       `json:"callback_endpoint"`
	Capabilities     []Capability `json:"capabilities"`
	RegisteredAt     time.Time    `json:"registered_at"`
	RefreshedAt      time.Time    `json:"refreshed_at"`
	ExpiresAt        time.Time    `json:"expires_at"`
}

// Has 判断记录是否声明了某项能力。
func (r Record) Has(c Capability) bool {
	return slices.Contains(r.Capabilities, c)
}

// Expired 判断记录在 now 时刻是否已过期。
func (r Record) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

func (r Record) clone() Record {
	r.Capabilities = slices.Clone(r.Capabilities)
	return r
}
