package signer

import (
	"context"
	"errors"

	"github.com/aegis-sign/jadesigner/internal/keystore"
	"github.com/aegis-sign/jadesigner/pkg/apierrors"
	"github.com/ethereum/go-ethereum/common"
)

// KeystoreUnlocker 将 keystore 适配为 Unlocker，并把其错误翻译为业务错误码。
type KeystoreUnlocker struct {
	store *keystore.Store
}

// NewKeystoreUnlocker 构造 KeystoreUnlocker。
func NewKeystoreUnlocker(store *keystore.Store) *KeystoreUnlocker {
	return &KeystoreUnlocker{store: store}
}

// Has 实现 AccountChecker。
func (u *KeystoreUnlocker) Has(account common.Address) bool {
	return u.store.Has(account)
}

// Unlock 解锁一次，不做任何重试。
func (u *KeystoreUnlocker) Unlock(ctx context.Context, account common.Address, secret []byte) (Key, error) {
	key, err := u.store.Unlock(ctx, account, secret)
	switch {
	case err == nil:
		return key, nil
	case errors.Is(err, keystore.ErrAuthentication):
		return nil, apierrors.New(apierrors.CodeAuthenticationFailed, "credential rejected")
	case errors.Is(err, keystore.ErrAccountNotFound):
		return nil, apierrors.New(apierrors.CodeInvalidKey, "account not found")
	default:
		return nil, err
	}
}
