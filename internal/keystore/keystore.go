// Package keystore 管理加密的账户密钥文件，并在签名时按需解锁单个密钥。
package keystore

import (
	"context"
	"crypto/ecdsa"
	"log/slog"
	"os"

	"github.com/ethereum/go-ethereum/accounts"
	gethks "github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

var (
	// ErrAccountNotFound 表示 keystore 中没有该地址的密钥文件。
	ErrAccountNotFound = errors.New("account not found in keystore")
	// ErrAuthentication 表示凭证无法解密密钥文件。
	ErrAuthentication = errors.New("credential does not unlock account")
	// ErrKeyZeroed 表示密钥已被清除。
	ErrKeyZeroed = errors.New("unlocked key already zeroed")
)

// Store 封装目录形式的 keystore。
type Store struct {
	dir    string
	ks     *gethks.KeyStore
	logger *slog.Logger
}

// Option 自定义 Store。
type Option func(*Store)

// WithLogger 注入 slog Logger。
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Open 打开（必要时创建）keystore 目录。light 为 true 时使用低成本 scrypt 参数，
// 仅适用于测试与开发环境。
func Open(dir string, light bool, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrapf(err, "create keystore dir %s", dir)
	}
	n, p := gethks.StandardScryptN, gethks.StandardScryptP
	if light {
		n, p = gethks.LightScryptN, gethks.LightScryptP
	}
	s := &Store{
		dir:    dir,
		ks:     gethks.NewKeyStore(dir, n, p),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir 返回 keystore 目录。
func (s *Store) Dir() string { return s.dir }

// Accounts 列出全部账户。
func (s *Store) Accounts() []accounts.Account {
	return s.ks.Accounts()
}

// Has 判断账户是否存在。
func (s *Store) Has(addr common.Address) bool {
	return s.ks.HasAddress(addr)
}

// NewAccount 生成新密钥并以 passphrase 加密落盘。
func (s *Store) NewAccount(passphrase string) (accounts.Account, error) {
	acct, err := s.ks.NewAccount(passphrase)
	if err != nil {
		return accounts.Account{}, errors.Wrap(err, "create account")
	}
	s.logger.Info("account created", slog.String("address", acct.Address.Hex()))
	return acct, nil
}

// Import 导入外部密钥文件，并以 newPassphrase 重新加密。
func (s *Store) Import(keyJSON []byte, passphrase, newPassphrase string) (accounts.Account, error) {
	acct, err := s.ks.Import(keyJSON, passphrase, newPassphrase)
	if err != nil {
		if errors.Is(err, gethks.ErrDecrypt) {
			return accounts.Account{}, ErrAuthentication
		}
		return accounts.Account{}, errors.Wrap(err, "import account")
	}
	s.logger.Info("account imported", slog.String("address", acct.Address.Hex()))
	return acct, nil
}

// Export 以 newPassphrase 重新加密并导出 addr 的密钥文件，原文件不变。
func (s *Store) Export(addr common.Address, passphrase, newPassphrase string) ([]byte, error) {
	keyJSON, err := s.ks.Export(accounts.Account{Address: addr}, passphrase, newPassphrase)
	if err != nil {
		return nil, s.mapKeyError(err, "export account")
	}
	s.logger.Info("account exported", slog.String("address", addr.Hex()))
	return keyJSON, nil
}

// Update 修改 addr 的 passphrase。
func (s *Store) Update(addr common.Address, passphrase, newPassphrase string) error {
	if err := s.ks.Update(accounts.Account{Address: addr}, passphrase, newPassphrase); err != nil {
		return s.mapKeyError(err, "update account")
	}
	s.logger.Info("account passphrase changed", slog.String("address", addr.Hex()))
	return nil
}

func (s *Store) mapKeyError(err error, op string) error {
	switch {
	case errors.Is(err, gethks.ErrDecrypt):
		return ErrAuthentication
	case errors.Is(err, gethks.ErrNoMatch):
		return ErrAccountNotFound
	}
	return errors.Wrap(err, op)
}

// Unlock 用 secret 解密 addr 对应的密钥文件。返回的密钥用完必须调用 Zero。
// secret 不会被保留。
func (s *Store) Unlock(ctx context.Context, addr common.Address, secret []byte) (*UnlockedKey, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	acct, err := s.ks.Find(accounts.Account{Address: addr})
	if err != nil {
		return nil, ErrAccountNotFound
	}
	keyJSON, err := os.ReadFile(acct.URL.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "read keyfile for %s", addr.Hex())
	}
	key, err := gethks.DecryptKey(keyJSON, string(secret))
	if err != nil {
		if errors.Is(err, gethks.ErrDecrypt) {
			return nil, ErrAuthentication
		}
		return nil, errors.Wrapf(err, "decrypt keyfile for %s", addr.Hex())
	}
	if key.Address != addr {
		zeroKey(key.PrivateKey)
		return nil, errors.Errorf("keyfile address mismatch: want %s got %s", addr.Hex(), key.Address.Hex())
	}
	return &UnlockedKey{address: addr, priv: key.PrivateKey}, nil
}

// UnlockedKey 是单次签名期间持有的明文私钥。
type UnlockedKey struct {
	address common.Address
	priv    *ecdsa.PrivateKey
}

// Address 返回账户地址。
func (k *UnlockedKey) Address() common.Address { return k.address }

// Sign 对 32 字节哈希签名，返回 [R || S || V]，V 为 0/1。
func (k *UnlockedKey) Sign(hash []byte) ([]byte, error) {
	if k == nil || k.priv == nil {
		return nil, ErrKeyZeroed
	}
	return crypto.Sign(hash, k.priv)
}

// Zero 清除私钥标量。
func (k *UnlockedKey) Zero() {
	if k == nil || k.priv == nil {
		return
	}
	zeroKey(k.priv)
	k.priv = nil
}

func zeroKey(k *ecdsa.PrivateKey) {
	if k == nil || k.D == nil {
		return
	}
	b := k.D.Bits()
	for i := range b {
		b[i] = 0
	}
}
