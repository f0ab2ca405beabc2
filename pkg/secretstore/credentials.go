package secretstore

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/joho/godotenv"

	"github.com/betbot/orderly/clob/signing"
	"github.com/betbot/orderly/clob/types"
)

// ErrNotFound 存储中没有凭证
var ErrNotFound = errors.New("凭证不存在")

// 凭证字段名，dotenv 与 badger 共用
const (
	KeyAccountID = "ORDERLY_ACCOUNT_ID"
	KeyPublicKey = "ORDERLY_KEY"
	KeySecret    = "ORDERLY_SECRET"
)

// CredentialStore 持久化 orderly key 凭证
type CredentialStore interface {
	Load() (*types.Credential, error)
	Save(cred *types.Credential) error
}

func credentialToMap(cred *types.Credential) (map[string]string, error) {
	if cred == nil || cred.AccountID == "" || cred.PublicKey == "" {
		return nil, errors.New("凭证不完整")
	}
	if len(cred.PrivateKey) != 32 {
		return nil, signing.ErrInvalidPrivateKey
	}
	return map[string]string{
		KeyAccountID: cred.AccountID,
		KeyPublicKey: cred.PublicKey,
		KeySecret:    signing.EncodePrivateKey(cred.PrivateKey),
	}, nil
}

func credentialFromMap(kv map[string]string) (*types.Credential, error) {
	if kv[KeyAccountID] == "" || kv[KeySecret] == "" {
		return nil, ErrNotFound
	}
	seed, err := signing.ParsePrivateKey(kv[KeySecret])
	if err != nil {
		return nil, err
	}
	pub := kv[KeyPublicKey]
	if pub == "" {
		if pub, err = signing.PublicKeyFromSeed(seed); err != nil {
			return nil, err
		}
	}
	return &types.Credential{AccountID: kv[KeyAccountID], PublicKey: pub, PrivateKey: seed}, nil
}

// BadgerStore 凭证存放在加密的 Badger 库中
type BadgerStore struct {
	store  *Store
	prefix string
}

// NewBadgerStore prefix 为库内 key 前缀，例如 "orderly/"
func NewBadgerStore(store *Store, prefix string) *BadgerStore {
	return &BadgerStore{store: store, prefix: prefix}
}

// Load 读取凭证
func (b *BadgerStore) Load() (*types.Credential, error) {
	kv := make(map[string]string, 3)
	for _, k := range []string{KeyAccountID, KeyPublicKey, KeySecret} {
		v, _, err := b.store.GetString(b.prefix + k)
		if err != nil {
			return nil, fmt.Errorf("读取 %s 失败: %w", k, err)
		}
		kv[k] = v
	}
	return credentialFromMap(kv)
}

// Save 写入凭证
func (b *BadgerStore) Save(cred *types.Credential) error {
	kv, err := credentialToMap(cred)
	if err != nil {
		return err
	}
	prefixed := make(map[string]string, len(kv))
	for k, v := range kv {
		prefixed[b.prefix+k] = v
	}
	return b.store.SetStrings(prefixed)
}

// DotenvStore 凭证存放在 .env 文件中，保存时保留文件里的其他变量
type DotenvStore struct {
	mu   sync.Mutex
	path string
}

// NewDotenvStore 创建 .env 凭证存储
func NewDotenvStore(path string) *DotenvStore {
	return &DotenvStore{path: path}
}

// Load 读取凭证，文件不存在时返回 ErrNotFound
func (d *DotenvStore) Load() (*types.Credential, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	kv, err := d.read()
	if err != nil {
		return nil, err
	}
	return credentialFromMap(kv)
}

// Save 写入凭证
func (d *DotenvStore) Save(cred *types.Credential) error {
	creds, err := credentialToMap(cred)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	kv, err := d.read()
	if err != nil {
		return err
	}
	for k, v := range creds {
		kv[k] = v
	}
	if err := godotenv.Write(kv, d.path); err != nil {
		return fmt.Errorf("写入 %s 失败: %w", d.path, err)
	}
	return os.Chmod(d.path, 0600)
}

func (d *DotenvStore) read() (map[string]string, error) {
	kv, err := godotenv.Read(d.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("读取 %s 失败: %w", d.path, err)
	}
	return kv, nil
}

// MemoryStore 进程内凭证存储
type MemoryStore struct {
	mu   sync.RWMutex
	cred *types.Credential
}

// NewMemoryStore 创建内存存储，cred 可为 nil
func NewMemoryStore(cred *types.Credential) *MemoryStore {
	return &MemoryStore{cred: cred}
}

// Load 读取凭证
func (m *MemoryStore) Load() (*types.Credential, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cred == nil {
		return nil, ErrNotFound
	}
	c := *m.cred
	c.PrivateKey = append([]byte(nil), m.cred.PrivateKey...)
	return &c, nil
}

// Save 写入凭证
func (m *MemoryStore) Save(cred *types.Credential) error {
	if _, err := credentialToMap(cred); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *cred
	c.PrivateKey = append([]byte(nil), cred.PrivateKey...)
	m.cred = &c
	return nil
}
