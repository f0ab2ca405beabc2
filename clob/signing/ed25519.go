package signing

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mr-tron/base58"
)

// KeyPrefixEd25519 公钥算法前缀，格式 "ed25519:<base58>"
const KeyPrefixEd25519 = "ed25519:"

// ErrInvalidPrivateKey 私钥不是 32 字节 ed25519 种子
var ErrInvalidPrivateKey = errors.New("无效的 ed25519 私钥")

// SignEd25519 使用 32 字节种子对消息签名，返回 64 字节签名。
// ed25519 是确定性的：相同消息和密钥总是得到相同签名。
func SignEd25519(message []byte, privateKey []byte) ([]byte, error) {
	if len(privateKey) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: 需要 %d 字节，实际 %d", ErrInvalidPrivateKey, ed25519.SeedSize, len(privateKey))
	}
	key := ed25519.NewKeyFromSeed(privateKey)
	return ed25519.Sign(key, message), nil
}

// VerifyEd25519 使用原始 32 字节公钥验证签名
func VerifyEd25519(message, signature []byte, publicKey []byte) bool {
	if len(publicKey) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(publicKey), message, signature)
}

// KeyPair 新生成的 orderly key
type KeyPair struct {
	PublicKey  string // 带前缀
	PrivateKey []byte // 种子
}

// Secret 以与公钥相同的带前缀 base58 格式返回种子
func (k *KeyPair) Secret() string {
	return EncodePrivateKey(k.PrivateKey)
}

// EncodePrivateKey 把种子编码为 "ed25519:<base58>"，ParsePrivateKey 的逆操作
func EncodePrivateKey(seed []byte) string {
	return KeyPrefixEd25519 + base58.Encode(seed)
}

// GenerateKeyPair 生成新的 ed25519 密钥，rnd 为 nil 时使用 crypto/rand
func GenerateKeyPair(rnd io.Reader) (*KeyPair, error) {
	if rnd == nil {
		rnd = rand.Reader
	}
	pub, priv, err := ed25519.GenerateKey(rnd)
	if err != nil {
		return nil, fmt.Errorf("生成 ed25519 密钥失败: %w", err)
	}
	return &KeyPair{
		PublicKey:  EncodePublicKey(pub),
		PrivateKey: priv.Seed(),
	}, nil
}

// PublicKeyFromSeed 由种子推导带前缀的公钥
func PublicKeyFromSeed(seed []byte) (string, error) {
	if len(seed) != ed25519.SeedSize {
		return "", fmt.Errorf("%w: 需要 %d 字节，实际 %d", ErrInvalidPrivateKey, ed25519.SeedSize, len(seed))
	}
	pub := ed25519.NewKeyFromSeed(seed).Public().(ed25519.PublicKey)
	return EncodePublicKey(pub), nil
}

// EncodePublicKey 把原始公钥编码为 "ed25519:<base58>"
func EncodePublicKey(pub []byte) string {
	return KeyPrefixEd25519 + base58.Encode(pub)
}

// ParsePublicKey 解析带前缀的公钥
func ParsePublicKey(tagged string) ([]byte, error) {
	tagged = strings.TrimSpace(tagged)
	if !strings.HasPrefix(tagged, KeyPrefixEd25519) {
		return nil, fmt.Errorf("公钥 %q 缺少 %q 前缀", tagged, KeyPrefixEd25519)
	}
	raw, err := base58.Decode(strings.TrimPrefix(tagged, KeyPrefixEd25519))
	if err != nil {
		return nil, fmt.Errorf("解析公钥失败: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("公钥长度错误: 需要 %d 字节，实际 %d", ed25519.PublicKeySize, len(raw))
	}
	return raw, nil
}

// ParsePrivateKey 解析私钥，支持 "ed25519:<base58>"、纯 base58 和 0x 十六进制，
// 返回 32 字节种子
func ParsePrivateKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: 为空", ErrInvalidPrivateKey)
	}
	var (
		raw []byte
		err error
	)
	if strings.HasPrefix(s, "0x") {
		raw, err = hex.DecodeString(s[2:])
	} else {
		raw, err = base58.Decode(strings.TrimPrefix(s, KeyPrefixEd25519))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}
	if len(raw) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: 需要 %d 字节，实际 %d", ErrInvalidPrivateKey, ed25519.SeedSize, len(raw))
	}
	return raw, nil
}
