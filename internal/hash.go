package internal

import (
	"fmt"
	"gitee.com/golang-module/dongle"
	"strings"
)

// HashAlgorithm names a digest the gateway accepts for SignatureValue.
type HashAlgorithm string

const (
	HashMD5       HashAlgorithm = "md5"
	HashRIPEMD160 HashAlgorithm = "ripemd160"
	HashSHA1      HashAlgorithm = "sha1"
	HashSHA256    HashAlgorithm = "sha256"
	HashSHA384    HashAlgorithm = "sha384"
	HashSHA512    HashAlgorithm = "sha512"
)

// DefaultHashAlgorithm is used when the merchant configuration leaves hash_algo empty.
const DefaultHashAlgorithm = HashMD5

type hashFunc func(string) string

type digest struct {
	size int // bytes
	sum  hashFunc
}

var digests = map[HashAlgorithm]digest{
	HashMD5: {16, func(s string) string {
		return dongle.Encrypt.FromString(s).ByMd5().ToHexString()
	}},
	HashRIPEMD160: {20, func(s string) string {
		return dongle.Encrypt.FromString(s).ByRipemd160().ToHexString()
	}},
	HashSHA1: {20, func(s string) string {
		return dongle.Encrypt.FromString(s).BySha1().ToHexString()
	}},
	HashSHA256: {32, func(s string) string {
		return dongle.Encrypt.FromString(s).BySha256().ToHexString()
	}},
	HashSHA384: {48, func(s string) string {
		return dongle.Encrypt.FromString(s).BySha384().ToHexString()
	}},
	HashSHA512: {64, func(s string) string {
		return dongle.Encrypt.FromString(s).BySha512().ToHexString()
	}},
}

// ParseHashAlgorithm resolves a configured name, ignoring case and surrounding spaces.
// An empty name selects DefaultHashAlgorithm.
func ParseHashAlgorithm(name string) (HashAlgorithm, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return DefaultHashAlgorithm, nil
	}
	algorithm := HashAlgorithm(name)
	if _, ok := digests[algorithm]; !ok {
		return "", fmt.Errorf("unsupported hash algorithm %q: %w", name, ErrConfiguration)
	}
	return algorithm, nil
}

// Size returns the digest length in bytes, zero for an unknown algorithm.
func (a HashAlgorithm) Size() int {
	return digests[a].size
}

func (a HashAlgorithm) String() string {
	return string(a)
}
