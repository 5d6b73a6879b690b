// SPDX-License-Identifier: MIT
package plugins

import (
	"crypto/md5"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"strings"

	"github.com/apimgr/metaseek/internal/engine"
)

// HashPlugin computes MD5/SHA-256/SHA-512 digests as an instant answer.
//
// Grounded on original_source/src/plugins/hash_plugin.rs.
type HashPlugin struct {
	*Base
}

// NewHashPlugin returns the hash instant-answer plugin.
func NewHashPlugin() *HashPlugin {
	return &HashPlugin{
		Base: NewBase("hash_plugin", "Hash Generator", "Generate MD5, SHA-256, SHA-512 hashes", true,
			"md5", "sha256", "sha512", "sha-256", "sha-512", "hash"),
	}
}

// Process expects "<algorithm> <input>", e.g. "md5 hello".
func (p *HashPlugin) Process(query string) (*engine.Answer, bool) {
	q := strings.ToLower(strings.TrimSpace(query))

	parts := strings.SplitN(q, " ", 2)
	if len(parts) != 2 {
		return nil, false
	}

	algorithm := parts[0]
	input := strings.TrimSpace(parts[1])
	if input == "" {
		return nil, false
	}

	hash, ok := computeHash(algorithm, input)
	if !ok {
		return nil, false
	}

	text := fmt.Sprintf("%s hash of %q: %s", strings.ToUpper(algorithm), input, hash)
	return &engine.Answer{Text: text, Engine: "hash_plugin"}, true
}

func computeHash(algorithm, input string) (string, bool) {
	switch strings.ToLower(algorithm) {
	case "md5":
		return fmt.Sprintf("%x", md5.Sum([]byte(input))), true
	case "sha256", "sha-256":
		return fmt.Sprintf("%x", sha256.Sum256([]byte(input))), true
	case "sha512", "sha-512":
		return fmt.Sprintf("%x", sha512.Sum512([]byte(input))), true
	default:
		return "", false
	}
}
