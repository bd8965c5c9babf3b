// Package keygen generates and reuses the SSH key pair injected into
// provisioned instances.
package keygen

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/ssh"
)

// DefaultBits is the RSA key size used for generated pairs.
const DefaultBits = 4096

// KeyPair holds an RSA key pair in ready-to-use formats.
type KeyPair struct {
	// PrivateKey is the RSA private key in PEM-encoded PKCS#1 format.
	PrivateKey []byte
	// PublicKey is the public key in OpenSSH authorized_keys format.
	PublicKey []byte

	PrivateKeyPath string
	PublicKeyPath  string
}

// EnsureKeyPair returns the key pair under dir, generating one only if
// none exists yet. Re-running never rotates an existing key: instances
// already provisioned with the old public key would become unreachable.
func EnsureKeyPair(dir string) (*KeyPair, error) {
	privPath := filepath.Join(dir, "id_rsa")
	pubPath := filepath.Join(dir, "id_rsa.pub")

	priv, privErr := os.ReadFile(privPath) // #nosec G304 -- engine-built path
	pub, pubErr := os.ReadFile(pubPath)    // #nosec G304 -- engine-built path
	if privErr == nil && pubErr == nil {
		log.Debug().Str("dir", dir).Msg("reusing existing ssh key pair")
		return &KeyPair{
			PrivateKey:     priv,
			PublicKey:      pub,
			PrivateKeyPath: privPath,
			PublicKeyPath:  pubPath,
		}, nil
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create key directory: %w", err)
	}

	pair, err := generateRSAKeyPair(DefaultBits)
	if err != nil {
		return nil, err
	}
	pair.PrivateKeyPath = privPath
	pair.PublicKeyPath = pubPath

	if err := os.WriteFile(privPath, pair.PrivateKey, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write private key: %w", err)
	}
	if err := os.WriteFile(pubPath, pair.PublicKey, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write public key: %w", err)
	}

	log.Info().Str("path", pubPath).Msg("generated new ssh key pair")
	return pair, nil
}

func generateRSAKeyPair(bits int) (*KeyPair, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA private key: %w", err)
	}
	if err := privateKey.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate RSA private key: %w", err)
	}

	privDER := x509.MarshalPKCS1PrivateKey(privateKey)
	privateKeyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: privDER,
	})

	publicKey, err := ssh.NewPublicKey(&privateKey.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSH public key: %w", err)
	}

	return &KeyPair{
		PrivateKey: privateKeyPEM,
		PublicKey:  ssh.MarshalAuthorizedKey(publicKey),
	}, nil
}
