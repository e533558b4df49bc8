package keys

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// KeyStore is a simple local-first filesystem layout for replica root seeds
// and their purpose-scoped derived subkeys.
//
// EXPERIMENTAL: this is operator tooling around the kernel, not part of the
// kernel's own (I/O-free) contract.
//
// - Supports Ed25519 (CLASSIC suite) keys only.
// - One root seed per replica, under a directory keyed by replicaid.ID.String().
// - Purpose-scoped subkeys (e.g. "holder", "delegate") derived on demand.
type KeyStore struct {
	Directory string
}

// ReplicaKeyEntry describes one replica's stored root key and the purposes
// it has derived subkeys for.
type ReplicaKeyEntry struct {
	Replica  string
	Purposes []string
}

func DefaultDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".amulet", "keys"), nil
}

func OpenKeyStore(directory string) (*KeyStore, error) {
	if directory == "" {
		var err error
		directory, err = DefaultDirectory()
		if err != nil {
			return nil, err
		}
	}
	return &KeyStore{Directory: directory}, nil
}

func (ks *KeyStore) rootKeyFilePath(replica string) string {
	return filepath.Join(ks.Directory, replica, "root.seed")
}

func (ks *KeyStore) purposeKeyFilePath(replica, purpose string) string {
	return filepath.Join(ks.Directory, replica, "purposes", purpose+".seed")
}

// CheckReplicaName validates a replica directory component. It does not
// require full UUID syntax so that tests and operators can use short
// mnemonic names; replicaid.ID.String() values always pass.
func CheckReplicaName(replica string) error {
	if replica == "" {
		return errors.New("replica name cannot be empty")
	}
	for _, char := range replica {
		if (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') || char == '-' || char == '_' {
			continue
		}
		return fmt.Errorf("invalid character %q in replica name", char)
	}
	return nil
}

// CheckPurpose validates a purpose-scope label ("holder", "delegate", ...).
func CheckPurpose(purpose string) error {
	if purpose == "" {
		return errors.New("purpose cannot be empty")
	}
	for _, char := range purpose {
		if (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') || char == '-' || char == '_' {
			continue
		}
		return fmt.Errorf("invalid character %q in purpose", char)
	}
	return nil
}

func ParseSeedHex(seedHex string) ([]byte, error) {
	seedHex = strings.TrimSpace(seedHex)
	seedHex = strings.TrimPrefix(seedHex, "0x")
	data, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, err
	}
	if len(data) != ed25519.SeedSize {
		return nil, fmt.Errorf("expected seed length of %d bytes, got %d", ed25519.SeedSize, len(data))
	}
	return data, nil
}

func (ks *KeyStore) saveSeedToFile(filePath string, seed []byte, overwrite bool) error {
	if len(seed) != ed25519.SeedSize {
		return fmt.Errorf("expected seed length of %d bytes", ed25519.SeedSize)
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0o700); err != nil {
		return err
	}
	flags := os.O_WRONLY | os.O_CREATE
	if overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_EXCL
	}
	file, err := os.OpenFile(filePath, flags, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()
	if _, err := file.WriteString(hex.EncodeToString(seed) + "\n"); err != nil {
		return err
	}
	return file.Close()
}

func (ks *KeyStore) loadSeedFromFile(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return ParseSeedHex(strings.TrimSpace(string(data)))
}

// InitializeRoot writes a replica's root seed and returns its holder string.
func (ks *KeyStore) InitializeRoot(replica string, seed []byte, overwrite bool) (holder string, filePath string, err error) {
	if err := CheckReplicaName(replica); err != nil {
		return "", "", err
	}
	filePath = ks.rootKeyFilePath(replica)
	if err := ks.saveSeedToFile(filePath, seed, overwrite); err != nil {
		return "", "", err
	}
	holder, err = HolderStringFromSeed(seed)
	return holder, filePath, err
}

// DerivePurposeKey derives and stores a purpose-scoped subkey from the
// replica's root seed, returning its holder string.
func (ks *KeyStore) DerivePurposeKey(replica, purpose string, overwrite bool) (holder string, filePath string, err error) {
	if err := CheckReplicaName(replica); err != nil {
		return "", "", err
	}
	if err := CheckPurpose(purpose); err != nil {
		return "", "", err
	}
	rootSeed, err := ks.loadSeedFromFile(ks.rootKeyFilePath(replica))
	if err != nil {
		return "", "", err
	}
	purposeSeed, err := DerivePurposeSeed(rootSeed, purpose)
	if err != nil {
		return "", "", err
	}
	filePath = ks.purposeKeyFilePath(replica, purpose)
	if err := ks.saveSeedToFile(filePath, purposeSeed, overwrite); err != nil {
		return "", "", err
	}
	holder, err = HolderStringFromSeed(purposeSeed)
	return holder, filePath, err
}

// ExportHolder returns the holder string for a replica's root key, or a
// purpose-scoped subkey if purpose is non-empty.
func (ks *KeyStore) ExportHolder(replica, purpose string) (string, error) {
	if err := CheckReplicaName(replica); err != nil {
		return "", err
	}
	var seed []byte
	var err error
	if purpose == "" {
		seed, err = ks.loadSeedFromFile(ks.rootKeyFilePath(replica))
	} else {
		if err := CheckPurpose(purpose); err != nil {
			return "", err
		}
		seed, err = ks.loadSeedFromFile(ks.purposeKeyFilePath(replica, purpose))
	}
	if err != nil {
		return "", err
	}
	return HolderStringFromSeed(seed)
}

// LoadSeed resolves a signing seed from one of: an inline hex seed, a
// standalone key file, or a stored (replica, purpose) pair.
func (ks *KeyStore) LoadSeed(seedHex, replica, purpose, keyFile string) ([]byte, error) {
	if seedHex != "" {
		return ParseSeedHex(seedHex)
	}
	if keyFile != "" {
		return ks.loadSeedFromFile(keyFile)
	}
	if replica != "" {
		if err := CheckReplicaName(replica); err != nil {
			return nil, err
		}
		if purpose == "" {
			return ks.loadSeedFromFile(ks.rootKeyFilePath(replica))
		}
		if err := CheckPurpose(purpose); err != nil {
			return nil, err
		}
		return ks.loadSeedFromFile(ks.purposeKeyFilePath(replica, purpose))
	}
	return nil, errors.New("no signer provided")
}

// ListReplicas enumerates stored replicas and each one's derived purposes.
func (ks *KeyStore) ListReplicas() ([]ReplicaKeyEntry, error) {
	entries, err := os.ReadDir(ks.Directory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var replicas []string
	for _, entry := range entries {
		if entry.IsDir() {
			replicas = append(replicas, entry.Name())
		}
	}
	sort.Strings(replicas)

	var result []ReplicaKeyEntry
	for _, replica := range replicas {
		purposesDir := filepath.Join(ks.Directory, replica, "purposes")
		purposeEntries, rerr := os.ReadDir(purposesDir)
		var purposes []string
		if rerr == nil {
			for _, purposeEntry := range purposeEntries {
				if purposeEntry.IsDir() {
					continue
				}
				if strings.HasSuffix(purposeEntry.Name(), ".seed") {
					purposes = append(purposes, strings.TrimSuffix(purposeEntry.Name(), ".seed"))
				}
			}
			sort.Strings(purposes)
		}
		result = append(result, ReplicaKeyEntry{Replica: replica, Purposes: purposes})
	}
	return result, nil
}
