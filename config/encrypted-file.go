package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/relloyd/tablesync/constants"
)

const keyFileName = ".key"

// EncryptedFile stores bytes AES-GCM encrypted and base64 encoded.
// The key is the SHA-256 of env var TS_CONFIG_KEY if set,
// else 32 random bytes kept in .key next to the file.
type EncryptedFile struct {
	Dirname     string
	FileName    string
	FilePrefix  string
	FileExt     string
	FullPath    string
	mu          sync.Mutex
	fileCreated bool
}

func NewEncryptedFileWithDir(dirName string, filename string) *EncryptedFile {
	f := &EncryptedFile{Dirname: dirName, FileName: filename}
	f.FullPath = path.Join(dirName, filename)
	f.FileExt = strings.TrimLeft(path.Ext(filename), ".")
	f.FilePrefix = strings.TrimSuffix(f.FileName, "."+f.FileExt)
	return f
}

func (f *EncryptedFile) Set(text []byte) (err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err = makeDir(f.Dirname); err != nil { // if we could not create the config directory...
		return err
	}
	key, err := getEncryptionKey(f.Dirname, true)
	if err != nil {
		return err
	}
	sealedBytes, err := Encrypt(text, key)
	if err != nil {
		return err
	}
	b64 := base64.StdEncoding.EncodeToString(sealedBytes)
	if err = os.WriteFile(f.FullPath, []byte(b64), 0600); err != nil {
		return errors.Wrapf(err, "unable to write config file %v", f.FullPath)
	}
	f.fileCreated = true
	return nil
}

func (f *EncryptedFile) Get() (text []byte, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !fileExists(f.FullPath) { // if the file does not exist...
		return nil, FileNotFoundError{f.FullPath}
	}
	b64, err := os.ReadFile(f.FullPath)
	if err != nil {
		return nil, err
	}
	cipherText, err := base64.StdEncoding.DecodeString(string(b64))
	if err != nil {
		return nil, errors.Wrapf(err, "config file %v is corrupt", f.FullPath)
	}
	key, err := getEncryptionKey(f.Dirname, false)
	if err != nil {
		return nil, err
	}
	b, err := Decrypt(cipherText, key)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to decrypt config file %v: check %v", f.FullPath, constants.EnvVarConfigKey)
	}
	return b, nil
}

// getEncryptionKey returns the 32 byte key used for files in dir.
// Set create to make a new key file when neither the env var nor the key file exist.
func getEncryptionKey(dir string, create bool) ([]byte, error) {
	if v := os.Getenv(constants.EnvVarConfigKey); v != "" {
		k := sha256.Sum256([]byte(v))
		return k[:], nil
	}
	keyFile := path.Join(dir, keyFileName)
	if fileExists(keyFile) {
		b, err := os.ReadFile(keyFile)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to read key file %v", keyFile)
		}
		k, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(b)))
		if err != nil || len(k) != 32 {
			return nil, fmt.Errorf("key file %v is invalid", keyFile)
		}
		return k, nil
	}
	if !create {
		return nil, fmt.Errorf("missing key file %v: set %v or recreate the config", keyFile, constants.EnvVarConfigKey)
	}
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		return nil, err
	}
	if err := os.WriteFile(keyFile, []byte(base64.StdEncoding.EncodeToString(k)), 0600); err != nil {
		return nil, errors.Wrapf(err, "unable to write key file %v", keyFile)
	}
	return k, nil
}

func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// Encrypt seals text with key using AES-GCM and returns nonce+ciphertext.
func Encrypt(text []byte, key []byte) ([]byte, error) {
	c, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(c)
	if err != nil {
		return nil, err
	}
	// The nonce must be unique for all time for a given key.
	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, text, nil), nil
}

func Decrypt(text []byte, key []byte) ([]byte, error) {
	c, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(c)
	if err != nil {
		return nil, err
	}
	nonceSize := gcm.NonceSize()
	if len(text) < nonceSize {
		return nil, fmt.Errorf("encrypted text is too short")
	}
	nonce, cipherText := text[:nonceSize], text[nonceSize:]
	return gcm.Open(nil, nonce, cipherText, nil)
}
