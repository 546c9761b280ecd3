package pipeline

import (
	"archive/tar"
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/crypto/argon2"

	"poincare-hq/poincare/pkg/hashing"
	"poincare-hq/poincare/pkg/logging"
)

// archiveMagic identifies an encrypted archive. Format on disk:
// magic, 16-byte salt, then AES-GCM nonce and ciphertext.
var archiveMagic = []byte("PNCRYPT1")

const (
	saltLength = 16
	keyLength  = 32

	// Argon2id parameters for passphrase-derived keys.
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// Result reports the outcome of a pipeline run.
type Result struct {
	// Duration is the total wall-clock time of the run.
	Duration time.Duration

	// SourceHash is the SHA-256 digest of the input.
	SourceHash string

	// OutputHash is the SHA-256 digest of what was produced.
	OutputHash string

	// Output is the path of the produced file or directory.
	Output string
}

// EncryptionService is the contract of the encryption pipeline.
// Implementations compress, hash, and encrypt a directory tree into a
// single archive, and reverse the process.
type EncryptionService interface {
	EncryptDirectory(ctx context.Context, dataPath, outputPath string, passphrase []byte) (*Result, error)
	DecryptDirectory(ctx context.Context, archivePath, outputDir string, passphrase []byte) (*Result, error)
}

// Encryptor is the production EncryptionService. A directory is
// archived with tar, compressed with zstd, and sealed with AES-GCM
// under an Argon2id key derived from the passphrase.
type Encryptor struct {
	logger    *logging.Logger
	zstdLevel int
}

// NewEncryptor creates an Encryptor. level is the zstd compression
// level in [1, 19].
func NewEncryptor(logger *logging.Logger, level int) (*Encryptor, error) {
	if level < 1 || level > 19 {
		return nil, Categorize(ErrConfiguration, fmt.Errorf("zstd level %d out of range [1, 19]", level))
	}
	return &Encryptor{logger: logger, zstdLevel: level}, nil
}

// EncryptDirectory runs the full pipeline: hash the source tree, tar
// and zstd-compress it, seal it with AES-GCM, and hash the archive.
func (e *Encryptor) EncryptDirectory(ctx context.Context, dataPath, outputPath string, passphrase []byte) (*Result, error) {
	start := time.Now()

	if len(passphrase) == 0 {
		return nil, Categorize(ErrValidation, errors.New("passphrase must not be empty"))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sourceHash, err := RunStep(e.logger, "hash_source", func() (string, error) {
		digest, err := hashing.DirectoryHash(dataPath)
		return digest, Categorize(ErrHashing, err)
	})
	if err != nil {
		return nil, err
	}

	compressed, err := RunStep(e.logger, "compress", func() ([]byte, error) {
		return e.compressDirectory(dataPath)
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	err = RunStepFunc(e.logger, "encrypt", func() error {
		sealed, err := seal(compressed, passphrase)
		if err != nil {
			return err
		}
		if err := os.WriteFile(outputPath, sealed, 0o600); err != nil {
			return Categorize(ErrFileAccess, fmt.Errorf("failed to write archive %q: %w", outputPath, err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	outputHash, err := RunStep(e.logger, "hash_output", func() (string, error) {
		digest, err := hashing.FileHash(outputPath)
		return digest, Categorize(ErrHashing, err)
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		Duration:   time.Since(start),
		SourceHash: sourceHash,
		OutputHash: outputHash,
		Output:     outputPath,
	}, nil
}

// DecryptDirectory reverses EncryptDirectory: open the archive,
// decompress, and restore the tree under outputDir.
func (e *Encryptor) DecryptDirectory(ctx context.Context, archivePath, outputDir string, passphrase []byte) (*Result, error) {
	start := time.Now()

	if len(passphrase) == 0 {
		return nil, Categorize(ErrValidation, errors.New("passphrase must not be empty"))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	archiveHash, err := RunStep(e.logger, "hash_archive", func() (string, error) {
		digest, err := hashing.FileHash(archivePath)
		return digest, Categorize(ErrHashing, err)
	})
	if err != nil {
		return nil, err
	}

	compressed, err := RunStep(e.logger, "decrypt", func() ([]byte, error) {
		sealed, err := os.ReadFile(archivePath)
		if err != nil {
			return nil, Categorize(ErrFileAccess, fmt.Errorf("failed to read archive %q: %w", archivePath, err))
		}
		return open(sealed, passphrase)
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	err = RunStepFunc(e.logger, "extract", func() error {
		return e.extractArchive(compressed, outputDir)
	})
	if err != nil {
		return nil, err
	}

	outputHash, err := RunStep(e.logger, "hash_output", func() (string, error) {
		digest, err := hashing.DirectoryHash(outputDir)
		return digest, Categorize(ErrHashing, err)
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		Duration:   time.Since(start),
		SourceHash: archiveHash,
		OutputHash: outputHash,
		Output:     outputDir,
	}, nil
}

// compressDirectory writes the tree as a tar stream through a zstd
// encoder.
func (e *Encryptor) compressDirectory(dataPath string) ([]byte, error) {
	var buf bytes.Buffer

	level := zstd.EncoderLevelFromZstd(e.zstdLevel)
	zw, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(level))
	if err != nil {
		return nil, Categorize(ErrConfiguration, fmt.Errorf("failed to create zstd writer: %w", err))
	}

	tw := tar.NewWriter(zw)

	err = filepath.WalkDir(dataPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return Categorize(ErrFileAccess, err)
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(dataPath, path)
		if err != nil {
			return Categorize(ErrFileAccess, err)
		}

		info, err := d.Info()
		if err != nil {
			return Categorize(ErrFileAccess, err)
		}

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return Categorize(ErrFileAccess, err)
		}
		header.Name = filepath.ToSlash(rel)

		if err := tw.WriteHeader(header); err != nil {
			return Categorize(ErrFileAccess, err)
		}

		f, err := os.Open(path)
		if err != nil {
			return Categorize(ErrFileAccess, err)
		}
		defer f.Close()

		if _, err := io.Copy(tw, f); err != nil {
			return Categorize(ErrFileAccess, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := tw.Close(); err != nil {
		return nil, Categorize(ErrFileAccess, err)
	}
	if err := zw.Close(); err != nil {
		return nil, Categorize(ErrFileAccess, err)
	}

	return buf.Bytes(), nil
}

// extractArchive restores a zstd-compressed tar stream under
// outputDir. Entries escaping outputDir are rejected.
func (e *Encryptor) extractArchive(compressed []byte, outputDir string) error {
	zr, err := zstd.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return Categorize(ErrValidation, fmt.Errorf("failed to read compressed payload: %w", err))
	}
	defer zr.Close()

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Categorize(ErrFileAccess, fmt.Errorf("failed to create %q: %w", outputDir, err))
	}

	tr := tar.NewReader(zr)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return Categorize(ErrValidation, fmt.Errorf("corrupt archive: %w", err))
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}

		name := filepath.FromSlash(header.Name)
		if filepath.IsAbs(name) || strings.HasPrefix(name, "..") {
			return Categorize(ErrValidation, fmt.Errorf("archive entry %q escapes output directory", header.Name))
		}
		target := filepath.Join(outputDir, name)
		if !strings.HasPrefix(target, filepath.Clean(outputDir)+string(os.PathSeparator)) {
			return Categorize(ErrValidation, fmt.Errorf("archive entry %q escapes output directory", header.Name))
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return Categorize(ErrFileAccess, err)
		}

		f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(header.Mode)&0o777)
		if err != nil {
			return Categorize(ErrFileAccess, err)
		}
		if _, err := io.Copy(f, tr); err != nil {
			f.Close()
			return Categorize(ErrFileAccess, err)
		}
		if err := f.Close(); err != nil {
			return Categorize(ErrFileAccess, err)
		}
	}
}

// seal encrypts plaintext under an Argon2id key derived from the
// passphrase and a fresh random salt. Output layout: magic, salt,
// nonce, ciphertext.
func seal(plaintext, passphrase []byte) ([]byte, error) {
	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	gcm, err := aead(passphrase, salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := make([]byte, 0, len(archiveMagic)+saltLength+len(nonce)+len(plaintext)+gcm.Overhead())
	out = append(out, archiveMagic...)
	out = append(out, salt...)
	out = gcm.Seal(append(out, nonce...), nonce, plaintext, nil)
	return out, nil
}

// open reverses seal. A wrong passphrase or tampered payload comes
// back as ErrValidation.
func open(sealed, passphrase []byte) ([]byte, error) {
	if len(sealed) < len(archiveMagic)+saltLength || !bytes.Equal(sealed[:len(archiveMagic)], archiveMagic) {
		return nil, Categorize(ErrValidation, errors.New("not a poincare archive"))
	}
	sealed = sealed[len(archiveMagic):]

	salt, sealed := sealed[:saltLength], sealed[saltLength:]

	gcm, err := aead(passphrase, salt)
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(sealed) < nonceSize {
		return nil, Categorize(ErrValidation, errors.New("archive truncated"))
	}

	nonce, ciphertext := sealed[:nonceSize], sealed[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, Categorize(ErrValidation, errors.New("wrong passphrase or corrupt archive"))
	}
	return plaintext, nil
}

// aead builds the AES-GCM cipher from a passphrase-derived key.
func aead(passphrase, salt []byte) (cipher.AEAD, error) {
	key := argon2.IDKey(passphrase, salt, argonTime, argonMemory, argonThreads, keyLength)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
