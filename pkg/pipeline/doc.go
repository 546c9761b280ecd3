// Package pipeline runs the encryption pipeline: directory trees are
// archived, compressed with zstd, and sealed with AES-GCM under a
// passphrase-derived Argon2id key.
//
// # Overview
//
// Encryptor implements EncryptionService, the contract the command
// layer programs against. Each phase runs as a named step through
// RunStep, which times it, logs start and completion, and wraps
// failures in a *StepError. Failures additionally carry a category
// sentinel (ErrHashing, ErrFileAccess, ErrConfiguration,
// ErrValidation) matched with errors.Is.
//
// # Usage
//
//	enc, err := pipeline.NewEncryptor(logger, 3)
//	if err != nil {
//	    return err
//	}
//	result, err := enc.EncryptDirectory(ctx, "data", "data.enc", passphrase)
package pipeline
