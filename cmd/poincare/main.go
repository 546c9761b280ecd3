// Poincare is a data security pipeline with resilient structured
// logging.
//
// It encrypts directory trees into single sealed archives and keeps a
// verifiable ledger of every run:
//   - tar + zstd compression, AES-GCM encryption, Argon2id keys
//   - SHA-256 integrity digests of inputs and outputs
//   - SQLite run ledger with cron-scheduled retention
//   - multi-backend logging with automatic fallback and redaction
//
// Usage:
//
//	# Encrypt a directory
//	poincare encrypt data --out data.enc
//
//	# Decrypt an archive
//	poincare decrypt data.enc --out restored
//
//	# Hash a file or directory
//	poincare hash data
//
//	# Verify a directory against its recorded digest
//	poincare verify data
//
//	# Long-running mode: metrics, config watch, retention
//	poincare run
//
//	# Inspect the JSON-lines log file
//	poincare logs --lines 50
package main

func main() {
	Execute()
}
