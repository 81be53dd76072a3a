package table

// EncryptedFile pairs a raw input file with the key material needed to
// decrypt it.
type EncryptedFile struct {
	Encrypted   InputFile
	KeyMetadata []byte
}

// EncryptionManager unwraps encrypted files. Decrypt takes the whole batch
// in one call so implementations can amortize shared key-unwrap cost; the
// result holds one decrypted file per input, in input order.
type EncryptionManager interface {
	Decrypt(files []EncryptedFile) ([]InputFile, error)
}

// PlaintextEncryption is the no-op manager for unencrypted tables.
type PlaintextEncryption struct{}

func (PlaintextEncryption) Decrypt(files []EncryptedFile) ([]InputFile, error) {
	out := make([]InputFile, len(files))
	for i := range files {
		out[i] = files[i].Encrypted
	}
	return out, nil
}
