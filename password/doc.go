// Package password implements one-way password hashing and verification
// with Argon2id defaults.
//
// # Output format
//
// New hashes are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// # Legacy digests
//
// [Hasher.Verify] transparently accepts bcrypt digests ($2a$/$2b$/$2y$)
// produced by the system this engine replaced. [Hasher.NeedsRehash] reports
// true for every bcrypt digest and for argon2id digests written with weaker
// parameters than the current configuration, so callers can re-hash on the
// next successful sign-in.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords — callers supply plaintext and receive hashes.
//   - Import any other credauth package.
//   - Log plaintext passwords.
package password
