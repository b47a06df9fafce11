// Package identity holds author keypairs and the signing capability used by
// every write.
//
// An author address looks like
//
//	@suzy.bo6u3bozzjg4njjolt7eevdyws7dknjiuzjsmyg3winte6fbaktca
//
// The shortname ("suzy") is cosmetic. The key segment after the dot is the
// multibase base32 encoding of the public key; a leading "d" marks a
// dilithium3 key instead of the default ed25519 key.
//
// Store and sync code only ever see the Signer and Verifier interfaces, so the
// concrete primitive can change without touching them.
package identity
