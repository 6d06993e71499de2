// Package wallet implements the external wallet capability consumed by the
// protocol: asymmetric encryption bound to an account's externally-held key.
//
// The scheme mirrors what wallet providers expose on the ledger side:
// x25519-xsalsa20-poly1305 (NaCl box) with an ephemeral sender key, the
// ciphertext laid out as ephemeral pub, then nonce, then box. The account's box key
// pair lives in a passphrase-encrypted keyfile, one file per account.
//
// The protocol core never sees the wallet key; it only passes opaque
// ciphertexts through. Declines and cancellations surface as the typed
// wrap/unwrap failures from internal/domain and are never retried here.
package wallet
