// Package main runs the development ledger daemon used by ledgerchat in
// place of a real chat contract. It enforces the contract's write rules
// (one identity per account, first-writer-wins sessions, append-only
// messages) and serves them as JSON over HTTP; see internal/ledgerd for the
// routes.
//
// Configuration is read from the environment (a .env file is honoured):
//
//	LEDGERD_ADDR  listen address, default :8545
//	LEDGERD_DB    SQLite database path; empty keeps all state in memory
//
// The daemon never sees plaintext or private keys; it stores ciphertexts
// and public identity records only.
package main
