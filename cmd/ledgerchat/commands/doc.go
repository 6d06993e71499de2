// Package commands defines the ledgerchat CLI and wires dependencies for
// subcommands.
//
// Commands
//
//   - register    Create an identity key and publish it on the ledger
//   - unlock      Recover the identity key through the wallet
//   - whoami      Print the bound account and registration state
//   - start-chat  Establish an encrypted session with a peer
//   - peers       List accounts sharing a session with you
//   - send        Encrypt and send a message
//   - recv        Fetch and decrypt the conversation history
//   - watch       Follow a conversation, printing new messages as they land
//
// # Implementation
//
// The root command builds a dependency graph (wallet, keyring, ledger
// client, services) before any subcommand runs, so handlers share one app
// context. The account is bound once from --account; key material stays in
// the process keyring and never reaches the terminal.
package commands
