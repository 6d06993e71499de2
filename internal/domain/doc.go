// Package domain defines the core data models, error taxonomy and interfaces
// shared across ledgerchat. It contains plain types (wire/state) and
// contracts (interfaces) only.
package domain
