package config

// Specification of library root kind.
// ENUM(auto, directory, archive)
type RootKind int

// Specification of how unresolved references are reported by consistency
// check.
// ENUM(ignore, warn, fail)
type MissingPolicy int
