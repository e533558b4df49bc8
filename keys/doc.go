// Package keys provides local, filesystem-backed storage for a replica's
// CLASSIC-suite (Ed25519) signing identity, plus deterministic derivation of
// purpose-scoped subkeys from a single root seed.
//
// Scope:
//
// Supported:
//   - Root seed storage and purpose-scoped subkey derivation for the CLASSIC
//     suite, so a replica operator can regenerate a holder or delegate key
//     from the root seed alone instead of tracking N separate secrets.
//
// Not supported:
//   - FIPS/PQC/HYBRID keys are not seed-derivable the same way (ECDSA keys
//     are randomized per generation; Dilithium3 keys are not constructed
//     from a 32-byte Ed25519 seed). Operators mint those with
//     "amuletctl key gen" and store them out of band.
package keys
