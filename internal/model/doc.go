package model

// Package model defines domain data structures used across the app: parsed
// repository addresses, directory listing entries, download tasks, and
// status enums. Structures are designed for direct binding in the UI and
// explicit state transitions.
