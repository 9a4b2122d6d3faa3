package platform

// Package platform contains pure helpers with no service state: parsing
// GitHub web URLs into repository addresses, resolving the user's downloads
// directory, saving produced archives, and revealing files in the system
// file manager.
