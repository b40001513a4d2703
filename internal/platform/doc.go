package platform

// Package platform contains OS integration: platform and release detection,
// running commands, opening URLs and filesystem helpers.
