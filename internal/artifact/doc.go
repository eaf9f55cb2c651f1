// Package artifact verifies and stages the prebuilt window-manager files.
//
// Every file is checksummed with SHA-512 and installed through go-update,
// which writes a sibling temporary file, verifies the checksum and swaps it
// in, so a staged executable is either the complete new file or untouched.
package artifact
