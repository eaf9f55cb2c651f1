// Package packager orchestrates a desktop shell build.
//
// It loads the project configuration, renders the packaging framework
// configuration and runs the ordered stages: type generation, the framework
// package step, the Windows pre-package script, the framework copy phase, the
// post-copy license merge and artifact staging, the makers and the optional
// S3 publication. Every run leaves a JSON build report behind.
package packager
