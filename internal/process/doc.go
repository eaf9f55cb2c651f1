// Package process runs external tools (schema compiler, bundler, platform
// scripts, packaging framework) and returns their captured output as a typed
// Result. Command lines are written as templates and split with POSIX shell
// quoting rules, so `script.ps1 "$OUTPUT_DIR"` keeps a path with spaces as a
// single argument.
package process
