// Package publish uploads finished installers and archives to S3-compatible
// object storage.
//
// Only s3 publishers are handled here; GitHub releases are created by the
// packaging framework from the rendered configuration. Credentials are read
// from the environment variables the publisher names and never logged.
package publish
