// Package integrity provides system health checks for the content porter.
//
// Unlike the 'porter' package which moves content, this package validates
// the infrastructure and configuration the porter depends on.
//
// # Checks Provided
//
//   - Identifiers: Verifies every content type has a usable natural-identifier
//     field (configured as required+unique, or a valid fallback).
//   - Store: Validates that the porter store tables exist with the expected columns.
//   - Bucket: Checks that the media bucket exists in object storage.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/identifiers : Runs the identifier configuration check.
//   - GET /integrity/store : Runs the store table check.
//   - GET /integrity/bucket : Runs the bucket check (supports ?fix=true).
package integrity
