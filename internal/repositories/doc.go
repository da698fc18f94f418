// Package repositories implements SQLite persistence for the upload client.
//
// Key Implementations:
//   - [TokenRepository] : the cached bearer token, stored under a fixed key in the settings table.
//     It implements [services.TokenStore].
//   - [UploadRepository] : upload history with atomic sequence generation for human-readable ordering
//
// [NextSequence] advances a per-table counter on the caller's transaction so history numbers have no gaps.
package repositories
