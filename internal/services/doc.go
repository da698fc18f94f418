// Package services talks to the background-removal HTTP service.
//
// # Endpoints
//
// [Client] implements both collaborators the upload flow needs:
//   - [Authenticator] : POST /token with multipart username and password, answering JSON {"access_token": ...}
//   - [Remover] : POST /remove-background with the multipart field "image", answering a PNG body
//
// The upload body is streamed from disk with a known Content-Length so that progress can be reported as
// round(100 * loaded / total) through a [ProgressFunc]. Reports are monotonically non-decreasing and may be
// throttled with a [rate.Limiter]; 0% and 100% are never dropped.
//
// # Outcomes
//
// RemoveBackground never returns a bare error. It returns an [Outcome] whose Kind is one of
// [OutcomeSuccess], [OutcomeAuthExpired], [OutcomeRejected] or [OutcomeTransportError].
//
// # Session
//
// [Session] holds the bearer token explicitly. Persistence is injected through [TokenStore] and credentials
// through [CredentialSource]; the SQLite store lives in the repositories package and [MemoryTokenStore] is
// used when nothing should outlive the process.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrAuthFailed] : /token answered anything but 200 with a token
//   - [shared.ErrNoToken] : the store holds no token
package services
