// Package auth provides the authentication and entity lifecycle core of the
// petcare backend.
//
// Token lifecycle:
//   - TokenCodec signs and verifies HS256 tokens. Access tokens carry the
//     user id, name, email and comma separated authorities. Refresh tokens
//     only carry the subject.
//   - TokenManager authenticates credentials and rotates refresh tokens.
//     Stored refresh records are exchangeable for a short window after they
//     are issued, on top of the expiry signed into the token. A record is
//     claimed with a conditional update so a token can be exchanged once.
//
// Entity lifecycle:
//   - EntityService is parameterized over an entity, its wire form and a
//     Store. Deletes flip the active flag and every read filters on it at
//     the storage boundary.
//   - EntityHooks run inside the write transaction. UserValidator hashes
//     passwords and keeps login, email and identifier unique among active
//     users.
//
// Activity sinks:
//   - ActivitySink receives login, refresh and entity events. Sinks run
//     best-effort (errors are logged).
package auth
