// Package tracker implements a multi-tenant project and task tracker with
// stateless bearer token authentication and role gated access control.
//
// Authentication:
//   - TokenService issues HS256 JWTs whose subject is the user's email. Token
//     failures never surface as errors to the request pipeline, they degrade
//     the request to anonymous.
//   - Authenticator runs once per request. It skips the public path allowlist,
//     resolves the caller from a bearer token and binds a Caller value to the
//     request context. It never rejects a request. RegisterRoutes puts
//     RequireCaller on every route outside the auth and health groups.
//
// Authorization:
//   - Every role and ownership decision lives in policy.go. Services call the
//     policy functions with an explicit Caller instead of reading ambient
//     state, so the functions stay pure.
//   - ADMIN overrides ownership and assignment everywhere except task status
//     updates, which belong to the assignee alone.
//
// Persistence:
//   - Bun models and repositories for users, projects and tasks. Deleting a
//     project removes its tasks, deleting a user removes the projects they own
//     and unassigns their tasks.
package tracker
