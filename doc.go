// Package authclient implements the client-side authentication core of the
// student council site: session/token lifecycle, the multi-step
// login/registration flow, password and field validation, and a periodic
// token-expiry monitor.
//
// Session lifecycle:
//   - Manager is the sole authority over the three session attributes
//     (token, email, role). It is an injectable service constructed once per
//     application and passed by reference; there is no package-level session.
//   - Consumers observe session changes through Manager.Subscribe. Login,
//     logout, and expiry warnings are broadcast as SessionEvents so
//     independently rendered surfaces can react without polling.
//
// Auth flow:
//   - Flow drives the login/registration wizard as an explicit state machine.
//     Each step is a distinct type carrying only the data valid in that step,
//     so combinations like "verification code accepted for an existing
//     account" are not representable.
//
// The remote backend is reached through AuthService; Client is the HTTP
// implementation. Campaign listing and signing live in the campaigns
// subpackage.
package authclient
