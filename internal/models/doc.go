// Package models defines the core domain models for TravelMate.
//
// # Models
//
//   - Participant: a user's membership of a trip, with a role and an invitation status
//   - Expense: a shared cost paid by one participant and split by fractional shares
//   - User: a registered account, the source of display names and emails
//   - RevokedToken: a logged-out session token kept until it would have expired
//
// # Design Principles
//
// 1. **Trips by reference**: the trip aggregate lives elsewhere; models only carry its ID
// 2. **Exact money**: amounts and shares are decimal.Decimal, never float64
// 3. **Avoid circular references**: use ID strings instead of pointers for relationships
package models
