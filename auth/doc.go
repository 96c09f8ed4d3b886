/*
Package auth contains the identity primitives of the rights engine: role bits, contact tags, capabilities and review tokens. It knows nothing about papers or the database beyond its own storage interface.

Roles

PC, admin and chair are assigned roles, stored with the user row. Everything else a user "is" (author, reviewer, requester) is derived from database facts and lives in core.Identity, never here.

Contact tags

A contact tag is a plain string, optionally with a numeric weight ("heavy#1.5"). Tags gate track permissions and carry voting weights. Every PC member implicitly carries the tag "pc".

Capabilities

A capability is an unauthenticated, scoped grant bound to one paper: "@av<paperID>" lets the bearer view the paper as an author, "@ra<paperID>" lets the bearer accept a review on behalf of the contact named by the value. Capabilities travel in HMAC-signed URL parameters, so they work without an account.

Review tokens

A review token is a per-review secret integer. Whoever presents the token owns the review, without logging in.
*/
package auth
