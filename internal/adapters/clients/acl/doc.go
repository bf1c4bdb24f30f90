// Package acl implements the Anti-Corruption Layer for the remote
// quote table. The table is exposed through a PostgREST-style REST
// interface (one resource per table, query-string filters, Prefer
// headers). All external row shapes and error payloads stay inside
// this package; callers see ports.QuoteRepository and domain types
// only.
package acl
