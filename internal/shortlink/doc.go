// Package shortlink persists short links in SQLite and exposes the service
// operations built on top of them.
//
// The Store manages database connections, schema initialization, link CRUD,
// click recording, and expired-link cleanup. A read-through TTL cache sits in
// front of resolution so hot redirects skip the database. The Service wires
// store, cache, and code generation together and reports what it does through
// the collector shipping client.
//
// Schema changes bump the version in schema.go; users clear the database to
// adopt the new schema.
package shortlink
