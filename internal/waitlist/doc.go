// Package waitlist implements the marketing-site signup API: a Postgres
// backed email list with an idempotent signup endpoint and a public count.
package waitlist
