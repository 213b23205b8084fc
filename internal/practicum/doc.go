// Package practicum talks to the homework-review API.
//
// The API returns loosely-shaped JSON, so the client hands back the decoded
// payload as-is and the parse helpers validate the shape explicitly, turning
// each violation into a typed error the poll loop can log and relay.
package practicum
