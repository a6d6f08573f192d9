// Package httpx runs HTTP requests through a policy.
//
// Client wraps a standard http.Client with any [policy.Policy], including a
// handle resolved from a polidi container, and a status code classifier
// that maps HTTP response codes to transient or permanent errors.
package httpx
