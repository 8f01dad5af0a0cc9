// Package api implements the BitSkins REST API client.
//
// The core pipeline uses two endpoints: the currency list (exchange rates
// for the enricher) and the account profile (logged once at startup for
// operator context). Authentication is an x-apikey header.
package api
