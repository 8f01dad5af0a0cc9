// Package enrich derives the secondary event attributes: the EUR price at
// the cached exchange rate and the wear band from the float value.
//
// Enrichment is pure apart from reading the rate cache. The rate is
// refreshed periodically from the marketplace API; a failed refresh keeps
// the last known rate, so enrichment never fails an event.
package enrich
