// Package router parses raw stream frames into typed market events.
//
// Parsing happens exactly once, at this boundary: required fields are
// type- and range-checked, raw marketplace prices (thousandths of a USD)
// become USD amounts, and the price change percentage is derived. Downstream
// stages never see frame payloads. A frame that fails to parse yields a
// *ParseError naming the offending field; the caller logs and drops it.
package router
