// Package connection owns the WebSocket session to the marketplace stream.
//
// A Manager maintains one logical session per process: it connects,
// authenticates with the API key, subscribes to the single channel for its
// event kind, and forwards data frames to the pipeline. Transport failures
// and stale heartbeats trigger reconnection with jittered exponential
// backoff; rejected credentials are fatal and surface on Fatal().
package connection
