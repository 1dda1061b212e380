/*
Package observability turns engine lifecycle events into Prometheus metrics and structured logs.
*/
package observability
