// Package domain contains the core concepts of the conversion service:
// conversion types, request parameters and the errors they map to.
// Keep this package free of transport (HTTP) and infrastructure concerns.
package domain
