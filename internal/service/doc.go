// Package service implements the business layer of the declaration
// registry.
//
// TheoryService owns the in-memory registry, mirrors every accepted
// declaration into the persistent log, and publishes events via EventBus
// for real-time updates to connected clients over Server-Sent Events.
// Theory files are applied through it so a reload can be validated on a
// scratch registry before the live one is replaced.
//
// Registration outcomes and rejections are counted with Prometheus
// instruments; see Metrics.
package service
