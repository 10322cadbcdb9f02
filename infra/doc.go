// Package infra holds the adapters between the solvers and the outside
// world: instance files, metrics backends, the MQTT progress channel and
// error monitoring. Solvers only see the interfaces declared under core.
package infra
