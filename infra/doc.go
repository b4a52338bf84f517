// Package infra contains technical adapters around the injector: host
// modules, metrics sinks, MQTT event forwarding and the zerolog logger.
// These packages depend only on the interfaces defined in the core packages.
package infra
