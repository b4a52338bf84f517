// Package events defines the injector lifecycle events emitted on the event
// bus.
//
// Available event types:
//   - ModuleRegistered: a definition was added or overridden
//   - ModuleBootstrapped: a module value was materialized
//   - BootstrapFailed: a factory or a dependency cycle aborted bootstrap
//   - DependencyMissing: a name resolved to the imaginary dependency
//   - InjectorReady: every registered module is bootstrapped
package events
