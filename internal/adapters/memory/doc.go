// Package memory provides in-process implementations of the repository ports.
//
// Repositories never hand out the values they store: cars are cloned on the
// way in and on the way out, so callers can mutate what they receive without
// affecting stored state. Each repository also implements ports.HealthChecker.
package memory
