// Package metrics exposes refresh cycle results as Prometheus metrics.
package metrics
