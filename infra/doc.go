// Package infra contains technical adapters such as route planners,
// metrics sinks, MQTT publishers and KPI stores. These packages should
// depend only on the interfaces defined in the core packages.
package infra
