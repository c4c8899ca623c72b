// Package infra contains technical adapters such as the backend REST
// poller, the MQTT snapshot subscriber and metrics exporters. These
// packages should depend only on the interfaces defined in the core
// packages.
package infra
