// Package prometheus records sync outcomes as Prometheus metrics.
//
// The recorder owns its own registry so repeated syncs in one process (and
// tests) never collide with the default registerer. A CLI run writes the
// registry to a node_exporter textfile with WriteTextfile.
package prometheus
