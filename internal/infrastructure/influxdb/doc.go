// Package influxdb writes Vidyank time-series data to InfluxDB v2.
//
// Core records one point per authentication event (measurement
// auth_events, tagged by action and role) so sign-in volume and failure
// rates can be charted next to other institute metrics. Writes are
// non-blocking and batched by the official client; failures surface through
// the SetOnError callback.
//
// InfluxDB is optional. Connect returns ErrDisabled when influxdb.enabled is
// false.
package influxdb
