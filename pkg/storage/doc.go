/*
Package storage persists iscsigw state in a local bbolt database.

BoltStore keeps everything in <dataDir>/iscsigw.db, one bucket per record
kind:

	specs               service name → ServiceSpec (JSON)
	daemons             daemon name → DaemonDescription (JSON)
	config_keys         key → raw value
	auth                entity → AuthEntity (JSON)
	dashboard_gateways  host → GatewayRegistration (JSON)
	dashboard_settings  setting → value (JSON)

Config-key values are stored raw so TLS material reads back byte for byte.
Lookups of a missing key return an error wrapping ErrNotFound.

SpecStore adapts a Store to the keyed lookups the iscsi service uses. A
missing spec is a nil result, while a spec that cannot be read or decoded is
an error.
*/
package storage
