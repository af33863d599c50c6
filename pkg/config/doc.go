// Package config loads iscsigw settings from a TOML file.
//
//	data_dir = "/var/lib/iscsigw"
//	log_level = "debug"
//	reconcile_interval = "30s"
//	metrics_addr = "127.0.0.1:9095"
//	dns_servers = ["10.0.0.53:53"]
//	fsid = "0b9e6c1a-5d2f-11ef-9c3a-525400b7e7a1"
//	mon_host = "10.0.0.100"
//	pools = ["rbd", "iscsi-images"]
//
//	[hosts]
//	host-a = "10.0.0.1"
//
// Unknown keys are rejected.
package config
