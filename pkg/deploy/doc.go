// Package deploy turns a prepared gateway bundle into the final config and
// dependency list handed to the orchestrator.
//
// The final config holds a minimal cluster config ([global] fsid and
// mon_host), the keyring and the extra files. The dependency list names the
// spec, the pool and every extra file, and ends with a sha256 digest of all
// inputs; a change to any of them changes the list and triggers a redeploy.
package deploy
