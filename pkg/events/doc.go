/*
Package events carries what happened during reconciliation to whoever is
listening.

The iscsi service emits an Event for every externally visible step: a spec
saved, a keyring issued, TLS material stored, a deployment prepared, a
gateway added to the dashboard, the SSL verification flag set, a daemon
skipped for lack of a spec, a dashboard command that failed. Events carry a
message and string metadata; they never carry credentials or TLS material.

Observers:

  - LogObserver writes events through zerolog (warn for skips and failures)
  - Recorder keeps them in memory, mostly for tests
  - Broker fans them out to channel subscribers
  - Multi sends each event to several observers in order
  - Discard drops them

A Broker must be started before use:

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	sub := broker.Subscribe()
	svc := iscsi.NewService(iscsi.Options{..., Observer: events.Multi{logObserver, broker}})

Subscribers whose channel is full miss events rather than block the
publisher.
*/
package events
