package iscsi

import "errors"

var (
	// ErrSpecNotFound means no spec was supplied and none exists in the store
	ErrSpecNotFound = errors.New("service spec not found")

	// ErrWrongServiceType means a supplied spec is not an iscsi spec
	ErrWrongServiceType = errors.New("wrong service type")

	// ErrWrongDaemonType means the daemon is not an iscsi gateway
	ErrWrongDaemonType = errors.New("wrong daemon type")

	// ErrNoPool means the spec does not name a pool
	ErrNoPool = errors.New("pool is required")

	// ErrPoolNotFound means the named pool does not exist in the cluster
	ErrPoolNotFound = errors.New("pool does not exist")
)
