// Package swr implements a stale-while-revalidate data fetching hook.
//
// UseSWR serves a cached value while it is fresh, serves it and refreshes
// in the background while it is stale, and waits on the network otherwise:
//
//	|--- MaxAge (fresh) ---|--- SWR (stale) ---|--- network ---->
//	cachedTime
//
// The time of the last successful fetch is persisted in the env storage
// under "USE_SWR_CACHED_TIME_"+key, so the windows survive restarts even
// though the in-process cache does not. A cache miss always goes to the
// network.
//
// Only the latest revalidation may write Data or Error; results of older
// requests, and of requests that timed out when ShouldTimeoutInvalid is
// set, are dropped.
package swr
