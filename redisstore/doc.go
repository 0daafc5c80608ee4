// Package redisstore is the bundled Redis implementation of the authrail
// store of record: roles, per-user role assignments, and per-user direct
// permission grants.
//
// # Layout
//
// Records are JSON blobs under a configurable key prefix:
//
//	{p}:role:{id}                 role record
//	{p}:rolename:{org}:{name}     role-name uniqueness index → role id
//	{p}:user:{id}:assignments     hash of assignment id → record
//	{p}:user:{id}:grants          hash of grant id → record
//
// Role creation and deletion keep the record and its name index consistent
// with small Lua scripts. Expired assignments and grants are stored as-is;
// filtering is the resolver's job so the expiry rules live in one place.
//
// # Architecture boundaries
//
// This package owns persistence only. It never evaluates permissions and
// never filters by scope or expiry. Backend failures wrap
// authrail.ErrStoreUnavailable so the gate fails closed.
package redisstore
