// Package redis provides a Redis-backed registry store for operators who
// share one registry across machines.
//
// Layout (all keys prefixed with "salasync:"):
//
//	room:<identity key>        hash of room fields
//	rooms                      set of room identity keys
//	patient:<identity key>     hash of patient fields (absent fields have no entry)
//	patients                   set of patient identity keys
//	room-patients:<room id>    set of patient identity keys in a room
package redis
