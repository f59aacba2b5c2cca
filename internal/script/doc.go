// Package script runs Lua scripts against an event bus.
//
// Scripts see a preloaded "bus" module, also installed as the global bus:
//
//	local weapon = bus.param("weapon")
//
//	local h = bus.listen("hit", { weapon:is("sword"), {"source", "w1"} }, function(ev)
//	    print("sword hit for", ev:get("damage"))
//	    ev:stop()
//	end)
//
//	local stopped = bus.raise("hit", { source = "w1", weapon = "sword", damage = 4 })
//	h:unsubscribe()
//
// Filters are applied in list order. A filter is either a condition built by
// param:is or a two element {name, value} table. String-keyed entries of the
// filter table are applied after the list entries, sorted by name.
//
// Lua callbacks run synchronously inside the raise that reached them. An error
// raised by a callback unwinds through the bus and fails the script, the same
// way a panicking Go listener fails its raiser.
//
// gopher-lua states are not goroutine-safe and neither is the bus. An Engine
// and the bus it drives must be used from one goroutine.
package script
