// Package sim provides the voxel world that redpile simulates.
//
// # Reading Guide
//
//   - types.go: Types, fields and behaviors, as produced by a config script
//   - world.go: Node storage and the power-of-two hash index
//   - tick.go: The tick loop, message delivery and deferred field assignment
//
// # Ticks
//
// Each tick delivers the messages due on it, runs the behaviors of every node
// in placement order, queues the messages they send and finally applies the
// field assignments they requested. Behaviors never observe assignments made
// during the same tick.
//
// Behavior code is supplied through the BehaviorRunner interface; sim/script
// implements it with Lua. sim/trace records what happens during ticks.
package sim
