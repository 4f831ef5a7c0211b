// Package ws binds the reconciliation engine to producer WebSocket
// connections.
//
// One connection carries the already-decoded serial instruction stream for
// one widget tree. Frames are processed in arrival order on the read
// goroutine, which preserves the engine's single-threaded ownership of the
// tree.
//
// Frame Types (Producer → Consumer):
//   - instruction: One protocol instruction for the dispatcher
//   - open_channel: Child-channel materialization request with the
//     creation record and construction data as payload
//   - close_channel: Channel closure, evicts the widget's node
//   - poll_frame: Read-and-clear poll of the frame-requested flag
//   - ping: Keep-alive
//
// Frame Types (Consumer → Producer):
//   - ready: Connection accepted
//   - channel_bound / channel_failed: Materialization outcome
//   - frame: Result of a poll_frame
//   - error: Dispatch or protocol error
package ws
