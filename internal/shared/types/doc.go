// Package types provides shared data structures for the Loom runtime.
//
// This package defines the identifier types and decoded protocol messages
// used across the engine, ensuring type safety and consistent data
// structures.
//
// Core Types:
//   - Instruction: Decoded protocol message
//   - ChildOp: Incremental child edit-script step
//   - StyleRegistration, StyleProp: Raw style records
//   - CreateWidget: Child-channel creation record
//
// Identifiers:
//   - WidgetID, ChannelID, GlobalID: Tree and transport identity
//   - ClassID, WidgetClassID: Widget class identity
//   - StyleID, StyleClassID, ThemeID: Style resolution identity
//
// Example Usage:
//
//	instr := types.Instruction{
//	    Op:       types.OpSetChildren,
//	    WidgetID: 7,
//	    Children: []types.WidgetID{3, 4, 5},
//	}
package types
