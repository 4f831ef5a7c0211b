// Package engine implements the reconciliation and style-resolution core
// of the Loom runtime.
//
// The engine receives decoded protocol instructions from the transport and
// keeps four tables consistent with every mutation: the widget tree, the
// style table, the theme stack, and the widget builder registry. Child
// channels flow the opposite direction: the transport asks the engine to
// materialize a widget for a newly opened channel before handing control
// back.
//
// Processing is single-threaded cooperative. Instructions for a tree are
// dispatched strictly in delivery order with no internal parallelism; the
// only cross-goroutine state is the frame-requested flag, which is a
// single atomic bit polled by the render loop.
package engine
