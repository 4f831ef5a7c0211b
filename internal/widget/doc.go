// Package widget defines the widget capability surface and the builder
// registry that materializes concrete widgets by class.
//
// The registry keeps two explicit tables: class name to builder (filled by
// the embedding application ahead of runtime) and runtime class id to class
// name (filled by the producer). Build combines them lazily into an id to
// builder cache; entries are append-only since class ids are not reused.
package widget
