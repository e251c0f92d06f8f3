// Package engine implements the form state store and its submission
// lifecycle. A Form owns the values, errors, and touched trees for one mounted
// form instance, keeps a private notification bus, and publishes the dotted
// paths affected by each mutation so only the consumers watching those fields
// re-render. Submission is single-flight: validation, the caller-supplied
// submit callback, and the success/error hooks run in sequence, and a second
// submit request while one is outstanding is ignored.
//
// The produced surface (Snapshot, per-path accessors, Subscribe, and the
// mutation methods) is the contract handed to whatever rendering layer hosts
// the form; the engine itself emits no markup and performs no transport.
package engine
