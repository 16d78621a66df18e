// Package agent implements the instruction loop: it sends an instruction to
// the model, runs the first ```run block of each reply, feeds the execution
// result back and repeats until the model answers without runnable code.
//
// The package focuses on four concerns:
//
//  1. Session lifecycle (Init, Reset, Clear)
//  2. The instruction loop and its feedback cycle (Run, Chat, Step)
//  3. Exporting the recorded session (Save)
//  4. Publishing the exported document (Publish)
//
// Collaborators are injected through Options: a model.Client, a code.Executor,
// a console.Sink, a confirm.Confirmer and an Uploader. Model and executor
// failures are returned to the caller; publish, save and guard failures are
// reported to the operator through the sink and never returned.
package agent
