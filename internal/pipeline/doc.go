// Package pipeline provides a framework for executing extraction steps
// in sequence.
//
// The pipeline pattern is used to process a single input file through
// multiple stages: probing, embedded PDF text extraction, OCR fallback,
// text cleanup, and AI correction. Each stage is implemented as a Step
// that receives the current report and can modify it.
//
// Design decision: We use a pipeline pattern instead of direct function
// calls because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context for long-running OCR runs
// 4. Optional stages (cleanup, AI correction) become a matter of assembly
//
// The pipeline supports both individual extractions and sequential batch
// processing through BatchRunner.
package pipeline
