// Package timeline orchestrates video and still generation: it loads a
// system's snapshot history, plans the hold and transition frame sequence,
// renders frames across a worker pool into a scoped scratch directory, and
// hands the sequence to the external encoder.
package timeline
