// Package core defines the capability contracts and shared value types of the
// EchoKernel framework: provider interfaces (text generation, embeddings,
// semantic text memory, vector storage), the normalized tool wire shapes
// exchanged with model backends, generation parameters, and the error
// taxonomy surfaced by the kernel and the agent layer.
//
// The package is a leaf: it imports nothing from the rest of the module so
// that providers, tools, agents and the kernel can all depend on it without
// cycles.
package core
