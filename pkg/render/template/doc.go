// Package template defines the renderer-agnostic template interface the
// document assembler renders through. Implementations must escape every
// interpolated value by default.
package template
