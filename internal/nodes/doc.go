// Package nodes provides the reference node kinds and the registry the
// diagram loader builds them from.
//
// These kinds are deliberately small: the engine core is agnostic to node
// behavior, and host applications are expected to bring their own library.
// Every kind here honors the back-edge contract by naming its numeric output
// fields after its output ports.
package nodes
