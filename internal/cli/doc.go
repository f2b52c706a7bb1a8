// Package cli wires the droidguard commands: the hidden hook handlers the
// host agent invokes, the verdict cache maintenance commands, and version.
package cli
