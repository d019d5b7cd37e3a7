// Package dom is the document object model of LDraw files.
//
// A Document owns uniquely named pages, a page owns steps and a step owns
// elements. Texture mapped elements own nested geometry collections. Parent
// links are plain lookups, ownership always flows downwards.
//
// Every structural mutation goes through a collection (Step, Geometry), a
// page (steps) or a document (pages) and is validated first: nodes can not
// belong to two containers, names stay unique, top-level elements stay at
// step level and no chain of references may lead back to the page it starts
// from, even across documents resolved through a Resolver.
//
// Freezing is permanent and spreads to ancestors, so a frozen node always
// lives in a frozen tree. Locks are local to elements and steps and are
// inherited by elements of a locked step.
package dom
