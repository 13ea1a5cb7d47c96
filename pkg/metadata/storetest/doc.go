// Package storetest provides a conformance test suite for metadata store implementations.
//
// All metadata store backends (sqlite, postgres, badger) should pass these
// tests. The suite verifies the metadata.Store behavioral contract: (parent,
// name) uniqueness, root scoping, insertion-ordered listings and reference
// rewrites after a content move.
//
// Usage:
//
//	func TestConformance(t *testing.T) {
//	    storetest.RunConformanceSuite(t, func(t *testing.T) metadata.Store {
//	        return newTestStore(t)
//	    })
//	}
//
// The factory function receives *testing.T so it can call t.TempDir() for
// stores that need filesystem paths and t.Cleanup for teardown.
package storetest
