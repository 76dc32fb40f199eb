// Package testutil provides shared test utilities for rustlings.
//
// # Fixtures
//
// The fixtures.go file provides sample data for testing:
//
//   - SampleManifest - an info.toml with grouped, strict and test exercises
//   - SampleCatalogue(t) - the catalogue parsed from SampleManifest
//   - ManifestFor(names...) - a flat manifest listing the given names
//   - NewCatalogue(t, names...) - a catalogue of the given names
//
// # Environment Helpers
//
// The env.go file provides test environment setup:
//
//   - SetupTestDir(t, names...) - creates a project with info.toml, exercise
//     sources and a fresh state file
//   - SetupTestDirWithManifest(t, text) - the same with an explicit manifest
//   - WriteStateFile(t, dir, current, done...) - writes a state file
//   - WriteTestFile(t, base, path, content) - writes a file in test dir
//   - FindProjectRoot(t) - finds the project root directory
//
// # Assertions
//
// The assertions.go file provides custom test assertions:
//
//   - ReadStateFile(t, dir) - decodes the state file on disk
//   - AssertStateFile(t, dir, current, done...) - checks the state file
//   - AssertDone(t, store, flags...) - checks the in-memory done flags
//
// # Contexts
//
// CheckContext(t) bounds tests that start checks or a watch loop by the
// test deadline; DeadlineContext(t, fallback, buffer) is the general form.
//
// # Usage
//
//	func TestSomething(t *testing.T) {
//	    p := testutil.SetupTestDir(t, "intro1", "intro2")
//	    require.NoError(t, p.Store.MarkDone(0))
//	    testutil.AssertStateFile(t, p.Dir, "intro1", "intro1")
//	}
package testutil
