// Package dag builds and executes the pipeline's dependency graph. Each
// stage becomes a node; edges come from explicit depends_on declarations.
// A worker pool executes ready nodes concurrently, gating each node on a
// file-freshness check so up-to-date stages are skipped without invoking
// their handler. The first failure cancels the run and transitively skips
// all dependents; partial artifacts are left in place.
package dag
