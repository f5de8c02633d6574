package jobs

import "testing"

// SetReconcileBatch shrinks the reconciler page size for one test.
func SetReconcileBatch(t testing.TB, n int) {
	prev := reconcileBatch
	reconcileBatch = n
	t.Cleanup(func() { reconcileBatch = prev })
}
