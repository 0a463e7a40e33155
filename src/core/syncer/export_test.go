package syncer

// LockCount reports the number of live per-account lock entries. Test-only.
func LockCount(o *Orchestrator) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.locks)
}
