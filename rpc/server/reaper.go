package server

import (
	"fmt"
	sysunix "golang.org/x/sys/unix"
	"os"
	"os/signal"
	"syscall"
)

// startReaper installs the SIGCHLD handler and collects finished workers in
// the background, so the accept loop never waits on a child. The returned
// function stops the reaper after a last collection pass.
//
// wait4(-1) collects every child of this process. A program embedding the
// server in process mode must not start other children it wants to wait for.
func (s *RPCServer) startReaper() (stop func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGCHLD)

	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		for {
			select {
			case <-sigCh:
				s.reapWorkers()
			case <-done:
				signal.Stop(sigCh)
				s.reapWorkers()
				return
			}
		}
	}()

	return func() {
		close(done)
		<-finished
	}
}

// reapWorkers collects exit statuses until no finished child is left.
// Signals coalesce, so one SIGCHLD may stand for several exited workers.
func (s *RPCServer) reapWorkers() {
	s.spawnMu.Lock()
	defer s.spawnMu.Unlock()

	for {
		var status sysunix.WaitStatus
		pid, err := sysunix.Wait4(-1, &status, sysunix.WNOHANG, nil)
		if err == sysunix.EINTR {
			continue
		}
		// ECHILD: no children at all, pid 0: children left but all still running
		if err != nil || pid <= 0 {
			return
		}

		name := fmt.Sprintf("worker %d", pid)
		if _, ok := s.workers.LoadAndDelete(pid); !ok {
			Logger.Debugf("reaped unknown child %d", pid)
			continue
		}

		switch {
		case status.Exited():
			s.recordResult(name, status.ExitStatus())
		case status.Signaled():
			Logger.Warningf("%s killed by signal %v", name, status.Signal())
			s.metrics.GetOrCreateCounter(metricReaped).Inc()
			s.metrics.GetOrCreateCounter(metricFailed).Inc()
		default:
			s.recordResult(name, ExitFailure)
		}
	}
}
