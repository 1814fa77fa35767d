package executil

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
)

// ProcManager tracks spawned processes so a cleanup path can kill whatever
// is still running. Best effort.
type ProcManager struct {
	mu   sync.Mutex
	pids []int
}

func NewProcManager() *ProcManager { return &ProcManager{} }

func (pm *ProcManager) Add(pid int) {
	pm.mu.Lock()
	pm.pids = append(pm.pids, pid)
	pm.mu.Unlock()
}

func (pm *ProcManager) KillAll() {
	pm.mu.Lock()
	pids := append([]int(nil), pm.pids...)
	pm.pids = nil
	pm.mu.Unlock()
	for _, pid := range pids {
		_ = syscall.Kill(pid, syscall.SIGKILL)
	}
}

// FindPIDsByName scans /proc for processes whose command name matches name
// exactly. There is no pidfile: server mode is stopped by locating the
// engine process by name and signalling it.
func FindPIDsByName(name string) ([]int, error) {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil, fmt.Errorf("scan /proc: %w", err)
	}
	self := os.Getpid()
	var pids []int
	for _, e := range entries {
		pid, err := strconv.Atoi(e.Name())
		if err != nil || pid == self {
			continue
		}
		comm, err := os.ReadFile(filepath.Join("/proc", e.Name(), "comm"))
		if err != nil {
			continue
		}
		if strings.TrimSpace(string(comm)) == name {
			pids = append(pids, pid)
		}
	}
	return pids, nil
}

// SignalByName sends sig to every process named name and reports how many
// were signalled.
func SignalByName(name string, sig syscall.Signal) (int, error) {
	pids, err := FindPIDsByName(name)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, pid := range pids {
		if err := syscall.Kill(pid, sig); err == nil {
			n++
		}
	}
	return n, nil
}
