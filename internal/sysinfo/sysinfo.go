// Package sysinfo gathers the host facts the status command reports: how
// much RAM the box has versus how big the selected model is, and whether the
// weights will have to be paged from disk.
package sysinfo

import (
	"bufio"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// Snapshot is one point-in-time view of the host.
type Snapshot struct {
	OS        string
	Arch      string
	CPUs      int
	TotalRAM  uint64 // bytes
	AvailRAM  uint64 // bytes
	DiskFree  uint64 // bytes, for the models dir filesystem
	DiskTotal uint64 // bytes
}

// Collect reads RAM from /proc/meminfo and disk usage for dir.
func Collect(dir string) (Snapshot, error) {
	s := Snapshot{OS: runtime.GOOS, Arch: runtime.GOARCH, CPUs: runtime.NumCPU()}
	f, err := os.Open("/proc/meminfo")
	if err != nil {
		return s, fmt.Errorf("read meminfo: %w", err)
	}
	defer f.Close()
	s.TotalRAM, s.AvailRAM = parseMeminfo(f)

	var st unix.Statfs_t
	if err := unix.Statfs(dir, &st); err == nil {
		s.DiskFree = uint64(st.Bavail) * uint64(st.Bsize)
		s.DiskTotal = uint64(st.Blocks) * uint64(st.Bsize)
	}
	return s, nil
}

// WillPage reports whether a model of the given size cannot be held in RAM
// and must be paged by the OS via mmap.
func (s Snapshot) WillPage(modelBytes uint64) bool {
	return modelBytes > s.TotalRAM
}

func parseMeminfo(r interface{ Read([]byte) (int, error) }) (total, avail uint64) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "MemTotal:"):
			total = kbField(line)
		case strings.HasPrefix(line, "MemAvailable:"):
			avail = kbField(line)
		}
	}
	return total, avail
}

func kbField(line string) uint64 {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0
	}
	n, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return 0
	}
	return n * 1024
}
