//go:build linux
// +build linux

package linux

import (
	"golang.org/x/sys/unix"
)

// OSVersion returns version info of operation system.
// e.g. Linux 4.15.0-45-generic.x86_64
func OSVersion() (osVersion string, err error) {
	var un unix.Utsname
	err = unix.Uname(&un)
	if err != nil {
		return
	}
	charsToString := func(ca []byte) string {
		s := make([]byte, 0, len(ca))
		for _, c := range ca {
			if byte(c) == 0 {
				break
			}
			s = append(s, byte(c))
		}
		return string(s)
	}
	osVersion = charsToString(un.Sysname[:]) + " " + charsToString(un.Release[:]) + "." + charsToString(un.Machine[:])
	return
}

// SetAffinity sets cpu affinity.
func SetAffinity(cpus []int) error {
	var cpuSet unix.CPUSet
	cpuSet.Zero()
	for _, c := range cpus {
		cpuSet.Set(c)
	}
	return unix.SchedSetaffinity(unix.Getpid(), &cpuSet)
}
