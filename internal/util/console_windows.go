//go:build windows

package util

import (
	"log/slog"
	"os"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32             = windows.NewLazySystemDLL("kernel32.dll")
	procGetConsoleWindow = kernel32.NewProc("GetConsoleWindow")
)

var shells = map[string]bool{
	"cmd.exe":             true,
	"powershell.exe":      true,
	"pwsh.exe":            true,
	"wt.exe":              true,
	"conhost.exe":         true,
	"windowsterminal.exe": true,
}

// StartedFromGUI reports whether the process was launched from Explorer
// rather than a shell.
func StartedFromGUI() bool {
	hwnd, _, _ := procGetConsoleWindow.Call()
	if hwnd == 0 {
		return true
	}
	parent := strings.ToLower(parentProcessName())
	slog.Debug("parent process", "name", parent)
	if shells[parent] {
		return false
	}
	return parent == "explorer.exe"
}

func parentProcessName() string {
	snapshot, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return ""
	}
	defer windows.CloseHandle(snapshot)

	type proc struct {
		parent uint32
		name   string
	}
	procs := map[uint32]proc{}

	var pe windows.ProcessEntry32
	pe.Size = uint32(unsafe.Sizeof(pe))
	for err = windows.Process32First(snapshot, &pe); err == nil; err = windows.Process32Next(snapshot, &pe) {
		procs[pe.ProcessID] = proc{parent: pe.ParentProcessID, name: windows.UTF16ToString(pe.ExeFile[:])}
	}

	self, ok := procs[uint32(os.Getpid())]
	if !ok {
		return ""
	}
	return procs[self.parent].name
}
